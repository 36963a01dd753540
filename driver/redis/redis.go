// Package redis stores tasks in a redis server. Every driver writes under a
// namespace of its own and removes it on Close, so a restarted server never
// sees the tasks of a previous run.
package redis

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"

	"github.com/zzzzlzzzz/alena/driver"
)

const REDIS_PREFIX = "alena:"

type RedisDriver struct {
	pool   *redis.Pool
	prefix string
	locker *sync.Mutex
	cache  *lru.Cache
}

// NewRedisDriver connects to server, eg: tcp://127.0.0.1:6379.
func NewRedisDriver(server string) (*RedisDriver, error) {
	parts := strings.SplitN(server, "://", 2)
	addr := parts[len(parts)-1]
	pool := &redis.Pool{
		MaxIdle: 3,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}

	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, err
	}

	return &RedisDriver{
		pool:   pool,
		prefix: REDIS_PREFIX + uuid.NewString() + ":",
		locker: new(sync.Mutex),
		cache:  lru.New(1000),
	}, nil
}

func (r *RedisDriver) taskKey(id uint32) string {
	return r.prefix + "task:" + strconv.FormatUint(uint64(id), 10)
}

func (r *RedisDriver) sequenceKey() string {
	return r.prefix + "sequence"
}

func (r *RedisDriver) Allocate(t driver.TaskType, input string) (id uint32, err error) {
	defer r.locker.Unlock()
	r.locker.Lock()
	var conn = r.pool.Get()
	defer conn.Close()

	var next uint64
	if next, err = r.count(conn); err != nil {
		return
	}
	if next >= driver.MaxTasks {
		err = driver.ErrIDExhausted
		return
	}
	id = uint32(next)
	task := driver.Task{
		ID:     id,
		Type:   t,
		Status: driver.STATUS_QUEUED,
		Input:  input,
	}
	// the record and the sequence move together or not at all
	conn.Send("MULTI")
	conn.Send("SET", r.taskKey(id), task.Bytes())
	conn.Send("SET", r.sequenceKey(), next+1)
	var replies []interface{}
	if replies, err = redis.Values(conn.Do("EXEC")); err != nil {
		return
	}
	for _, reply := range replies {
		if e, ok := reply.(redis.Error); ok {
			err = e
			return
		}
	}
	return
}

// get must be called with locker held, the lru cache is not thread safe.
func (r *RedisDriver) get(id uint32) (task driver.Task, ok bool, err error) {
	var key = r.taskKey(id)
	if val, hit := r.cache.Get(key); hit {
		return val.(driver.Task), true, nil
	}

	var conn = r.pool.Get()
	defer conn.Close()
	var data []byte
	data, err = redis.Bytes(conn.Do("GET", key))
	if err == redis.ErrNil {
		err = nil
		return
	}
	if err != nil {
		return
	}
	if task, err = driver.NewTask(data); err != nil {
		return
	}
	ok = true
	// completed tasks never change again
	if task.Status == driver.STATUS_COMPLETED {
		r.cache.Add(key, task)
	}
	return
}

func (r *RedisDriver) Get(id uint32) (driver.Task, bool, error) {
	defer r.locker.Unlock()
	r.locker.Lock()
	return r.get(id)
}

func (r *RedisDriver) advance(id uint32, to driver.Status, output string) error {
	defer r.locker.Unlock()
	r.locker.Lock()
	task, ok, err := r.get(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", driver.ErrNotFound, id)
	}
	if err = task.Advance(to, output); err != nil {
		return err
	}
	var conn = r.pool.Get()
	defer conn.Close()
	_, err = conn.Do("SET", r.taskKey(id), task.Bytes())
	return err
}

func (r *RedisDriver) SetInProgress(id uint32) error {
	return r.advance(id, driver.STATUS_IN_PROGRESS, "")
}

func (r *RedisDriver) SetCompleted(id uint32, output string) error {
	return r.advance(id, driver.STATUS_COMPLETED, output)
}

func (r *RedisDriver) count(conn redis.Conn) (uint64, error) {
	count, err := redis.Uint64(conn.Do("GET", r.sequenceKey()))
	if err == redis.ErrNil {
		return 0, nil
	}
	return count, err
}

func (r *RedisDriver) Count() (uint64, error) {
	var conn = r.pool.Get()
	defer conn.Close()
	return r.count(conn)
}

func (r *RedisDriver) NewIterator(start uint32) driver.TaskIterator {
	stop, err := r.Count()
	return &RedisIterator{
		r:      r,
		cursor: uint64(start),
		stop:   stop,
		err:    err,
	}
}

// Close drops the namespace of the driver and the connection pool.
func (r *RedisDriver) Close() error {
	var conn = r.pool.Get()
	defer r.pool.Close()
	defer conn.Close()

	cursor := 0
	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", r.prefix+"*", "COUNT", 100))
		if err != nil {
			return err
		}
		if cursor, err = redis.Int(values[0], nil); err != nil {
			return err
		}
		keys, err := redis.Strings(values[1], nil)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if _, err = conn.Do("DEL", redis.Args{}.AddFlat(keys)...); err != nil {
				return err
			}
		}
		if cursor == 0 {
			break
		}
	}
	return nil
}

type RedisIterator struct {
	r      *RedisDriver
	cursor uint64
	stop   uint64
	task   driver.Task
	err    error
}

func (iter *RedisIterator) Next() bool {
	for iter.err == nil && iter.cursor < iter.stop {
		var ok bool
		iter.task, ok, iter.err = iter.r.Get(uint32(iter.cursor))
		iter.cursor++
		if ok {
			return true
		}
	}
	return false
}

func (iter *RedisIterator) Value() driver.Task {
	return iter.task
}

func (iter *RedisIterator) Error() error {
	return iter.err
}

func (iter *RedisIterator) Close() {}
