// Package leveldb stores tasks in goleveldb. Tasks never outlive the
// process: the database lives in memory, or in a scratch directory that is
// wiped when the driver opens.
package leveldb

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/zzzzlzzzz/alena/driver"
)

const PRE_TASK = "task:"
const PRE_SEQUENCE = "sequence:"

type LevelDBDriver struct {
	db     *leveldb.DB
	locker *sync.Mutex
}

// NewLevelDBDriver opens an in-memory database when dbpath is empty.
func NewLevelDBDriver(dbpath string) (*LevelDBDriver, error) {
	var db *leveldb.DB
	var err error

	if dbpath == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		if err = os.RemoveAll(dbpath); err != nil {
			return nil, err
		}
		db, err = leveldb.OpenFile(dbpath, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDBDriver{
		db:     db,
		locker: new(sync.Mutex),
	}, nil
}

// taskKey pads the id so keys sort in id order.
func taskKey(id uint32) []byte {
	return []byte(fmt.Sprintf("%s%010d", PRE_TASK, id))
}

func (l *LevelDBDriver) next() (uint64, error) {
	data, err := l.db.Get([]byte(PRE_SEQUENCE+"TASK"), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(data), 10, 64)
}

func (l *LevelDBDriver) Allocate(t driver.TaskType, input string) (id uint32, err error) {
	defer l.locker.Unlock()
	l.locker.Lock()
	var next uint64
	if next, err = l.next(); err != nil {
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
	batch := new(leveldb.Batch)
	batch.Put([]byte(PRE_SEQUENCE+"TASK"), []byte(strconv.FormatUint(next+1, 10)))
	batch.Put(taskKey(id), task.Bytes())
	err = l.db.Write(batch, nil)
	return
}

func (l *LevelDBDriver) Get(id uint32) (task driver.Task, ok bool, err error) {
	var data []byte
	data, err = l.db.Get(taskKey(id), nil)
	if err == leveldb.ErrNotFound {
		err = nil
		return
	}
	if err != nil {
		return
	}
	task, err = driver.NewTask(data)
	ok = err == nil
	return
}

func (l *LevelDBDriver) advance(id uint32, to driver.Status, output string) error {
	defer l.locker.Unlock()
	l.locker.Lock()
	task, ok, err := l.Get(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", driver.ErrNotFound, id)
	}
	if err = task.Advance(to, output); err != nil {
		return err
	}
	return l.db.Put(taskKey(id), task.Bytes(), nil)
}

func (l *LevelDBDriver) SetInProgress(id uint32) error {
	return l.advance(id, driver.STATUS_IN_PROGRESS, "")
}

func (l *LevelDBDriver) SetCompleted(id uint32, output string) error {
	return l.advance(id, driver.STATUS_COMPLETED, output)
}

func (l *LevelDBDriver) Count() (uint64, error) {
	return l.next()
}

func (l *LevelDBDriver) NewIterator(start uint32) driver.TaskIterator {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(PRE_TASK)), nil)
	return &LevelDBIterator{
		iter:  iter,
		start: taskKey(start),
		first: true,
	}
}

func (l *LevelDBDriver) Close() error {
	return l.db.Close()
}

type LevelDBIterator struct {
	iter  iterator.Iterator
	start []byte
	first bool
	task  driver.Task
	err   error
}

func (iter *LevelDBIterator) Next() bool {
	var ok bool
	if iter.first {
		iter.first = false
		ok = iter.iter.Seek(iter.start)
	} else {
		ok = iter.iter.Next()
	}
	if !ok {
		return false
	}
	iter.task, iter.err = driver.NewTask(iter.iter.Value())
	return iter.err == nil
}

func (iter *LevelDBIterator) Value() driver.Task {
	return iter.task
}

func (iter *LevelDBIterator) Error() error {
	if iter.err != nil {
		return iter.err
	}
	return iter.iter.Error()
}

func (iter *LevelDBIterator) Close() {
	iter.iter.Release()
}
