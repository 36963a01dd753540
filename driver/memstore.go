package driver

import (
	"fmt"
	"sync"
)

type MemStoreDriver struct {
	data   map[uint32]*Task
	nextID uint64
	locker *sync.RWMutex
}

func NewMemStoreDriver() *MemStoreDriver {
	mem := new(MemStoreDriver)
	mem.locker = new(sync.RWMutex)
	mem.data = make(map[uint32]*Task)
	mem.nextID = 0
	return mem
}

func (m *MemStoreDriver) Allocate(t TaskType, input string) (id uint32, err error) {
	defer m.locker.Unlock()
	m.locker.Lock()
	if m.nextID >= MaxTasks {
		err = ErrIDExhausted
		return
	}
	id = uint32(m.nextID)
	m.nextID++
	m.data[id] = &Task{
		ID:     id,
		Type:   t,
		Status: STATUS_QUEUED,
		Input:  input,
	}
	return
}

func (m *MemStoreDriver) Get(id uint32) (task Task, ok bool, err error) {
	defer m.locker.RUnlock()
	m.locker.RLock()
	t, ok := m.data[id]
	if ok {
		task = *t
	}
	return
}

func (m *MemStoreDriver) advance(id uint32, to Status, output string) error {
	defer m.locker.Unlock()
	m.locker.Lock()
	t, ok := m.data[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return t.Advance(to, output)
}

func (m *MemStoreDriver) SetInProgress(id uint32) error {
	return m.advance(id, STATUS_IN_PROGRESS, "")
}

func (m *MemStoreDriver) SetCompleted(id uint32, output string) error {
	return m.advance(id, STATUS_COMPLETED, output)
}

func (m *MemStoreDriver) Count() (uint64, error) {
	defer m.locker.RUnlock()
	m.locker.RLock()
	return m.nextID, nil
}

func (m *MemStoreDriver) NewIterator(start uint32) TaskIterator {
	stop, _ := m.Count()
	return &MemIterator{
		m:      m,
		cursor: uint64(start),
		stop:   stop,
	}
}

func (m *MemStoreDriver) Close() error {
	return nil
}

// MemIterator walks the ids allocated when it was created.
type MemIterator struct {
	m      *MemStoreDriver
	cursor uint64
	stop   uint64
	task   Task
}

func (iter *MemIterator) Next() bool {
	for iter.cursor < iter.stop {
		task, ok, _ := iter.m.Get(uint32(iter.cursor))
		iter.cursor++
		if ok {
			iter.task = task
			return true
		}
	}
	return false
}

func (iter *MemIterator) Value() Task {
	return iter.task
}

func (iter *MemIterator) Error() error {
	return nil
}

func (iter *MemIterator) Close() {}
