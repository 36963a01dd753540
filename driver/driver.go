package driver

import (
	"errors"
)

// MaxTasks is the size of the 32 bit task id space.
const MaxTasks = 1 << 32

var (
	ErrNotFound          = errors.New("driver: task not found")
	ErrInvalidTransition = errors.New("driver: invalid status transition")
	ErrIDExhausted       = errors.New("driver: task id space exhausted")
)

// StoreDriver keeps task records. Implementations must be safe for
// concurrent use by connection handlers and workers.
type StoreDriver interface {
	// Allocate reserves the next id and stores a queued task under it. The
	// id is not visible to Get before the record is complete.
	Allocate(t TaskType, input string) (uint32, error)
	// Get reports false for an unknown id. The error is only used for
	// backend failures.
	Get(id uint32) (Task, bool, error)
	SetInProgress(id uint32) error
	SetCompleted(id uint32, output string) error
	// Count returns the number of allocated ids.
	Count() (uint64, error)
	// NewIterator walks tasks by ascending id, starting at start.
	NewIterator(start uint32) TaskIterator
	Close() error
}

type Iterator interface {
	Next() bool
}

type TaskIterator interface {
	Iterator
	Value() Task
	Error() error
	Close()
}
