package driver

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TaskType selects the job function run for a task.
type TaskType int

const (
	TYPE_REVERSE TaskType = iota + 1
	TYPE_TRANSPOSITION
)

func (t TaskType) String() string {
	switch t {
	case TYPE_REVERSE:
		return "reverse"
	case TYPE_TRANSPOSITION:
		return "transposition"
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Status is the lifecycle state of a stored task.
type Status uint32

const (
	STATUS_QUEUED Status = iota
	STATUS_IN_PROGRESS
	STATUS_COMPLETED
)

func (s Status) String() string {
	switch s {
	case STATUS_QUEUED:
		return "queued"
	case STATUS_IN_PROGRESS:
		return "in_progress"
	case STATUS_COMPLETED:
		return "completed"
	}
	return "unknown(" + strconv.FormatUint(uint64(s), 10) + ")"
}

// Task is one submitted unit of work.
type Task struct {
	ID     uint32   `json:"task_id"`
	Type   TaskType `json:"type"`
	Status Status   `json:"status"`
	Input  string   `json:"input"`
	Output string   `json:"output,omitempty"`
}

// NewTask decodes a task stored by Bytes.
func NewTask(payload []byte) (task Task, err error) {
	err = json.Unmarshal(payload, &task)
	return
}

func (task Task) Bytes() (data []byte) {
	data, _ = json.Marshal(task)
	return
}

// Advance moves the task one step forward to status to. Output is recorded
// only on completion.
func (task *Task) Advance(to Status, output string) error {
	if to != task.Status+1 || to > STATUS_COMPLETED {
		return fmt.Errorf("%w: task %d %s -> %s", ErrInvalidTransition, task.ID, task.Status, to)
	}
	task.Status = to
	if to == STATUS_COMPLETED {
		task.Output = output
	}
	return nil
}
