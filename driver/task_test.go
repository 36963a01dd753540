package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskAdvance(t *testing.T) {
	var task = Task{ID: 3, Type: TYPE_REVERSE, Input: "test"}

	require.ErrorIs(t, task.Advance(STATUS_QUEUED, ""), ErrInvalidTransition)
	require.ErrorIs(t, task.Advance(STATUS_COMPLETED, "tset"), ErrInvalidTransition)

	require.NoError(t, task.Advance(STATUS_IN_PROGRESS, "ignored"))
	require.Empty(t, task.Output)
	require.NoError(t, task.Advance(STATUS_COMPLETED, "tset"))
	require.Equal(t, "tset", task.Output)
	require.ErrorIs(t, task.Advance(Status(3), ""), ErrInvalidTransition)
}

func TestTaskBytes(t *testing.T) {
	var task = Task{ID: 7, Type: TYPE_TRANSPOSITION, Status: STATUS_COMPLETED, Input: "qwert", Output: "wqret"}
	got, err := NewTask(task.Bytes())
	require.NoError(t, err)
	require.Equal(t, task, got)
}

func TestMemStoreExhausted(t *testing.T) {
	var m = NewMemStoreDriver()
	m.nextID = MaxTasks - 1

	id, err := m.Allocate(TYPE_REVERSE, "last")
	require.NoError(t, err)
	require.Equal(t, uint32(MaxTasks-1), id)

	_, err = m.Allocate(TYPE_REVERSE, "overflow")
	require.ErrorIs(t, err, ErrIDExhausted)
}

func TestTaskTypeString(t *testing.T) {
	require.Equal(t, "reverse", TYPE_REVERSE.String())
	require.Equal(t, "transposition", TYPE_TRANSPOSITION.String())
	require.Equal(t, "unknown(9)", TaskType(9).String())
	require.Equal(t, "in_progress", STATUS_IN_PROGRESS.String())
}
