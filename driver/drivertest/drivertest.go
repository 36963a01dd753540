// Package drivertest holds the behaviour every driver.StoreDriver must share.
package drivertest

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzzlzzzz/alena/driver"
)

// Opener returns an empty store. The store is closed by the suite.
type Opener func(t *testing.T) driver.StoreDriver

// Run exercises store through the whole StoreDriver contract.
func Run(t *testing.T, open Opener) {
	t.Run("Allocate", func(t *testing.T) { testAllocate(t, open(t)) })
	t.Run("GetAbsent", func(t *testing.T) { testGetAbsent(t, open(t)) })
	t.Run("Lifecycle", func(t *testing.T) { testLifecycle(t, open(t)) })
	t.Run("InvalidTransition", func(t *testing.T) { testInvalidTransition(t, open(t)) })
	t.Run("ConcurrentAllocate", func(t *testing.T) { testConcurrentAllocate(t, open(t)) })
	t.Run("Iterator", func(t *testing.T) { testIterator(t, open(t)) })
}

func testAllocate(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	for want := uint32(0); want < 3; want++ {
		id, err := store.Allocate(driver.TYPE_REVERSE, "test")
		require.NoError(t, err)
		require.Equal(t, want, id)
	}

	task, ok, err := store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, driver.Task{
		ID:     1,
		Type:   driver.TYPE_REVERSE,
		Status: driver.STATUS_QUEUED,
		Input:  "test",
	}, task)

	count, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)
}

func testGetAbsent(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	_, ok, err := store.Get(9999)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, store.SetInProgress(9999), driver.ErrNotFound)
	require.ErrorIs(t, store.SetCompleted(9999, "x"), driver.ErrNotFound)
}

func testLifecycle(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	id, err := store.Allocate(driver.TYPE_TRANSPOSITION, "привет")
	require.NoError(t, err)

	require.NoError(t, store.SetInProgress(id))
	task, ok, err := store.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, driver.STATUS_IN_PROGRESS, task.Status)
	require.Empty(t, task.Output)

	require.NoError(t, store.SetCompleted(id, "рпвите"))
	task, _, err = store.Get(id)
	require.NoError(t, err)
	require.Equal(t, driver.STATUS_COMPLETED, task.Status)
	require.Equal(t, "рпвите", task.Output)
	require.Equal(t, "привет", task.Input)
	require.Equal(t, driver.TYPE_TRANSPOSITION, task.Type)
}

func testInvalidTransition(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	id, err := store.Allocate(driver.TYPE_REVERSE, "abc")
	require.NoError(t, err)

	require.ErrorIs(t, store.SetCompleted(id, "cba"), driver.ErrInvalidTransition)
	require.NoError(t, store.SetInProgress(id))
	require.ErrorIs(t, store.SetInProgress(id), driver.ErrInvalidTransition)
	require.NoError(t, store.SetCompleted(id, "cba"))
	require.ErrorIs(t, store.SetCompleted(id, "again"), driver.ErrInvalidTransition)

	task, _, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, "cba", task.Output)
}

func testConcurrentAllocate(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	const n = 100
	var (
		wg     sync.WaitGroup
		locker sync.Mutex
		ids    = make([]int, 0, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Allocate(driver.TYPE_REVERSE, "x")
			if err != nil {
				t.Error(err)
				return
			}
			locker.Lock()
			ids = append(ids, int(id))
			locker.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(ids)
	require.Len(t, ids, n)
	for i, id := range ids {
		require.Equal(t, i, id)
	}
}

func testIterator(t *testing.T, store driver.StoreDriver) {
	defer store.Close()
	var inputs = []string{"a", "b", "c", "d"}
	for _, input := range inputs {
		_, err := store.Allocate(driver.TYPE_REVERSE, input)
		require.NoError(t, err)
	}
	require.NoError(t, store.SetInProgress(2))

	iter := store.NewIterator(1)
	var got []driver.Task
	for iter.Next() {
		got = append(got, iter.Value())
	}
	require.NoError(t, iter.Error())
	iter.Close()

	require.Len(t, got, 3)
	for i, task := range got {
		require.Equal(t, uint32(i+1), task.ID)
		require.Equal(t, inputs[i+1], task.Input)
	}
	require.Equal(t, driver.STATUS_IN_PROGRESS, got[1].Status)
}
