package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan Task[string], 1)
	q := New("test", func(_ context.Context, task Task[string]) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- task
		return nil
	}, Config{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task[string]{ID: "a", Payload: "job-7"}))

	select {
	case task := <-done:
		require.Equal(t, "job-7", task.Payload)
		require.Equal(t, 2, task.Attempt)
	case <-time.After(time.Second):
		t.Fatal("task never succeeded")
	}
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	q := New("test", func(context.Context, Task[int]) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("permanent")
	}, Config{MaxRetries: 1, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task[int]{ID: "b"}))
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := New("test", func(context.Context, Task[int]) error { return nil }, Config{})
	require.ErrorIs(t, q.Enqueue(Task[int]{}), ErrNotRunning)

	q.Start(context.Background())
	q.Stop()
	require.ErrorIs(t, q.Enqueue(Task[int]{}), ErrNotRunning)
}
