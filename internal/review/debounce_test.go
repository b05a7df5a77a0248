package review

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerRunsOnceWithFinalValue(t *testing.T) {
	var calls int32
	delivered := make(chan string, 4)
	d := NewDebouncer(context.Background(), 50*time.Millisecond,
		func(_ context.Context, q string) (string, error) {
			atomic.AddInt32(&calls, 1)
			return q, nil
		},
		func(result string, err error) {
			require.NoError(t, err)
			delivered <- result
		})
	defer d.Stop()

	for _, q := range []string{"a", "ac", "acm", "acme"} {
		d.Submit(q)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-delivered:
		require.Equal(t, "acme", got)
	case <-time.After(time.Second):
		t.Fatal("debounced call never delivered")
	}
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, delivered, 0)
}

func TestDebouncerDiscardsStaleResults(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	results := make([]string, 0, 2)
	done := make(chan struct{}, 2)

	d := NewDebouncer(context.Background(), 10*time.Millisecond,
		func(ctx context.Context, q string) (string, error) {
			if q == "slow" {
				<-release
			}
			return q, nil
		},
		func(result string, _ error) {
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			done <- struct{}{}
		})
	defer d.Stop()

	d.Submit("slow")
	time.Sleep(50 * time.Millisecond)
	d.Submit("fast")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fast query never delivered")
	}
	close(release)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"fast"}, results)
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var calls int32
	d := NewDebouncer(context.Background(), 20*time.Millisecond,
		func(context.Context, string) (struct{}, error) {
			atomic.AddInt32(&calls, 1)
			return struct{}{}, nil
		}, nil)
	d.Submit("x")
	d.Stop()
	d.Submit("y")
	time.Sleep(60 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&calls))
}
