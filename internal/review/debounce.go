package review

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs fn only after input has been quiet for delay, with the last
// submitted value. Every submission supersedes the previous one: a pending
// timer is replaced, an in-flight run is cancelled, and results of superseded
// runs are never delivered.
type Debouncer[T, R any] struct {
	delay   time.Duration
	run     func(ctx context.Context, input T) (R, error)
	deliver func(result R, err error)

	parent context.Context
	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer binds fn and deliver to parent; cancelling parent stops the debouncer.
func NewDebouncer[T, R any](parent context.Context, delay time.Duration, fn func(ctx context.Context, input T) (R, error), deliver func(result R, err error)) *Debouncer[T, R] {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Debouncer[T, R]{delay: delay, run: fn, deliver: deliver, parent: parent}
}

// Submit schedules fn for input, replacing any pending or running call.
func (d *Debouncer[T, R]) Submit(input T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.parent.Err() != nil {
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq, input) })
}

// Stop cancels pending and running work. Later submissions are ignored.
func (d *Debouncer[T, R]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer[T, R]) fire(seq uint64, input T) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	result, err := d.run(ctx, input)

	d.mu.Lock()
	current := !d.closed && seq == d.seq
	d.mu.Unlock()
	if current && d.deliver != nil {
		d.deliver(result, err)
	}
}
