package ic

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Future is an eventual value. It settles exactly once, either with a value
// or with an error.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

// NewFuture returns a pending future. Settle it with Resolve or Reject.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future already settled with v.
func Resolved(v any) *Future {
	f := NewFuture()
	f.Resolve(v)
	return f
}

// Rejected returns a future already settled with err.
func Rejected(err error) *Future {
	f := NewFuture()
	f.Reject(err)
	return f
}

// Async runs fn on its own goroutine and returns a future settled with its
// result. A panic in fn rejects the future.
func Async(fn func() (any, error)) *Future {
	f := NewFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Reject(errors.Errorf("panic in async function: %v", r))
			}
		}()
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles the future with v. It reports false if the future had
// already settled.
func (f *Future) Resolve(v any) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. It reports false if the future had
// already settled.
func (f *Future) Reject(err error) bool {
	if err == nil {
		err = errors.New("future rejected with nil error")
	}
	return f.settle(nil, err)
}

func (f *Future) settle(v any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.val = v
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled, without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done. A future settled
// with another future adopts that future's outcome.
func (f *Future) Await(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cur := f
	for {
		select {
		case <-cur.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if cur.err != nil {
			return nil, cur.err
		}
		next, ok := cur.val.(*Future)
		if !ok || next == nil {
			return cur.val, nil
		}
		if next == f || next == cur {
			return nil, errors.New("future settled with itself")
		}
		cur = next
	}
}
