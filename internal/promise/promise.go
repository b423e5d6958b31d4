// Package promise defines the thenable adapter the executor uses to
// interleave externally-asynchronous values with its cooperative scheduler.
//
// A thenable is any value carrying then(onFulfilled, onRejected) semantics.
// The adapter decides what counts as a thenable, so hosts can bridge their
// own future types without the executor knowing about them.
package promise

import (
	"errors"
	"sync"
)

// Thenable is an asynchronous value. Then registers callbacks invoked exactly
// once when the value settles; if the value already settled, the callback
// runs immediately on the calling goroutine.
type Thenable interface {
	Then(onFulfilled func(any), onRejected func(error))
}

// Adapter recognizes and constructs thenables.
type Adapter interface {
	// IsThenable reports whether v should be treated as asynchronous.
	IsThenable(v any) bool
	// Convert returns the Thenable form of a value for which IsThenable is
	// true.
	Convert(v any) Thenable
	// Resolved returns a thenable already settled with v.
	Resolved(v any) Thenable
	// Rejected returns a thenable already settled with err.
	Rejected(err error) Thenable
	// Wait blocks until t settles and returns its outcome.
	Wait(t Thenable) (any, error)
}

// Default is the adapter used when the executor is not configured with one.
// It recognizes any Thenable implementation.
var Default Adapter = defaultAdapter{}

type defaultAdapter struct{}

func (defaultAdapter) IsThenable(v any) bool {
	_, ok := v.(Thenable)
	return ok
}

func (defaultAdapter) Convert(v any) Thenable { return v.(Thenable) }

func (defaultAdapter) Resolved(v any) Thenable {
	f, resolve, _ := NewFuture()
	resolve(v)
	return f
}

func (defaultAdapter) Rejected(err error) Thenable {
	f, _, reject := NewFuture()
	reject(err)
	return f
}

func (defaultAdapter) Wait(t Thenable) (any, error) {
	done := make(chan struct{})
	var (
		value any
		err   error
	)
	t.Then(
		func(v any) { value = v; close(done) },
		func(e error) { err = e; close(done) },
	)
	<-done
	return value, err
}

// Future is a channel-free thenable that may be settled from any goroutine.
// Callbacks registered before settlement run on the settling goroutine;
// callbacks registered after run immediately.
type Future struct {
	mu        sync.Mutex
	settled   bool
	value     any
	err       error
	fulfilled []func(any)
	rejected  []func(error)
}

// NewFuture returns an unsettled future and its resolve/reject functions.
// Only the first settlement wins; later calls are ignored.
func NewFuture() (f *Future, resolve func(any), reject func(error)) {
	f = &Future{}
	return f, f.resolve, f.reject
}

// Go runs fn on a new goroutine and returns a future settled with its result.
func Go(fn func() (any, error)) *Future {
	f, resolve, reject := NewFuture()
	go func() {
		v, err := fn()
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return f
}

func (f *Future) Then(onFulfilled func(any), onRejected func(error)) {
	f.mu.Lock()
	if !f.settled {
		if onFulfilled != nil {
			f.fulfilled = append(f.fulfilled, onFulfilled)
		}
		if onRejected != nil {
			f.rejected = append(f.rejected, onRejected)
		}
		f.mu.Unlock()
		return
	}
	value, err := f.value, f.err
	f.mu.Unlock()
	if err != nil {
		if onRejected != nil {
			onRejected(err)
		}
		return
	}
	if onFulfilled != nil {
		onFulfilled(value)
	}
}

func (f *Future) resolve(v any) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.value = v
	callbacks := f.fulfilled
	f.fulfilled, f.rejected = nil, nil
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(v)
	}
}

func (f *Future) reject(err error) {
	if err == nil {
		err = errors.New("promise rejected with nil error")
	}
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.err = err
	callbacks := f.rejected
	f.fulfilled, f.rejected = nil, nil
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(err)
	}
}
