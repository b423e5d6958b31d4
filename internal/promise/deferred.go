package promise

// Deferred is a thenable settled explicitly by the test or host that created
// it. Unlike Future it is not safe for concurrent use; it exists to make
// scheduler interleavings deterministic.
type Deferred struct {
	settled   bool
	value     any
	err       error
	fulfilled []func(any)
	rejected  []func(error)
}

// NewDeferred returns an unsettled deferred value.
func NewDeferred() *Deferred { return &Deferred{} }

func (d *Deferred) Then(onFulfilled func(any), onRejected func(error)) {
	if !d.settled {
		if onFulfilled != nil {
			d.fulfilled = append(d.fulfilled, onFulfilled)
		}
		if onRejected != nil {
			d.rejected = append(d.rejected, onRejected)
		}
		return
	}
	if d.err != nil {
		if onRejected != nil {
			onRejected(d.err)
		}
		return
	}
	if onFulfilled != nil {
		onFulfilled(d.value)
	}
}

// Resolve settles the deferred with v and runs pending callbacks inline.
func (d *Deferred) Resolve(v any) {
	if d.settled {
		return
	}
	d.settled = true
	d.value = v
	callbacks := d.fulfilled
	d.fulfilled, d.rejected = nil, nil
	for _, cb := range callbacks {
		cb(v)
	}
}

// Reject settles the deferred with err and runs pending callbacks inline.
func (d *Deferred) Reject(err error) {
	if d.settled {
		return
	}
	d.settled = true
	d.err = err
	callbacks := d.rejected
	d.fulfilled, d.rejected = nil, nil
	for _, cb := range callbacks {
		cb(err)
	}
}
