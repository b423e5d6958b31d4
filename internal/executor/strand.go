package executor

import (
	"fmt"
	"iter"
	"sync"

	promise "github.com/weftql/weft/internal/promise"
)

// strand is one cooperative unit of execution: a resumable coroutine frame.
// A strand suspends only by yielding a thenable to the scheduler; nested
// completion work is plain recursion inside the frame.
type strand struct {
	resume  func() (any, bool)
	stop    func()
	yieldFn func(any) bool

	// in carries the value or error the strand resumes with after a
	// suspension.
	in resumeValue
}

type resumeValue struct {
	val any
	err error
}

func newStrand(body func(st *strand)) *strand {
	st := &strand{}
	seq := func(yield func(any) bool) {
		st.yieldFn = yield
		body(st)
	}
	st.resume, st.stop = iter.Pull(seq)
	return st
}

// await suspends the strand on v until the scheduler resumes it with the
// settled outcome. A v the adapter does not recognize as a thenable resumes
// the strand immediately with v itself.
func (st *strand) await(v any) (any, error) {
	if !st.yieldFn(v) {
		return nil, fmt.Errorf("strand resumed after stop")
	}
	return st.in.val, st.in.err
}

// scheduler drives strands with single-threaded cooperative multitasking.
// A FIFO queue is drained to empty; strands suspended on thenables re-enter
// the queue when their thenable settles. A secondary schedule holds
// mutation-deferred root work that only starts when the queue is empty and
// nothing is pending.
type scheduler struct {
	adapter promise.Adapter

	queue    []*strand
	schedule []*strand
	pending  int

	// Settlement callbacks may fire on foreign goroutines; they park the
	// strand in ready and signal the drain loop.
	mu    sync.Mutex
	cond  *sync.Cond
	ready []*strand
}

func newScheduler(adapter promise.Adapter) *scheduler {
	s := &scheduler{adapter: adapter}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// enqueue adds a strand to the primary queue.
func (s *scheduler) enqueue(st *strand) {
	s.queue = append(s.queue, st)
}

// defer_ adds a strand to the mutation schedule; it will not start before
// all previously queued work, including its thenables, has finished.
func (s *scheduler) defer_(st *strand) {
	s.schedule = append(s.schedule, st)
}

// run drains the queue until no strand is runnable, no thenable is pending,
// and the schedule is empty.
func (s *scheduler) run() {
	for {
		for len(s.queue) > 0 {
			st := s.queue[0]
			s.queue = s.queue[1:]
			s.step(st)
		}
		if s.pending > 0 {
			s.mu.Lock()
			for len(s.ready) == 0 {
				s.cond.Wait()
			}
			settled := s.ready
			s.ready = nil
			s.mu.Unlock()
			s.pending -= len(settled)
			s.queue = append(s.queue, settled...)
			continue
		}
		if len(s.schedule) > 0 {
			s.queue = append(s.queue, s.schedule[0])
			s.schedule = s.schedule[1:]
			continue
		}
		return
	}
}

// step resumes a strand until it suspends on a thenable or finishes.
func (s *scheduler) step(st *strand) {
	for {
		y, ok := st.resume()
		if !ok {
			st.stop()
			return
		}
		if s.adapter.IsThenable(y) {
			s.pending++
			s.adapter.Convert(y).Then(
				func(v any) { s.settle(st, v, nil) },
				func(err error) { s.settle(st, nil, err) },
			)
			return
		}
		// Any other yielded value resumes immediately as the next input.
		st.in = resumeValue{val: y}
	}
}

func (s *scheduler) settle(st *strand, v any, err error) {
	s.mu.Lock()
	st.in = resumeValue{val: v, err: err}
	s.ready = append(s.ready, st)
	s.cond.Signal()
	s.mu.Unlock()
}
