package schedule

import (
	"container/heap"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer struct {
	at        time.Time
	seq       uint64
	fn        func()
	sched     *Scheduler
	index     int
	fired     bool
	cancelled bool
}

// Cancel prevents the callback from running and drops the timer from its
// scheduler. Cancelling a timer that has already fired or was already
// cancelled does nothing.
func (t *Timer) Cancel() {
	if t == nil || t.fired || t.cancelled {
		return
	}
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(&t.sched.queue, t.index)
	}
}

// Active reports whether the callback is still pending.
func (t *Timer) Active() bool {
	return t != nil && !t.fired && !t.cancelled
}

// Deadline returns the time at which the callback is due.
func (t *Timer) Deadline() time.Time {
	return t.at
}

// Scheduler runs one-shot callbacks once their deadline has passed on the
// attached clock. Callbacks run inside RunDue, on the caller's goroutine.
type Scheduler struct {
	clock Clock
	queue timerQueue
	seq   uint64
}

// NewScheduler creates a scheduler driven by clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Clock returns the clock the scheduler measures deadlines against.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// After schedules fn to run once delay has elapsed. A zero or negative delay
// runs fn on the next RunDue.
func (s *Scheduler) After(delay time.Duration, fn func()) *Timer {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &Timer{
		at:    s.clock.Now().Add(delay),
		seq:   s.seq,
		fn:    fn,
		sched: s,
	}
	heap.Push(&s.queue, t)
	return t
}

// RunDue fires every timer whose deadline is not after the current time,
// in deadline order with ties broken by scheduling order. Timers scheduled
// by a callback run in the same pass when they are already due. It returns
// the number of callbacks that ran.
func (s *Scheduler) RunDue() int {
	ran := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.at.After(s.clock.Now()) {
			break
		}
		heap.Pop(&s.queue)
		next.fired = true
		next.fn()
		ran++
	}
	return ran
}

// Pending returns the number of timers that have neither fired nor been
// cancelled.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
