package audio

import "container/heap"

// Clock reports the current time in seconds.
type Clock interface {
	Now() float64
}

// Timer is a pending callback. Cancel reports whether the call prevented the
// callback from running; cancelling a fired or cancelled timer is a no-op.
type Timer interface {
	Cancel() bool
}

type Scheduler interface {
	After(delay float64, f func()) Timer
}

// Timeline is a Clock and Scheduler driven by whoever owns the audio thread.
// Timers only fire from Advance, so callbacks run on the caller's goroutine.
type Timeline struct {
	now   float64
	seq   uint64
	queue timerQueue
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (tl *Timeline) Now() float64 { return tl.now }

func (tl *Timeline) After(delay float64, f func()) Timer {
	if delay < 0 {
		delay = 0
	}
	t := &timelineTimer{
		timeline: tl,
		due:      tl.now + delay,
		seq:      tl.seq,
		f:        f,
	}
	tl.seq++
	heap.Push(&tl.queue, t)
	return t
}

// Advance moves the clock forward to t, firing every timer due at or before
// t in due order. Timers scheduled by a callback fire in the same call if
// they are due.
func (tl *Timeline) Advance(t float64) {
	for len(tl.queue) > 0 && tl.queue[0].due <= t {
		next := heap.Pop(&tl.queue).(*timelineTimer)
		if next.due > tl.now {
			tl.now = next.due
		}
		next.f()
	}
	if t > tl.now {
		tl.now = t
	}
}

// Pending returns the number of timers that have not fired yet.
func (tl *Timeline) Pending() int { return len(tl.queue) }

type timelineTimer struct {
	timeline *Timeline
	due      float64
	seq      uint64
	index    int // position in the heap, -1 once removed
	f        func()
}

func (t *timelineTimer) Cancel() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.timeline.queue, t.index)
	return true
}

type timerQueue []*timelineTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x interface{}) {
	t := x.(*timelineTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
