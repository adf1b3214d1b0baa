package framework

import (
	"sort"
	"time"
)

// Timer is a one-shot deferred event owned by Timers.
type Timer struct {
	at      time.Time
	fn      func(now time.Time)
	stopped bool
	fired   bool
}

// Stop cancels the timer. It returns false if the timer already fired
// or was stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Pending indicates the timer is neither fired nor stopped.
func (t *Timer) Pending() bool {
	return t != nil && !t.stopped && !t.fired
}

// Timers is a deferred-event queue checked once per loop iteration.
// It replaces sleeping inside controllers: instead of blocking the loop,
// a controller schedules the continuation and returns.
// Timers is not safe for concurrent use; it belongs to the loop goroutine.
type Timers struct {
	queue []*Timer
}

// After schedules fn to run at the first Fire with a time not before now+d.
func (q *Timers) After(now time.Time, d time.Duration, fn func(now time.Time)) *Timer {
	t := &Timer{at: now.Add(d), fn: fn}
	i := sort.Search(len(q.queue), func(i int) bool {
		return q.queue[i].at.After(t.at)
	})
	q.queue = append(q.queue, nil)
	copy(q.queue[i+1:], q.queue[i:])
	q.queue[i] = t
	return t
}

// Fire runs all timers due at now in due order and returns how many ran.
// Timers scheduled by a firing callback run in the same call if they are
// already due.
func (q *Timers) Fire(now time.Time) (n int) {
	for len(q.queue) > 0 {
		t := q.queue[0]
		if t.at.After(now) {
			break
		}
		q.queue = q.queue[1:]
		if t.stopped {
			continue
		}
		t.fired = true
		t.fn(now)
		n++
	}
	return
}

// Len returns the number of pending timers.
func (q *Timers) Len() (n int) {
	for _, t := range q.queue {
		if !t.stopped {
			n++
		}
	}
	return
}

// Control implements Controller.
func (q *Timers) Control(cc ControlContext) error {
	q.Fire(cc.Time())
	return nil
}
