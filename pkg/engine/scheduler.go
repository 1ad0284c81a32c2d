// pkg/engine/scheduler.go
package engine

import "time"

// Task is a repeating timer created by a Scheduler.
type Task interface {
	// Cancel stops the task. Calling it more than once has no effect.
	Cancel()
	// Active reports whether the task will fire again.
	Active() bool
}

// Scheduler creates repeating tasks and is advanced by the frame driver.
// Callbacks run inline on the goroutine calling Advance.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
	Advance(frame time.Duration)
}

// FrameScheduler is a Scheduler driven purely by frame time, so timers
// follow the simulation rather than the wall clock.
type FrameScheduler struct {
	tasks []*frameTask
}

type frameTask struct {
	interval  time.Duration
	elapsed   time.Duration
	fn        func()
	cancelled bool
}

func (t *frameTask) Cancel()      { t.cancelled = true }
func (t *frameTask) Active() bool { return !t.cancelled }

// NewFrameScheduler returns an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Every registers fn to run each time interval elapses. A non-positive
// interval yields a task that never fires.
func (s *FrameScheduler) Every(interval time.Duration, fn func()) Task {
	t := &frameTask{interval: interval, fn: fn}
	if interval <= 0 {
		t.cancelled = true
		return t
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves every task forward by frame and fires the callbacks that
// came due, once per elapsed interval. Tasks created by a callback start
// counting on the next Advance.
func (s *FrameScheduler) Advance(frame time.Duration) {
	if frame <= 0 {
		return
	}
	due := make([]*frameTask, len(s.tasks))
	copy(due, s.tasks)
	for _, t := range due {
		if t.cancelled {
			continue
		}
		t.elapsed += frame
		for t.elapsed >= t.interval && !t.cancelled {
			t.elapsed -= t.interval
			t.fn()
		}
	}
	s.prune()
}

// Pending returns the number of live tasks.
func (s *FrameScheduler) Pending() int {
	s.prune()
	return len(s.tasks)
}

func (s *FrameScheduler) prune() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
}
