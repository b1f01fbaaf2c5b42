package tracker

import "time"

// DefaultStallGrace is how long a possible stall onset may stay unresolved before
// it is reported as buffering.
const DefaultStallGrace = 100 * time.Millisecond

// stallTimer is a single-slot debounce. A cleared or superseded arm never fires,
// even when its callback is already queued behind the tracker lock.
type stallTimer struct {
	scheduler  Scheduler
	grace      time.Duration
	onExpire   func(generation uint64)
	timer      Timer
	generation uint64
}

func newStallTimer(scheduler Scheduler, grace time.Duration, onExpire func(generation uint64)) *stallTimer {
	return &stallTimer{
		scheduler: scheduler,
		grace:     grace,
		onExpire:  onExpire,
	}
}

func (s *stallTimer) start() {
	s.clear()

	generation := s.generation
	s.timer = s.scheduler.AfterFunc(s.grace, func() {
		s.onExpire(generation)
	})
}

func (s *stallTimer) clear() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *stallTimer) pending() bool {
	return s.timer != nil
}

// expire consumes the arm identified by generation. It reports false for stale arms.
func (s *stallTimer) expire(generation uint64) bool {
	if s.timer == nil || generation != s.generation {
		return false
	}

	s.timer = nil
	return true
}
