package tracker

import "time"

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false if it already fired.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallClock schedules on real time.
var WallClock Scheduler = wallClock{}
