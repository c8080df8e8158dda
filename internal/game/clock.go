package game

import "time"

// Timer is a pending scheduled call that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules the playback tick. The engine owns at most one pending
// Timer at a time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
