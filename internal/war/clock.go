package war

import "time"

// Clock abstracts wall-clock time so status transitions and the scheduler
// can be driven deterministically in tests instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
