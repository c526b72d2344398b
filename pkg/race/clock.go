package race

import "time"

// Clock reports nanoseconds elapsed since a fixed reference instant.
// Timestamps from different streams are only comparable when every runner in
// the process shares the same instance, so the clock is always passed in
// explicitly, never held as a global.
type Clock interface {
	ElapsedNanos() uint64
}

type epochClock struct {
	epoch time.Time
}

// NewEpochClock creates a Clock anchored at the current instant.
func NewEpochClock() Clock {
	return &epochClock{epoch: time.Now()}
}

func (c *epochClock) ElapsedNanos() uint64 {
	return uint64(time.Since(c.epoch))
}
