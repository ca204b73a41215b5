package application

import "time"

// Clock makes timestamps injectable in tests
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, always UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
