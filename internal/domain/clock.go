package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps generated artifacts and published records. Tests and fixture
// generators freeze it with SetClock so output is byte-for-byte reproducible.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the package time source. Pass nil to restore wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Now returns the current time in UTC from the package clock.
func Now() time.Time {
	return clock.Now().UTC()
}
