package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// It supplies the default year and month for reports and the DecodedAt stamp.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// MarkDecoded returns obs with DecodedAt set to the current UTC time.
func MarkDecoded(obs Observation) Observation {
	obs.DecodedAt = clock.Now().UTC().Truncate(time.Millisecond)
	return obs
}
