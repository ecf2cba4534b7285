package effects

import "math"

// Timer tracks a ready-at timestamp for cooldown-style mechanics on
// the simulation clock, in seconds.
type Timer struct {
	readyAt float64
}

// Ready returns true if the timer is ready at the provided time.
func (t *Timer) Ready(now float64) bool {
	return now >= t.readyAt-1e-9
}

// Remaining returns the remaining time until the timer is ready.
func (t *Timer) Remaining(now float64) float64 {
	if t.Ready(now) {
		return 0
	}
	return t.readyAt - now
}

// Reset sets the timer to become ready after the provided cooldown.
func (t *Timer) Reset(now, cooldown float64) {
	t.readyAt = now + cooldown
}

// ForceReady immediately marks the timer ready.
func (t *Timer) ForceReady() {
	t.readyAt = math.Inf(-1)
}

// ReadyAt returns the current ready timestamp.
func (t *Timer) ReadyAt() float64 {
	return t.readyAt
}
