package effects

import (
	"math"
	"math/rand"

	"wotlk-cat-sim/internal/character"
)

// Effect is a temporary buff source: an activated trinket or potion, a
// chance-on-hit proc, a stacking proc, or a refreshing proc. The
// simulation calls Update on every event boundary; any instant damage
// dealt by the effect is returned.
type Effect interface {
	Name() string
	Reset(rng *rand.Rand)
	Update(host Host, p *character.Player, now float64) float64
	ForceDeactivate(host Host, p *character.Player, now float64)
	Stats() *Bookkeeping
}

// Bookkeeping is the shared activation state and uptime accounting
// composed into every Effect variant.
type Bookkeeping struct {
	ProcName string

	Active           bool
	CanProc          bool
	NumProcs         int
	Uptime           float64
	ActivationTime   float64
	DeactivationTime float64

	cooldown   Timer
	lastUpdate float64
}

// Stats returns the effect's shared bookkeeping block.
func (b *Bookkeeping) Stats() *Bookkeeping { return b }

// Name returns the buff name used in logs and reports.
func (b *Bookkeeping) Name() string { return b.ProcName }

func (b *Bookkeeping) resetBookkeeping() {
	b.ActivationTime = math.Inf(-1)
	b.Active = false
	b.CanProc = true
	b.NumProcs = 0
	b.Uptime = 0
	b.cooldown.ForceReady()
	b.lastUpdate = 0
}

// foldUptime folds elapsed active time into the running uptime
// fraction: uptime(t) = (uptime(t0)*t0 + active*(t-t0)) / t.
func (b *Bookkeeping) foldUptime(now float64) {
	if now > b.lastUpdate {
		dt := now - b.lastUpdate
		active := 0.0
		if b.Active {
			active = 1
		}
		b.Uptime = (b.Uptime*b.lastUpdate + dt*active) / now
		b.lastUpdate = now
	}
}

// startCooldown puts the effect on its internal cooldown.
func (b *Bookkeeping) startCooldown(now, cooldown float64) {
	b.cooldown.Reset(now, cooldown)
	b.CanProc = false
}

// delayFirstUse holds the first activation back until the given
// simulation time.
func (b *Bookkeeping) delayFirstUse(delay float64) {
	b.cooldown.Reset(0, delay)
	b.CanProc = false
}

// cooldownElapsed flips CanProc back on once the internal cooldown has
// passed.
func (b *Bookkeeping) cooldownElapsed(now float64) {
	if !b.CanProc && b.cooldown.Ready(now) {
		b.CanProc = true
	}
}
