package effects

import (
	"fmt"
	"math/rand"

	"wotlk-cat-sim/internal/character"
)

// ProcRates holds separate proc chances for white swings and special
// abilities, used by ppm-normalized effects.
type ProcRates struct {
	White  float64
	Yellow float64
}

// ChanceProc models a passive effect with a proc chance on hit or
// crit. The chance roll happens when the player lands an attack; the
// latched result is consumed on the next simulation update, matching
// how in-game auras land after the triggering damage event.
type ChanceProc struct {
	Bookkeeping

	Mods     []StatMod
	Duration float64
	Cooldown float64

	// Either flat chances keyed on crit, or separate white/yellow
	// rates for ppm effects.
	ChanceOnHit  float64
	ChanceOnCrit float64
	Rates        *ProcRates

	Condition character.ProcKind

	rng          *rand.Rand
	procHappened bool
}

func (t *ChanceProc) Reset(rng *rand.Rand) {
	t.resetBookkeeping()
	t.rng = rng
	t.procHappened = false
}

// Kind implements character.ProcListener.
func (t *ChanceProc) Kind() character.ProcKind { return t.Condition }

// OnHit implements character.ProcListener: rolls for the proc on a
// landed attack and latches the result.
func (t *ChanceProc) OnHit(crit, yellow bool) {
	if !t.CanProc {
		t.procHappened = false
		return
	}

	var rate float64
	if t.Rates != nil {
		if yellow {
			rate = t.Rates.Yellow
		} else {
			rate = t.Rates.White
		}
	} else if crit {
		rate = t.ChanceOnCrit
	} else {
		rate = t.ChanceOnHit
	}

	t.procHappened = t.rng.Float64() < rate
}

func (t *ChanceProc) consumeProc() bool {
	if t.CanProc && t.procHappened {
		t.procHappened = false
		return true
	}
	return false
}

func (t *ChanceProc) activate(host Host, p *character.Player, now float64) {
	t.ActivationTime = now
	t.DeactivationTime = now + t.Duration
	applyMods(host, p, t.Mods, now, 1)
	host.ScheduleProcEnd(t.DeactivationTime)
	t.Active = true
	t.startCooldown(now, t.Cooldown)
	t.NumProcs++
	host.LogEvent(now, t.ProcName, "applied")
}

func (t *ChanceProc) deactivate(host Host, p *character.Player, now float64) {
	applyMods(host, p, t.Mods, now, -1)
	t.Active = false
	host.LogEvent(now, t.ProcName, "falls off")
}

func (t *ChanceProc) Update(host Host, p *character.Player, now float64) float64 {
	t.foldUptime(now)

	if t.Active && now > t.DeactivationTime-1e-9 {
		t.deactivate(host, p, t.DeactivationTime)
	}
	t.cooldownElapsed(now)

	if t.consumeProc() {
		t.activate(host, p, now)
	}
	return 0
}

func (t *ChanceProc) ForceDeactivate(host Host, p *character.Player, now float64) {
	if t.Active {
		t.deactivate(host, p, now)
	}
}

// RefreshingProc is a ChanceProc whose buff does not stack: a proc
// while already active deactivates the running buff and immediately
// reapplies it, refreshing the duration.
type RefreshingProc struct {
	ChanceProc
}

func (t *RefreshingProc) Update(host Host, p *character.Player, now float64) float64 {
	t.foldUptime(now)

	if t.Active && now > t.DeactivationTime-1e-9 {
		t.deactivate(host, p, t.DeactivationTime)
	}
	t.cooldownElapsed(now)

	if t.consumeProc() {
		if t.Active {
			t.deactivate(host, p, now)
		}
		t.activate(host, p, now)
	}
	return 0
}

// InstantDamageProc deals direct spell damage on proc instead of
// applying a buff, with its own miss and partial resist table.
type InstantDamageProc struct {
	Bookkeeping

	Rates      ProcRates
	MissChance float64
	BaseLow    float64
	BaseHigh   float64

	rng          *rand.Rand
	procHappened bool
}

func (t *InstantDamageProc) Reset(rng *rand.Rand) {
	t.resetBookkeeping()
	t.rng = rng
	t.procHappened = false
}

func (t *InstantDamageProc) Kind() character.ProcKind { return character.ProcAnyHit }

func (t *InstantDamageProc) OnHit(crit, yellow bool) {
	rate := t.Rates.White
	if yellow {
		rate = t.Rates.Yellow
	}
	if t.rng.Float64() < rate {
		t.procHappened = true
	}
}

func (t *InstantDamageProc) Update(host Host, p *character.Player, now float64) float64 {
	if !t.procHappened {
		return 0
	}
	t.procHappened = false
	t.NumProcs++

	if t.rng.Float64() < t.MissChance {
		host.LogEvent(now, t.ProcName, "miss")
		return 0
	}

	damage := t.BaseLow + t.rng.Float64()*(t.BaseHigh-t.BaseLow)

	// Boss-level partial resists only, no resistance gear assumed.
	resistRoll := t.rng.Float64()
	switch {
	case resistRoll < 0.84:
	case resistRoll < 0.95:
		damage *= 0.75
	case resistRoll < 0.99:
		damage *= 0.5
	default:
		damage *= 0.25
	}

	host.LogEvent(now, t.ProcName, fmt.Sprintf("%d", int(damage)))
	return damage
}

func (t *InstantDamageProc) ForceDeactivate(host Host, p *character.Player, now float64) {}
