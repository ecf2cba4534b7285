package effects

import (
	"math/rand"

	"wotlk-cat-sim/internal/character"
)

// FixedUse models an on-use trinket or potion that is popped on
// cooldown as often as possible. An optional initial delay holds the
// first use back, and MaxUses caps total activations (potions).
type FixedUse struct {
	Bookkeeping

	Mods     []StatMod
	Duration float64
	Cooldown float64
	Delay    float64
	MaxUses  int
}

func (t *FixedUse) Reset(rng *rand.Rand) {
	t.resetBookkeeping()
	if t.Delay > 0 {
		t.delayFirstUse(t.Delay)
	}
}

func (t *FixedUse) activate(host Host, p *character.Player, now float64) {
	t.ActivationTime = now
	t.DeactivationTime = now + t.Duration
	applyMods(host, p, t.Mods, now, 1)
	host.ScheduleProcEnd(t.DeactivationTime)
	t.Active = true
	t.startCooldown(now, t.Cooldown)
	t.NumProcs++
	host.LogEvent(now, t.ProcName, "applied")
}

func (t *FixedUse) deactivate(host Host, p *character.Player, now float64) {
	applyMods(host, p, t.Mods, now, -1)
	t.Active = false
	host.LogEvent(now, t.ProcName, "falls off")
}

func (t *FixedUse) Update(host Host, p *character.Player, now float64) float64 {
	t.foldUptime(now)

	if t.Active && now > t.DeactivationTime-1e-9 {
		t.deactivate(host, p, t.DeactivationTime)
	}
	t.cooldownElapsed(now)

	if t.CanProc && (t.MaxUses == 0 || t.NumProcs < t.MaxUses) {
		t.activate(host, p, now)
	}
	return 0
}

func (t *FixedUse) ForceDeactivate(host Host, p *character.Player, now float64) {
	if t.Active {
		t.deactivate(host, p, now)
	}
}

// Bloodlust is an on-use haste effect that multiplies attack speed
// rather than adding haste rating, so it scales the swing timer
// directly through the host.
type Bloodlust struct {
	Bookkeeping

	Delay float64
}

const (
	bloodlustFactor   = 1.3
	bloodlustDuration = 40
	bloodlustCooldown = 600
)

func NewBloodlust(delay float64) *Bloodlust {
	return &Bloodlust{
		Bookkeeping: Bookkeeping{ProcName: "Bloodlust"},
		Delay:       delay,
	}
}

func (t *Bloodlust) Reset(rng *rand.Rand) {
	t.resetBookkeeping()
	if t.Delay > 0 {
		t.delayFirstUse(t.Delay)
	}
}

func (t *Bloodlust) Update(host Host, p *character.Player, now float64) float64 {
	t.foldUptime(now)

	if t.Active && now > t.DeactivationTime-1e-9 {
		host.MultiplySwingSpeed(t.DeactivationTime, 1/bloodlustFactor)
		t.Active = false
		host.LogEvent(t.DeactivationTime, t.ProcName, "falls off")
	}
	t.cooldownElapsed(now)

	if t.CanProc {
		t.ActivationTime = now
		t.DeactivationTime = now + bloodlustDuration
		host.MultiplySwingSpeed(now, bloodlustFactor)
		host.ScheduleProcEnd(t.DeactivationTime)
		t.Active = true
		t.startCooldown(now, bloodlustCooldown)
		t.NumProcs++
		host.LogEvent(now, t.ProcName, "applied")
	}
	return 0
}

func (t *Bloodlust) ForceDeactivate(host Host, p *character.Player, now float64) {
	if t.Active {
		host.MultiplySwingSpeed(now, 1/bloodlustFactor)
		t.Active = false
		host.LogEvent(now, t.ProcName, "falls off")
	}
}
