package effects

import (
	"math/rand"

	"wotlk-cat-sim/internal/character"
)

// StackingProc models effects that open an accumulation aura and then
// gain stat stacks on subsequent hits while the aura lasts. The aura
// is either activated on cooldown or itself proc-based. When the aura
// expires, the accumulated increment times the stack count is removed
// in a single delta.
type StackingProc struct {
	Bookkeeping

	Target         StatTarget
	StackIncrement float64
	MaxStacks      int
	AuraName       string
	StackName      string
	StackRates     ProcRates
	AuraDuration   float64
	Cooldown       float64

	// ActivatedAura selects use-on-cooldown aura application; when
	// false, AuraRates governs proc-based application.
	ActivatedAura bool
	AuraRates     ProcRates

	Stacks int

	rng          *rand.Rand
	procHappened bool
	accumulating bool
}

func (t *StackingProc) Reset(rng *rand.Rand) {
	t.resetBookkeeping()
	t.rng = rng
	t.CanProc = t.ActivatedAura
	t.procHappened = false
	t.accumulating = false
	t.Stacks = 0
	t.ProcName = t.AuraName
}

func (t *StackingProc) Kind() character.ProcKind { return character.ProcAnyHit }

// OnHit rolls either for aura application or for a new stack,
// depending on the current phase.
func (t *StackingProc) OnHit(crit, yellow bool) {
	if t.ActivatedAura && !t.accumulating {
		// Aura application is not proc-driven.
		return
	}
	if !t.CanProc {
		t.procHappened = false
		return
	}

	rates := t.StackRates
	if !t.accumulating {
		rates = t.AuraRates
	}
	rate := rates.White
	if yellow {
		rate = rates.Yellow
	}
	t.procHappened = t.rng.Float64() < rate
}

func (t *StackingProc) Update(host Host, p *character.Player, now float64) float64 {
	t.foldUptime(now)

	if t.Active && now > t.DeactivationTime-1e-9 {
		t.deactivate(host, p, t.DeactivationTime)
	}
	t.cooldownElapsed(now)

	switch {
	case !t.Active && t.CanProc && t.ActivatedAura:
		t.openAura(host, now)
	case !t.Active && t.CanProc && t.procHappened:
		t.procHappened = false
		t.openAura(host, now)
	case t.Active && t.procHappened:
		t.procHappened = false
		t.addStack(host, p, now)
	}
	return 0
}

func (t *StackingProc) openAura(host Host, now float64) {
	t.ActivationTime = now
	t.DeactivationTime = now + t.AuraDuration
	host.ScheduleProcEnd(t.DeactivationTime)
	t.Active = true
	t.accumulating = true
	// The cooldown starts ticking at aura open, but stacks may keep
	// proccing while the aura lasts.
	t.startCooldown(now, t.Cooldown)
	t.CanProc = true
	t.NumProcs++
	t.Stacks = 0
	host.LogEvent(now, t.AuraName, "applied")
}

func (t *StackingProc) addStack(host Host, p *character.Player, now float64) {
	if t.Stacks >= t.MaxStacks {
		t.CanProc = false
		return
	}
	ApplyDelta(host, p, t.Target, now, t.StackIncrement)
	t.Stacks++
	host.LogEvent(now, t.StackName, "applied")
}

func (t *StackingProc) deactivate(host Host, p *character.Player, now float64) {
	if t.Stacks > 0 {
		ApplyDelta(host, p, t.Target, now, -t.StackIncrement*float64(t.Stacks))
	}
	t.Active = false
	t.accumulating = false
	t.CanProc = false
	t.Stacks = 0
	t.procHappened = false
	host.LogEvent(now, t.AuraName, "falls off")
}

func (t *StackingProc) ForceDeactivate(host Host, p *character.Player, now float64) {
	if t.Active {
		t.deactivate(host, p, now)
	}
}
