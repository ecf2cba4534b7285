package effects

import (
	"math"
	"math/rand"
	"testing"

	"wotlk-cat-sim/internal/character"
)

// stubHost records stat-routing calls without a full simulation.
type stubHost struct {
	hasteRating   float64
	speedFactor   float64
	recalcs       int
	scheduledEnds []float64
}

func newStubHost() *stubHost { return &stubHost{speedFactor: 1} }

func (h *stubHost) ApplyHasteRating(now, increment float64) { h.hasteRating += increment }
func (h *stubHost) MultiplySwingSpeed(now, factor float64)  { h.speedFactor *= factor }
func (h *stubHost) RecalcDamageParams()                     { h.recalcs++ }
func (h *stubHost) LogEvent(now float64, event, outcome string) {}
func (h *stubHost) ScheduleProcEnd(end float64) {
	h.scheduledEnds = append(h.scheduledEnds, end)
}

func newEffectsPlayer() *character.Player {
	p := character.NewPlayer(character.PlayerOptions{
		Stats: character.Stats{
			AttackPower: 10000,
			APMod:       1.1,
			Agility:     1300,
			CritChance:  0.5,
			WeaponSpeed: 3.0,
			ManaPool:    6000,
		},
		DamageMultiplier: 1.1,
	})
	p.SetRand(rand.New(rand.NewSource(9)))
	return p
}

func TestApplyDeltaAgilityCoupling(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	apBefore := p.Stats.AttackPower
	critBefore := p.Stats.CritChance

	ApplyDelta(host, p, TargetAgility, 0, 300)

	if math.Abs(p.Stats.AttackPower-(apBefore+1.1*300)) > 1e-9 {
		t.Errorf("AP after agility delta = %.1f, want +%g", p.Stats.AttackPower, 1.1*300)
	}
	if math.Abs(p.Stats.CritChance-(critBefore+300.0/40/100)) > 1e-9 {
		t.Errorf("crit after agility delta = %.4f", p.Stats.CritChance)
	}
	if host.recalcs != 1 {
		t.Errorf("recalcs = %d, want 1", host.recalcs)
	}

	ApplyDelta(host, p, TargetAgility, 0, -300)
	if math.Abs(p.Stats.AttackPower-apBefore) > 1e-9 ||
		math.Abs(p.Stats.CritChance-critBefore) > 1e-9 {
		t.Error("agility delta not symmetric on removal")
	}
}

func TestApplyDeltaHasteRoutesToHost(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()

	ApplyDelta(host, p, TargetHasteRating, 0, 500)
	if host.hasteRating != 500 {
		t.Errorf("host haste rating = %.0f, want 500", host.hasteRating)
	}
	if host.recalcs != 0 {
		t.Error("haste delta must not trigger a damage recalc")
	}
}

func TestFixedUseUptimeAndProcCount(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	trinket := &FixedUse{
		Bookkeeping: Bookkeeping{ProcName: "test trinket"},
		Mods:        []StatMod{{Target: TargetAttackPower, Amount: 500}},
		Duration:    20,
		Cooldown:    120,
	}
	trinket.Reset(rng)

	const fightLength = 600.0
	for i := 0; i <= 6000; i++ {
		trinket.Update(host, p, float64(i)/10)
	}
	trinket.ForceDeactivate(host, p, fightLength)

	wantProcs := int(fightLength/120) + 1
	if trinket.NumProcs != wantProcs {
		t.Errorf("procs = %d, want %d", trinket.NumProcs, wantProcs)
	}
	wantUptime := trinket.Duration / trinket.Cooldown
	if math.Abs(trinket.Uptime-wantUptime) > 0.01 {
		t.Errorf("uptime = %.3f, want about %.3f", trinket.Uptime, wantUptime)
	}
	if p.Stats.AttackPower != 10000 {
		t.Errorf("AP = %.0f, want restored to 10000 after deactivation",
			p.Stats.AttackPower)
	}
}

func TestFixedUseDelayAndMaxUses(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	potion := &FixedUse{
		Bookkeeping: Bookkeeping{ProcName: "test potion"},
		Mods:        []StatMod{{Target: TargetHasteRating, Amount: 500}},
		Duration:    15,
		Cooldown:    600,
		Delay:       30,
		MaxUses:     1,
	}
	potion.Reset(rng)

	potion.Update(host, p, 0)
	if potion.Active {
		t.Fatal("potion used before its delay")
	}
	potion.Update(host, p, 30)
	if !potion.Active {
		t.Fatal("potion not used at its delay")
	}
	for now := 30.0; now <= 5000; now += 10 {
		potion.Update(host, p, now)
	}
	if potion.NumProcs != 1 {
		t.Errorf("procs = %d, want capped at MaxUses=1", potion.NumProcs)
	}
}

func TestChanceProcLatchesUntilUpdate(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	proc := &ChanceProc{
		Bookkeeping: Bookkeeping{ProcName: "test proc"},
		Mods:        []StatMod{{Target: TargetArmorPen, Amount: 612}},
		Duration:    10,
		Cooldown:    45,
		ChanceOnHit: 1.0,
		Condition:   character.ProcAnyHit,
	}
	proc.Reset(rng)

	proc.OnHit(false, false)
	if proc.Active {
		t.Fatal("proc activated before the next update")
	}
	proc.Update(host, p, 1)
	if !proc.Active {
		t.Fatal("latched proc not consumed on update")
	}
	if p.Stats.ArmorPenRating != 612 {
		t.Errorf("ArP = %.0f, want 612 while active", p.Stats.ArmorPenRating)
	}

	// Expires at 11, then the internal cooldown holds until 46.
	proc.Update(host, p, 11)
	if proc.Active {
		t.Fatal("proc still active past its duration")
	}
	if p.Stats.ArmorPenRating != 0 {
		t.Errorf("ArP = %.0f, want 0 after expiry", p.Stats.ArmorPenRating)
	}

	proc.OnHit(false, false)
	proc.Update(host, p, 20)
	if proc.Active {
		t.Fatal("proc activated during its internal cooldown")
	}

	// Once the cooldown has been observed by an update, the next landed
	// hit can proc again.
	proc.Update(host, p, 46)
	proc.OnHit(false, false)
	proc.Update(host, p, 46.1)
	if !proc.Active {
		t.Fatal("proc not available after its internal cooldown")
	}
}

func TestRefreshingProcDoesNotStack(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	proc := &RefreshingProc{ChanceProc: ChanceProc{
		Bookkeeping: Bookkeeping{ProcName: "test greatness"},
		Mods:        []StatMod{{Target: TargetAgility, Amount: 300}},
		Duration:    15,
		Cooldown:    0,
		ChanceOnHit: 1.0,
		Condition:   character.ProcAnyHit,
	}}
	proc.Reset(rng)

	agiBefore := p.Stats.Agility

	proc.OnHit(false, false)
	proc.Update(host, p, 1)
	firstEnd := proc.DeactivationTime

	proc.Update(host, p, 2)
	proc.OnHit(false, false)
	proc.Update(host, p, 5)

	if math.Abs(p.Stats.Agility-(agiBefore+300)) > 1e-9 {
		t.Errorf("agility = %.0f, want a single application worth",
			p.Stats.Agility)
	}
	if proc.DeactivationTime <= firstEnd {
		t.Error("refresh did not extend the buff")
	}

	proc.ForceDeactivate(host, p, 10)
	if math.Abs(p.Stats.Agility-agiBefore) > 1e-9 {
		t.Errorf("agility = %.0f, want restored after deactivation", p.Stats.Agility)
	}
}

func TestStackingProcBoundsAndExactRemoval(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	stacking := &StackingProc{
		Bookkeeping:    Bookkeeping{ProcName: "test stacks"},
		Target:         TargetAttackPower,
		StackIncrement: 16,
		MaxStacks:      5,
		AuraName:       "test stacks",
		StackName:      "test stack",
		StackRates:     ProcRates{White: 1, Yellow: 1},
		AuraDuration:   30,
		Cooldown:       60,
		ActivatedAura:  true,
	}
	stacking.Reset(rng)

	apBefore := p.Stats.AttackPower

	stacking.Update(host, p, 0)
	if !stacking.Active {
		t.Fatal("activated aura did not open at fight start")
	}

	for i := 0; i < 10; i++ {
		stacking.OnHit(false, false)
		stacking.Update(host, p, 1+float64(i))
	}
	if stacking.Stacks != 5 {
		t.Errorf("stacks = %d, want capped at 5", stacking.Stacks)
	}
	wantAP := apBefore + 16*5
	if math.Abs(p.Stats.AttackPower-wantAP) > 1e-9 {
		t.Errorf("AP = %.0f, want %.0f at max stacks", p.Stats.AttackPower, wantAP)
	}

	// Expiry removes increment times stack count in one delta.
	stacking.Update(host, p, 31)
	if stacking.Active || stacking.Stacks != 0 {
		t.Error("aura not fully torn down at expiry")
	}
	if math.Abs(p.Stats.AttackPower-apBefore) > 1e-9 {
		t.Errorf("AP = %.0f, want exactly restored to %.0f",
			p.Stats.AttackPower, apBefore)
	}
}

func TestInstantDamageProcResists(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	proc := &InstantDamageProc{
		Bookkeeping: Bookkeeping{ProcName: "test vial"},
		Rates:       ProcRates{White: 1, Yellow: 1},
		MissChance:  0,
		BaseLow:     100,
		BaseHigh:    100,
	}
	proc.Reset(rng)

	allowed := map[float64]bool{100: true, 75: true, 50: true, 25: true}
	total := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		proc.OnHit(false, false)
		damage := proc.Update(host, p, float64(i))
		if !allowed[damage] {
			t.Fatalf("damage %.1f outside the resist table", damage)
		}
		total += damage
	}
	// Expected value 100*0.84 + 75*0.11 + 50*0.04 + 25*0.01.
	want := 94.5
	if math.Abs(total/n-want) > 1.5 {
		t.Errorf("mean proc damage = %.2f, want about %.1f", total/n, want)
	}
}

func TestBloodlustScalesSwingSpeed(t *testing.T) {
	host := newStubHost()
	p := newEffectsPlayer()
	rng := rand.New(rand.NewSource(4))

	lust := NewBloodlust(0)
	lust.Reset(rng)

	lust.Update(host, p, 0)
	if math.Abs(host.speedFactor-1.3) > 1e-9 {
		t.Errorf("speed factor = %.2f, want 1.3 while active", host.speedFactor)
	}
	lust.Update(host, p, 40)
	if math.Abs(host.speedFactor-1.0) > 1e-9 {
		t.Errorf("speed factor = %.2f, want restored to 1.0", host.speedFactor)
	}
}
