package character

import (
	"math"
	"math/rand"
	"testing"
)

func newTestPlayer() *Player {
	p := NewPlayer(PlayerOptions{
		Stats: Stats{
			AttackPower:    10000,
			APMod:          1.1,
			Agility:        1300,
			HitChance:      0.08,
			CritChance:     0.50,
			WeaponSpeed:    3.0,
			ManaPool:       6000,
			Intellect:      200,
			Spirit:         150,
			ArmorPenRating: 400,
		},
		Talents: Talents{
			SavageFury:    2,
			Furor:         5,
			PrimalGore:    true,
			OmenOfClarity: true,
		},
		Wolfshead:        true,
		DamageMultiplier: 1.1,
	})
	p.SetRand(rand.New(rand.NewSource(1)))
	p.CalcDamageParams(DebuffState{BossArmor: 10643, SunderStacks: 5, FaerieFire: true})
	return p
}

func TestNewPlayerCritSuppression(t *testing.T) {
	p := newTestPlayer()
	if math.Abs(p.Stats.CritChance-(0.50-0.048)) > 1e-9 {
		t.Errorf("crit chance = %.4f, want input minus 4.8%% suppression",
			p.Stats.CritChance)
	}
}

func TestCalcMissChance(t *testing.T) {
	p := newTestPlayer()

	// 8% hit caps out special misses entirely; no expertise leaves the
	// full 6.5% dodge.
	if math.Abs(p.MissChance-0.065) > 1e-9 {
		t.Errorf("miss chance at hit cap = %.4f, want 0.065", p.MissChance)
	}

	p.Stats.HitChance = 0
	p.Stats.ExpertiseRating = 26 * 8.1974973675
	p.CalcMissChance()
	// 26 expertise removes all 6.5% dodge; 0 hit leaves the 8% miss.
	if math.Abs(p.MissChance-0.08) > 1e-9 {
		t.Errorf("miss chance at expertise cap = %.4f, want 0.08", p.MissChance)
	}
	if p.DodgeChance != 0 {
		t.Errorf("dodge chance at expertise cap = %.4f, want 0", p.DodgeChance)
	}
}

func TestBerserkHalvesCosts(t *testing.T) {
	p := newTestPlayer()
	fullShred := p.ShredCost

	p.Berserk = true
	p.SetAbilityCosts()
	if math.Abs(p.ShredCost-fullShred/2) > 1e-9 {
		t.Errorf("berserk shred cost = %.1f, want %.1f", p.ShredCost, fullShred/2)
	}
	if math.Abs(p.BiteCost-17.5) > 1e-9 {
		t.Errorf("berserk bite cost = %.1f, want 17.5", p.BiteCost)
	}
}

func TestRegenBounds(t *testing.T) {
	p := newTestPlayer()
	p.Energy = 95
	p.Regen(2.0)
	if p.Energy != 100 {
		t.Errorf("energy = %.1f, want capped at 100", p.Energy)
	}

	p.CatForm = false
	p.Enrage = true
	p.Rage = 99.5
	p.Regen(2.0)
	if p.Rage > 100 {
		t.Errorf("rage = %.1f, want capped at 100", p.Rage)
	}
}

func TestBuilderAwardsComboPoints(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 0
	p.Stats.CritChance = -1 // force ordinary hits

	energyBefore := p.Energy
	damage, success := p.Shred(false)
	if !success || damage <= 0 {
		t.Fatalf("forced hit shred returned damage=%.1f success=%v", damage, success)
	}
	if p.ComboPoints != 1 {
		t.Errorf("combo points = %d, want 1 after non-crit builder", p.ComboPoints)
	}
	if math.Abs((energyBefore-p.Energy)-p.ShredCost) > 1e-9 {
		t.Errorf("energy spent = %.1f, want full cost %.1f",
			energyBefore-p.Energy, p.ShredCost)
	}
	if math.Abs(p.GCD-1.0) > 1e-9 {
		t.Errorf("GCD = %.2f, want 1.0", p.GCD)
	}
}

func TestBuilderCritAwardsTwoPoints(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 0
	p.Stats.CritChance = 2 // force crits

	p.Shred(false)
	if p.ComboPoints != 2 {
		t.Errorf("combo points = %d, want 2 after crit builder", p.ComboPoints)
	}

	p.ComboPoints = 5
	p.Energy = 100
	p.Shred(false)
	if p.ComboPoints != 5 {
		t.Errorf("combo points = %d, want capped at 5", p.ComboPoints)
	}
}

func TestBuilderMissRefund(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 2 // force misses
	p.Energy = 100

	_, success := p.Shred(false)
	if success {
		t.Fatal("forced miss reported success")
	}
	wantSpent := p.ShredCost * 0.2
	if math.Abs((100-p.Energy)-wantSpent) > 1e-9 {
		t.Errorf("energy spent on miss = %.1f, want 20%% of cost %.1f",
			100-p.Energy, wantSpent)
	}
	if p.ComboPoints != 0 {
		t.Errorf("combo points = %d, want 0 after miss", p.ComboPoints)
	}
}

func TestClearcastMakesBuilderFree(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 0
	p.Stats.CritChance = -1
	p.OmenProc = true
	p.Energy = 50

	p.Shred(false)
	if p.Energy != 50 {
		t.Errorf("energy = %.1f, want unchanged on clearcast", p.Energy)
	}
	if p.OmenProc {
		t.Error("clearcast not consumed")
	}
}

func TestBiteConvertsExcessEnergy(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 0
	p.Stats.CritChance = -1
	p.BiteCritBonus = 0
	p.ComboPoints = 5
	p.Energy = 100

	damage := p.Bite()
	if damage <= 0 {
		t.Fatal("forced hit bite did no damage")
	}
	// 35 cost up front, then 30 excess drained on a landed hit.
	if math.Abs(p.Energy-35) > 1e-9 {
		t.Errorf("energy after bite = %.1f, want 35", p.Energy)
	}
	if p.ComboPoints != 0 {
		t.Errorf("combo points = %d, want 0 after landed bite", p.ComboPoints)
	}

	// The converted energy raises the damage floor above the base range.
	bonus := 30 * (9.4 + p.Stats.AttackPower/410) * p.Damage.BiteMultiplier
	if damage < p.Damage.BiteLow[5]+bonus-1e-6 {
		t.Errorf("bite damage %.1f below boosted floor %.1f",
			damage, p.Damage.BiteLow[5]+bonus)
	}
}

func TestBiteMissRefundKeepsComboPoints(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 2 // force miss
	p.ComboPoints = 5
	p.Energy = 100

	p.Bite()
	if p.ComboPoints != 5 {
		t.Errorf("combo points = %d, want kept on miss", p.ComboPoints)
	}
	wantEnergy := 100 - p.BiteCost + 0.8*p.BiteCost
	if math.Abs(p.Energy-wantEnergy) > 1e-9 {
		t.Errorf("energy after missed bite = %.1f, want %.1f", p.Energy, wantEnergy)
	}
}

func TestRipConsumesComboPoints(t *testing.T) {
	p := newTestPlayer()
	p.MissChance = 0
	p.ComboPoints = 5
	p.Energy = 100

	perTick, success := p.Rip()
	if !success {
		t.Fatal("forced hit rip failed")
	}
	if math.Abs(perTick-p.Damage.RipTick[5]) > 1e-9 {
		t.Errorf("rip tick = %.1f, want snapshot %.1f", perTick, p.Damage.RipTick[5])
	}
	if p.ComboPoints != 0 {
		t.Errorf("combo points = %d, want 0", p.ComboPoints)
	}
	if math.Abs(p.Energy-70) > 1e-9 {
		t.Errorf("energy = %.1f, want 70 after 30 cost", p.Energy)
	}
}

func TestRoarDurationScalesWithComboPoints(t *testing.T) {
	p := newTestPlayer()
	p.Energy = 100

	p.ComboPoints = 1
	end := p.Roar(10)
	if math.Abs(end-24) > 1e-9 {
		t.Errorf("1cp roar end = %.1f, want 24 (14s duration)", end)
	}
	if !p.SavageRoar {
		t.Error("savage roar not active after cast")
	}
	if p.ComboPoints != 0 {
		t.Errorf("combo points = %d, want 0 after roar", p.ComboPoints)
	}

	p.ComboPoints = 5
	end = p.Roar(10)
	if math.Abs(end-44) > 1e-9 {
		t.Errorf("5cp roar end = %.1f, want 44 (34s duration)", end)
	}
}

func TestShiftFurorEnergy(t *testing.T) {
	p := newTestPlayer()
	p.Energy = 100
	manaBefore := p.Mana

	p.Shift(10, false)
	if p.CatForm {
		t.Fatal("expected bear form after first shift")
	}
	if p.Mana >= manaBefore {
		t.Error("shift did not spend mana")
	}
	if !p.FiveSecondRule {
		t.Error("shift did not enter the five second rule")
	}

	p.Energy = 100
	p.Shift(11.5, false)
	if !p.CatForm {
		t.Fatal("expected cat form after second shift")
	}
	// 5/5 Furor carries up to 100 energy and Wolfshead adds 20, but the
	// pool stays capped.
	if p.Energy != 100 {
		t.Errorf("energy after cat shift = %.1f, want capped at 100", p.Energy)
	}

	p.Shift(13, false)
	p.Energy = 30
	p.Shift(14.5, false)
	if math.Abs(p.Energy-50) > 1e-9 {
		t.Errorf("energy after low-energy cat shift = %.1f, want 30+20", p.Energy)
	}
	if math.Abs(p.GCD-1.5) > 1e-9 {
		t.Errorf("shift GCD = %.2f, want 1.5", p.GCD)
	}
}

func TestBearSpecialRageStaysInBounds(t *testing.T) {
	p := newTestPlayer()
	p.CatForm = false
	p.MissChance = 0
	p.Stats.CritChance = 2 // force crits

	// A clearcast crit Maul at full Rage skips the cost, so the +5 crit
	// rebate must not push the pool past 100.
	p.Rage = 100
	p.OmenProc = true
	p.Maul(false)
	if p.Rage > 100 {
		t.Errorf("rage after clearcast crit maul = %.1f, want capped at 100", p.Rage)
	}

	// A special costing more than the pool holds floors at zero.
	p.Stats.CritChance = -1
	p.Rage = 5
	p.Lacerate(false)
	if p.Rage != 0 {
		t.Errorf("rage after lacerate = %.1f, want floored at 0", p.Rage)
	}
}

func TestShiftManaFloor(t *testing.T) {
	p := newTestPlayer()
	p.Mana = 10

	p.Shift(10, false)
	if p.Mana != 0 {
		t.Errorf("mana after shift below cost = %.1f, want floored at 0", p.Mana)
	}
}

func TestGiftOfTheWildCastState(t *testing.T) {
	p := newTestPlayer()
	p.SpellGCD = 1.2
	manaBefore := p.Mana

	p.GiftOfTheWild(5)
	if p.CatForm || !p.Casting {
		t.Fatalf("cat=%v casting=%v, want formless cast state", p.CatForm, p.Casting)
	}
	if math.Abs(p.GCD-1.2) > 1e-9 {
		t.Errorf("GCD = %.2f, want hasted spell GCD 1.2", p.GCD)
	}
	if math.Abs((manaBefore-p.Mana)-1119) > 1e-9 {
		t.Errorf("mana spent = %.1f, want 1119", manaBefore-p.Mana)
	}
	if !p.FiveSecondRule {
		t.Error("cast did not enter the five second rule")
	}
	if p.Breakdown[AbilityGift].Casts != 1 {
		t.Errorf("gift casts = %d, want 1", p.Breakdown[AbilityGift].Casts)
	}

	p.Shift(6.2, false)
	if !p.CatForm || p.Casting {
		t.Errorf("cat=%v casting=%v, want back in cat form", p.CatForm, p.Casting)
	}

	p.Mana = 100
	p.GiftOfTheWild(10)
	if p.Mana != 0 {
		t.Errorf("mana after cast below cost = %.1f, want floored at 0", p.Mana)
	}
}

func TestGiftOfTheWildOmenRate(t *testing.T) {
	p := newTestPlayer()
	n := 5000
	procs := 0
	for i := 0; i < n; i++ {
		p.OmenProc = false
		p.Mana = p.Stats.ManaPool
		p.GiftOfTheWild(float64(i))
		if p.OmenProc {
			procs++
		}
	}

	// One 8.75% roll per raid member hit, 25 members.
	want := 1 - math.Pow(1-0.0875, 25)
	got := float64(procs) / float64(n)
	if math.Abs(got-want) > 0.02 {
		t.Errorf("gift omen rate = %.3f, want about %.3f", got, want)
	}
}

func TestAdvanceTimeDecrementsCooldowns(t *testing.T) {
	p := newTestPlayer()
	p.GCD = 1.0
	p.TFCD = 30
	p.BerserkCD = 180
	p.MangleCD = 6

	p.AdvanceTime(1.5)
	if p.GCD != 0 {
		t.Errorf("GCD = %.2f, want floored at 0", p.GCD)
	}
	if math.Abs(p.TFCD-28.5) > 1e-9 {
		t.Errorf("TFCD = %.2f, want 28.5", p.TFCD)
	}
	if math.Abs(p.MangleCD-4.5) > 1e-9 {
		t.Errorf("MangleCD = %.2f, want 4.5", p.MangleCD)
	}
}
