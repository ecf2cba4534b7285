package character

import (
	"fmt"
	"math"

	"wotlk-cat-sim/internal/combat"
)

func (p *Player) logCast(name string, result combat.AttackResult, clearcast bool) {
	if p.Log == nil {
		return
	}
	var outcome string
	if result.Miss() {
		outcome = "miss"
		if clearcast {
			outcome += " (clearcast)"
		}
	} else {
		outcome = fmt.Sprintf("%d", int(result.Damage))
		switch {
		case result.Crit() && clearcast:
			outcome += " (crit, clearcast)"
		case result.Crit():
			outcome += " (crit)"
		case result.Outcome == combat.OutcomeGlance:
			outcome += " (glance)"
		case clearcast:
			outcome += " (clearcast)"
		}
	}
	p.Log(name, outcome)
}

// Swing executes a melee auto-attack in the current form and returns
// the damage done, including any Savage Roar contribution.
func (p *Player) Swing() float64 {
	low, high := p.Damage.WhiteLow, p.Damage.WhiteHigh
	if !p.CatForm {
		low, high = p.Damage.WhiteBearLow, p.Damage.WhiteBearHigh
	}

	critChance := p.Stats.CritChance
	if !p.CatForm {
		critChance -= 0.04
	}
	result := p.Roller.RollWhite(
		low, high, p.MissChance, critChance, p.CritMultiplier(),
	)

	if p.Enrage {
		result.Damage *= 1.15
	}

	roarDamage := 0.0
	if p.CatForm && p.SavageRoar {
		roarDamage = p.RoarFac * result.Damage
	}

	if !result.Miss() {
		p.CheckProcs(false, result.Crit())
	}

	// Bear swings generate Rage even on a dodge, so a miss is re-rolled
	// to decide whether it was a true miss.
	if !p.CatForm {
		dodge := false
		if result.Miss() {
			dodge = p.Rng.Float64() < p.DodgeChance/p.MissChance
		}

		var proxyDamage float64
		if dodge {
			proxyDamage = 0.5 * (low + high) * (1 + 0.15*b2f(p.Enrage))
		} else {
			proxyDamage = result.Damage
		}

		if !result.Miss() || dodge {
			crit := b2f(result.Crit())
			rageGen := 15./4./453.3*proxyDamage + 2.5/2*3.5*(1+crit) + 5*crit
			rageGen = math.Min(rageGen, proxyDamage*15/453.3)
			p.Rage = math.Min(p.Rage+rageGen, 100)
		}
	}

	p.Breakdown[AbilityMelee].Casts++
	p.Breakdown[AbilityMelee].Damage += result.Damage
	p.Breakdown[AbilityRoar].Damage += roarDamage

	p.logCast("melee", result, false)

	return result.Damage + roarDamage
}

// executeBuilder resolves a combo point generator (Shred, Rake, or cat
// Mangle) and returns the damage done plus whether it landed.
func (p *Player) executeBuilder(name string, low, high, energyCost float64, mangleMod bool) (float64, bool) {
	result := p.Roller.RollYellow(
		low, high, p.MissChance, p.Stats.CritChance, p.CritMultiplier(),
	)

	if mangleMod {
		result.Damage *= 1.3
	}

	roarDamage := 0.0
	if p.SavageRoar {
		roarDamage = p.RoarFac * result.Damage
	}

	p.GCD = 1.0

	clearcast := p.OmenProc
	if clearcast {
		p.OmenProc = false
	} else {
		p.Energy -= energyCost * (1 - 0.8*b2f(result.Miss()))
	}

	if !result.Miss() {
		points := 1
		if result.Crit() {
			points = 2
		}
		p.ComboPoints = min(5, p.ComboPoints+points)
		p.CheckProcs(true, result.Crit())
	}

	p.Breakdown[name].Casts++
	p.Breakdown[name].Damage += result.Damage
	p.Breakdown[AbilityRoar].Damage += roarDamage

	p.logCast(name, result, clearcast)

	return result.Damage + roarDamage, !result.Miss()
}

// executeBearSpecial resolves a Rage-costed special in Dire Bear Form.
func (p *Player) executeBearSpecial(name string, low, high, rageCost float64, yellow, mangleMod bool) (float64, bool) {
	result := p.Roller.RollYellow(
		low, high, p.MissChance, p.Stats.CritChance-0.04, p.CritMultiplier(),
	)

	if mangleMod {
		result.Damage *= 1.3
	}
	if p.Enrage {
		result.Damage *= 1.15
	}

	if yellow {
		p.GCD = 1.5
	}

	clearcast := p.OmenProc
	if clearcast {
		p.OmenProc = false
	} else {
		p.Rage = math.Max(0, p.Rage-rageCost*(1-0.8*b2f(result.Miss())))
	}
	if result.Crit() {
		p.Rage = math.Min(p.Rage+5, 100)
	}

	if !result.Miss() {
		p.CheckProcs(true, result.Crit())
	}

	p.Breakdown[name].Casts++
	p.Breakdown[name].Damage += result.Damage

	p.logCast(name, result, clearcast)

	return result.Damage, !result.Miss()
}

// Shred executes a Shred cast.
func (p *Player) Shred(mangleDebuff bool) (float64, bool) {
	damage, success := p.executeBuilder(
		AbilityShred, p.Damage.ShredLow, p.Damage.ShredHigh, p.ShredCost,
		mangleDebuff,
	)
	if success {
		p.notifyProcs(ProcShredOnly)
	}
	return damage, success
}

// Rake executes the initial Rake hit. The periodic component is
// handled by the simulation.
func (p *Player) Rake(mangleDebuff bool) (float64, bool) {
	return p.executeBuilder(
		AbilityRake, p.Damage.RakeHit, p.Damage.RakeHit, p.RakeCost,
		mangleDebuff,
	)
}

// Lacerate executes a Lacerate cast in Dire Bear Form.
func (p *Player) Lacerate(mangleDebuff bool) (float64, bool) {
	return p.executeBearSpecial(
		AbilityLacerate, p.Damage.LacerateHit, p.Damage.LacerateHit, 13,
		true, mangleDebuff,
	)
}

// Maul replaces the next bear swing when enough Rage is pooled.
func (p *Player) Maul(mangleDebuff bool) float64 {
	damage, _ := p.executeBearSpecial(
		AbilityMaul, p.Damage.MaulLow, p.Damage.MaulHigh, 10, false,
		mangleDebuff,
	)
	return damage
}

// Mangle executes a Mangle in the current form and reports whether the
// Mangle debuff was applied.
func (p *Player) Mangle() (float64, bool) {
	var damage float64
	var success bool
	if p.CatForm {
		damage, success = p.executeBuilder(
			AbilityMangleCat, p.Damage.MangleLow, p.Damage.MangleHigh,
			p.MangleCost, false,
		)
	} else {
		damage, success = p.executeBearSpecial(
			AbilityMangleBear, p.Damage.MangleBearLow, p.Damage.MangleBearHigh,
			15, true, false,
		)
		p.MangleCD = 6.0
	}

	if success {
		p.notifyProcs(ProcMangleOnly)
	}
	return damage, success
}

// Bite executes a Ferocious Bite, converting up to 30 excess Energy
// into bonus damage.
func (p *Player) Bite() float64 {
	clearcast := p.OmenProc
	if clearcast {
		p.OmenProc = false
	} else {
		p.Energy -= p.BiteCost
	}

	bonusDamage := math.Min(p.Energy, 30) * (9.4 + p.Stats.AttackPower/410) *
		p.Damage.BiteMultiplier

	result := p.Roller.RollYellow(
		p.Damage.BiteLow[p.ComboPoints]+bonusDamage,
		p.Damage.BiteHigh[p.ComboPoints]+bonusDamage,
		p.MissChance, p.Stats.CritChance+p.BiteCritBonus, p.CritMultiplier(),
	)

	roarDamage := 0.0
	if p.SavageRoar {
		roarDamage = p.RoarFac * result.Damage
	}

	if result.Miss() {
		if !clearcast {
			p.Energy += 0.8 * p.BiteCost
		}
	} else {
		p.Energy -= math.Min(p.Energy, 30)
		p.ComboPoints = 0
	}

	p.GCD = 1.0

	if !result.Miss() {
		p.CheckProcs(true, result.Crit())
	}

	p.Breakdown[AbilityBite].Casts++
	p.Breakdown[AbilityBite].Damage += result.Damage
	p.Breakdown[AbilityRoar].Damage += roarDamage

	p.logCast(AbilityBite, result, clearcast)

	return result.Damage + roarDamage
}

// Rip applies the Rip bleed and returns the snapshot damage per tick.
// Only a miss roll is performed; Rip cannot crit on application.
func (p *Player) Rip() (float64, bool) {
	miss := p.Rng.Float64() < p.MissChance
	var damagePerTick float64
	if !miss {
		damagePerTick = p.Damage.RipTick[p.ComboPoints]
	}

	p.GCD = 1.0

	clearcast := p.OmenProc
	if clearcast {
		p.OmenProc = false
	} else {
		p.Energy -= p.RipCost * (1 - 0.8*b2f(miss))
	}

	if !miss {
		p.ComboPoints = 0
		p.CheckProcs(true, false)
	}

	p.Breakdown[AbilityRip].Casts++

	if p.Log != nil {
		outcome := "applied"
		if miss {
			outcome = "miss"
		}
		if clearcast {
			outcome += " (clearcast)"
		}
		p.Log(AbilityRip, outcome)
	}

	return damagePerTick, !miss
}

// Roar casts Savage Roar and returns the buff expiration time. Roar
// ignores Clearcasting.
func (p *Player) Roar(time float64) float64 {
	p.GCD = 1.0
	p.Energy -= p.RoarCost

	p.SavageRoar = true
	roarEnd := time + RoarDurations[p.ComboPoints] + 8*b2f(p.Sets.T84P)
	p.ComboPoints = 0

	p.Breakdown[AbilityRoar].Casts++

	if p.Log != nil {
		p.Log(AbilityRoar, "applied")
	}

	return roarEnd
}
