package engine

import (
	"fmt"
	"math"

	"wotlk-cat-sim/internal/character"
	"wotlk-cat-sim/internal/combat"
)

// Run simulates one full fight and returns its trial record.
func (sim *Simulation) Run() *TrialResult {
	p := sim.Player
	p.Reset()
	sim.RecalcDamageParams()

	sim.debuffs.SunderStacks = 0
	sim.debuffs.TigersFury = false
	sim.mangleDebuff = false
	sim.ripDebuff = false
	sim.rakeDebuff = false
	sim.lacerateDebuff = false
	sim.nextAction = 0
	sim.procEndTimes = sim.procEndTimes[:0]
	sim.timeToOOM = 0
	sim.wentOOM = false

	if sim.logEnabled {
		p.Log = func(event, outcome string) {
			sim.logEvent(sim.curTime, event, outcome)
		}
	} else {
		p.Log = nil
	}

	// Stagger the first swing slightly behind the opening special so
	// an Omen proc cannot land before the first rotation decision.
	swingStart := 0.1 * sim.Rng.Float64()
	sim.updateSwingTimes(swingStart, sim.cfg.Player.SwingTimer, true)
	p.SpellGCD = combat.HastedGCD(combat.HasteRatingForSpeed(
		sim.swingTimer, catWeaponSpeed, sim.HasteMultiplier,
	))

	for _, effect := range sim.Effects {
		effect.Reset(sim.Rng)
	}

	strategy := &sim.cfg.Strategy

	if strategy.BearMangle {
		sim.mangleDebuff = true
		sim.mangleEnd = math.Inf(1)
	}

	if strategy.UseBerserk && strategy.PrepopBerserk {
		sim.applyBerserk(-1.0, true)
	}
	if strategy.PreprocOmen && p.Talents.OmenOfClarity {
		p.OmenProc = true
	}

	totalDamage := 0.0
	time := 0.0
	previousTime := 0.0
	numHotTicks := 0

	for time <= sim.FightLength {
		sim.curTime = time
		deltaT := time - previousTime
		p.Regen(deltaT)
		p.AdvanceTime(deltaT)

		dmgDone := 0.0

		if p.FiveSecondRule && time-p.LastShift >= 5 {
			p.FiveSecondRule = false
		}

		sim.updateSunder(time)

		// Buff expirations.
		if sim.debuffs.TigersFury && time >= sim.tfEnd {
			sim.dropTigersFury(sim.tfEnd)
		}
		if p.Berserk && time >= sim.berserkEnd {
			sim.dropBerserk(sim.berserkEnd)
		}
		if p.SavageRoar && time >= sim.roarEnd {
			p.SavageRoar = false
			sim.logEvent(sim.roarEnd, "Savage Roar", "falls off")
		}
		if sim.mangleDebuff && time >= sim.mangleEnd {
			sim.mangleDebuff = false
			sim.logEvent(sim.mangleEnd, "Mangle", "falls off")
		}

		// Rip ticks and expiration.
		if sim.ripDebuff && len(sim.ripTicks) > 0 && time >= sim.ripTicks[0]-eps {
			tickDamage := sim.ripDamage
			if sim.mangleDebuff {
				tickDamage *= 1.3
			}
			tickDamage = sim.rollTickCrit(
				tickDamage, sim.ripCritChance, sim.ripCritMult,
			)
			dmgDone += tickDamage
			p.Breakdown[character.AbilityRip].Damage += tickDamage
			sim.ripTicks = sim.ripTicks[1:]
			sim.logEvent(time, "Rip", tickOutcome(tickDamage))
		}
		if sim.ripDebuff && time > sim.ripEnd-eps {
			sim.ripDebuff = false
			sim.logEvent(sim.ripEnd, "Rip", "falls off")
		}

		// Rake ticks and expiration.
		if sim.rakeDebuff && len(sim.rakeTicks) > 0 && time >= sim.rakeTicks[0]-eps {
			tickDamage := sim.rakeDamage
			if sim.mangleDebuff {
				tickDamage *= 1.3
			}
			tickDamage = sim.rollTickCrit(
				tickDamage, sim.rakeCritChance, sim.rakeCritMult,
			)
			dmgDone += tickDamage
			p.Breakdown[character.AbilityRake].Damage += tickDamage
			sim.rakeTicks = sim.rakeTicks[1:]
			sim.logEvent(time, "Rake", tickOutcome(tickDamage))
		}
		if sim.rakeDebuff && time > sim.rakeEnd-eps {
			sim.rakeDebuff = false
			sim.logEvent(sim.rakeEnd, "Rake", "falls off")
		}

		// Lacerate ticks and expiration.
		if sim.lacerateDebuff && len(sim.lacerateTicks) > 0 &&
			time >= sim.lacerateTicks[0]-eps {
			sim.lastLacerateTick = time
			tickDamage := sim.lacerateDamage
			if sim.mangleDebuff {
				tickDamage *= 1.3
			}
			tickDamage = sim.rollTickCrit(
				tickDamage, sim.lacerateCritCh, sim.lacerateCritMult,
			)
			dmgDone += tickDamage
			p.Breakdown[character.AbilityLacerate].Damage += tickDamage
			sim.lacerateTicks = sim.lacerateTicks[1:]
			sim.logEvent(time, "Lacerate", tickOutcome(tickDamage))
		}
		if sim.lacerateDebuff && time > sim.lacerateEnd-eps {
			sim.lacerateDebuff = false
			sim.logEvent(sim.lacerateEnd, "Lacerate", "falls off")
		}

		// Revitalize rolls at the pre-computed HoT tick frequency.
		if time >= sim.revitalizeFrequency*float64(numHotTicks+1) {
			numHotTicks++
			if sim.Rng.Float64() < 0.15 {
				if p.CatForm {
					p.Energy = math.Min(100, p.Energy+8)
				} else {
					p.Rage = math.Min(100, p.Rage+4)
				}
				sim.logEvent(time, "Revitalize", "applied")
			}
		}

		for _, effect := range sim.Effects {
			dmgDone += effect.Update(sim, p, time)
		}

		// Melee swing. No autoattacks happen while formless during a
		// buff cast.
		if time >= sim.swingTimes[0]-eps {
			switch {
			case p.Casting:
			case p.CatForm:
				dmgDone += p.Swing()
			case p.Rage >= sim.maulRageThreshold(time):
				dmgDone += p.Maul(sim.mangleDebuff)
			default:
				dmgDone += p.Swing()
			}
			sim.swingTimes = sim.swingTimes[1:]
		}

		// Rotation decision once the GCD is clear.
		if p.GCD < eps && time >= sim.nextAction {
			dmgDone += sim.executeRotation(time)
		}

		// Entering a shift GCD drops Tiger's Fury.
		if sim.debuffs.TigersFury && math.Abs(p.GCD-1.5) < eps {
			sim.dropTigersFury(time)
		}

		// Procs latched by the just-executed attack land now.
		for _, effect := range sim.Effects {
			dmgDone += effect.Update(sim, p, time)
		}

		if len(sim.procEndTimes) > 0 && time >= sim.procEndTimes[0]-eps {
			sim.procEndTimes = sim.procEndTimes[1:]
		}

		// Tiger's Fury as soon as Energy is low enough to absorb it.
		leewayTime := math.Max(p.GCD, sim.Latency)
		tfEnergyThresh := 40 - 10*(leewayTime+boolToFloat(p.OmenProc))
		if p.Energy < tfEnergyThresh && p.TFCD < eps && !p.Berserk && p.CatForm {
			sim.applyTigersFury(time)
		}

		totalDamage += dmgDone

		// Jump the clock to the next scheduled event.
		previousTime = time
		nextSwing := sim.swingTimes[0]
		nextAction := math.Max(time+p.GCD, sim.nextAction)
		time = math.Min(nextAction, nextSwing)

		if sim.ripDebuff && len(sim.ripTicks) > 0 {
			time = math.Min(time, sim.ripTicks[0])
		}
		if sim.rakeDebuff && len(sim.rakeTicks) > 0 {
			time = math.Min(time, sim.rakeTicks[0])
		}
		if sim.lacerateDebuff && len(sim.lacerateTicks) > 0 {
			time = math.Min(time, sim.lacerateTicks[0])
		}
		if len(sim.procEndTimes) > 0 {
			time = math.Min(time, sim.procEndTimes[0])
		}
		if sim.useSunder && sim.debuffs.SunderStacks < 5 {
			time = math.Min(
				time, math.Max(previousTime+eps,
					1.5*float64(sim.debuffs.SunderStacks)),
			)
		}
	}

	// Final effect bookkeeping at the exact fight end.
	sim.curTime = sim.FightLength
	auras := make([]AuraStats, 0, len(sim.Effects))
	for _, effect := range sim.Effects {
		effect.Update(sim, p, sim.FightLength)
		effect.ForceDeactivate(sim, p, sim.FightLength)
		stats := effect.Stats()
		auras = append(auras, AuraStats{
			Name:   effect.Name(),
			Procs:  stats.NumProcs,
			Uptime: stats.Uptime,
		})
	}

	breakdown := make(map[string]character.AbilityStats, len(p.Breakdown))
	for name, stats := range p.Breakdown {
		breakdown[name] = *stats
	}

	result := &TrialResult{
		Seed:        sim.seed,
		FightLength: sim.FightLength,
		TotalDamage: totalDamage,
		DPS:         totalDamage / sim.FightLength,
		Breakdown:   breakdown,
		Auras:       auras,
		TimeToOOM:   sim.timeToOOM,
		WentOOM:     sim.wentOOM,
	}
	if !sim.wentOOM {
		result.TimeToOOM = sim.FightLength
	}
	return result
}

func tickOutcome(damage float64) string {
	return fmt.Sprintf("ticks for %.0f", damage)
}

// maulRageThreshold decides how much Rage must be pooled before the
// next bear swing is spent on Maul instead of a white hit, based on
// what the following global will need.
func (sim *Simulation) maulRageThreshold(time float64) float64 {
	p := sim.Player
	strategy := &sim.cfg.Strategy

	furorCap := math.Min(20*float64(p.Talents.Furor), 85)
	ripRefreshPending := sim.ripDebuff && sim.ripEnd < sim.FightLength-10
	energyLeeway := furorCap - 15 - 10*(p.GCD+sim.Latency)
	shiftNext := p.Energy > energyLeeway
	if ripRefreshPending {
		shiftNext = shiftNext || sim.ripEnd < time+p.GCD+3.0
	}

	var mangleNext, lacerateNext, emergencyLacerateNext bool
	if strategy.LaceratePrio {
		lacerateLeeway := p.GCD + strategy.LacerateTime
		lacerateNext = !sim.lacerateDebuff || sim.lacerateStacks < 5 ||
			sim.lacerateEnd-time <= lacerateLeeway
		emergencyLeeway := p.GCD + 3.0 + 2*sim.Latency
		emergencyLacerateNext = sim.lacerateDebuff &&
			sim.lacerateEnd-time <= emergencyLeeway
		mangleNext = !lacerateNext && (!sim.mangleDebuff ||
			sim.mangleEnd < time+p.GCD+3.0)
	} else {
		mangleNext = p.MangleCD < p.GCD
		lacerateNext = sim.lacerateDebuff && (sim.lacerateStacks < 5 ||
			sim.lacerateEnd < time+p.GCD+4.5)
	}

	switch {
	case emergencyLacerateNext:
		return 23
	case shiftNext:
		return 10
	case mangleNext:
		return 25
	case lacerateNext:
		return 23
	default:
		return 10
	}
}
