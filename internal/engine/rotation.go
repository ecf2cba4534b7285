package engine

import "math"

const endThresh = 10.0

type pendingAction struct {
	refreshTime float64
	cost        float64
}

// berserkExpectedAt predicts whether Berserk will be active at a future
// time given its current state and cooldown.
func (sim *Simulation) berserkExpectedAt(currentTime, futureTime float64) bool {
	p := sim.Player
	if p.Berserk {
		return futureTime < sim.berserkEnd ||
			futureTime > currentTime+p.BerserkCD
	}
	if p.BerserkCD > eps {
		return futureTime > currentTime+p.BerserkCD
	}
	if sim.debuffs.TigersFury && sim.cfg.Strategy.UseBerserk {
		return futureTime > sim.tfEnd
	}
	return false
}

// tfExpectedBefore predicts whether Tiger's Fury will be used before
// the given future time.
func (sim *Simulation) tfExpectedBefore(currentTime, futureTime float64) bool {
	p := sim.Player
	if p.TFCD > eps {
		return currentTime+p.TFCD < futureTime
	}
	if p.Berserk {
		return sim.berserkEnd < futureTime
	}
	return true
}

// canBite reports whether enough of the running Rip remains to fit in a
// Ferocious Bite, using either the fixed empirical threshold or the
// analytical model.
func (sim *Simulation) canBite(time float64) bool {
	if sim.cfg.Strategy.BiteTime != nil {
		return sim.ripEnd-time >= *sim.cfg.Strategy.BiteTime
	}
	return sim.canBiteAnalytical(time)
}

// canBiteAnalytical estimates the Energy surplus available before Rip
// expires and compares it against the effective cost of Biting now,
// which includes rebuilding five combo points and refreshing Rip.
func (sim *Simulation) canBiteAnalytical(time float64) bool {
	p := sim.Player
	ripdur := sim.ripStart + 22 - time
	expectedEnergyGain := 10 * ripdur

	if sim.tfExpectedBefore(time, sim.ripEnd) {
		expectedEnergyGain += 60
	}
	if p.Talents.OmenOfClarity {
		expectedEnergyGain += ripdur / sim.swingTimer *
			(3.5 / 60. * (1 - p.MissChance) * 42)
	}
	expectedEnergyGain += ripdur / sim.revitalizeFrequency * 0.15 * 8

	totalEnergyAvailable := p.Energy + expectedEnergyGain

	ripCost, biteCost := sim.getFinisherCosts(time)
	cpPerBuilder := 1 + p.Stats.CritChance
	costPerBuilder := (42. + 42. + 35.) / 3. * (1 + 0.2*p.MissChance)
	totalEnergyCost := biteCost + 5./cpPerBuilder*costPerBuilder + ripCost

	// A few seconds of Rip downtime is acceptable in exchange for the
	// Bite, discounted for end of fight losses.
	allowedRipDowntime := sim.calcAllowedRipDowntime(time)
	allowedRipDowntime = 22. * (1 - 1./(1.+allowedRipDowntime/22.))
	totalEnergyCost -= 10 * allowedRipDowntime

	return totalEnergyAvailable > totalEnergyCost
}

// getFinisherCosts returns the expected Energy cost of the next Rip
// refresh and of a Ferocious Bite cast right now.
func (sim *Simulation) getFinisherCosts(time float64) (ripCost, biteCost float64) {
	p := sim.Player

	ripEnd := time
	if sim.ripDebuff {
		ripEnd = sim.ripEnd
	}
	ripCost = 30
	if sim.berserkExpectedAt(time, ripEnd) {
		ripCost = 15
	}

	if p.Energy >= p.BiteCost {
		biteCost = math.Min(p.BiteCost+30, p.Energy)
	} else {
		biteCost = p.BiteCost + 10*sim.Latency
	}
	return ripCost, biteCost
}

// calcAllowedRipDowntime estimates how many seconds of Rip uptime can
// be traded for a Ferocious Bite without losing damage.
func (sim *Simulation) calcAllowedRipDowntime(time float64) float64 {
	p := sim.Player
	strategy := &sim.cfg.Strategy

	ripCP := strategy.MinCombosForRip
	biteCP := strategy.MinCombosForBite
	ripCost, biteCost := sim.getFinisherCosts(time)

	critFactor := 2.2*(1+0.03*boolToFloat(p.MetaGem)) - 1
	biteBaseDmg := 0.5 * (p.Damage.BiteLow[biteCP] + p.Damage.BiteHigh[biteCP])
	biteBonusDmg := (biteCost - p.BiteCost) *
		(3.4 + p.Stats.AttackPower/410.) * p.Damage.BiteMultiplier
	biteDPC := (biteBaseDmg + biteBonusDmg) *
		(1 + critFactor*(p.Stats.CritChance+0.25))

	avgRipTick := p.Damage.RipTick[ripCP] * 1.3 *
		(1 + critFactor*p.Stats.CritChance*boolToFloat(p.Talents.PrimalGore))
	shredDPC := 0.5 * (p.Damage.ShredLow + p.Damage.ShredHigh) * 1.3 *
		(1 + critFactor*p.Stats.CritChance)

	return (biteDPC - (biteCost-ripCost)*shredDPC/42.) / avgRipTick * 2
}

// executeRotation performs the next player action according to the
// configured strategy and returns the damage done.
func (sim *Simulation) executeRotation(time float64) float64 {
	p := sim.Player
	strategy := &sim.cfg.Strategy

	// A previously queued shift executes now that the input delay has
	// elapsed.
	if p.ReadyToShift {
		if p.Mana < p.ShiftCost {
			sim.markOOM(time)
		}
		wasCasting := p.Casting
		p.Shift(time, false)

		// Swing timer only updates on the next swing after the shift.
		// Leaving the casting state returns to Cat at the same weapon
		// speed, so the schedule is left alone.
		if !wasCasting {
			swingFac := 2.5
			if p.CatForm {
				swingFac = 1 / 2.5
			}
			sim.updateSwingTimes(sim.swingTimes[0], sim.swingTimer*swingFac, true)
		}
		return 0
	}

	// A queued Gift of the Wild cast executes the same way.
	if p.ReadyToGift {
		if p.Mana < p.GiftCost() {
			sim.markOOM(time)
		}
		p.GiftOfTheWild(time)
		return 0
	}

	// A finished buff cast resolves back into Cat Form before any other
	// decision.
	if p.Casting {
		p.ReadyToShift = true
		sim.nextAction = time + sim.Latency
		return 0
	}

	energy, cp := p.Energy, p.ComboPoints
	ripCP := strategy.MinCombosForRip
	biteCP := strategy.MinCombosForBite

	ripNow := cp >= ripCP && !sim.ripDebuff &&
		sim.FightLength-time >= endThresh && !p.OmenProc
	biteAtEnd := cp >= biteCP &&
		(sim.FightLength-time < endThresh ||
			(sim.ripDebuff && sim.FightLength-sim.ripEnd < endThresh))

	mangleNow := !ripNow && !sim.mangleDebuff && !p.OmenProc
	mangleCost := p.MangleCost

	biteBeforeRip := cp >= biteCP && sim.ripDebuff && strategy.UseBite &&
		sim.canBite(time)
	biteNow := (biteBeforeRip || biteAtEnd) && !p.OmenProc

	// During Berserk, Bite only below the Energy ceiling so the cheap
	// specials soak up the discounted GCDs.
	if biteNow && p.Berserk {
		biteNow = energy <= strategy.BerserkBiteThresh
	}

	rakeNow := strategy.UseRake && !sim.rakeDebuff &&
		sim.FightLength-time > 9 && !p.OmenProc

	roarNow := strategy.UseRoar && cp >= 1 && !p.SavageRoar && !p.OmenProc

	berserkEnergyThresh := 90 - 10*boolToFloat(p.OmenProc)
	berserkNow := strategy.UseBerserk && p.BerserkCD < eps &&
		p.TFCD > 15 && energy < berserkEnergyThresh+eps

	// Figure out how much Energy must float to refresh buffs and
	// debuffs the moment they fall off.
	pending := make([]pendingAction, 0, 4)
	ripRefreshPending := false
	floatEnergyForRip := false

	if sim.ripDebuff && sim.ripEnd < sim.FightLength-endThresh {
		ripCost := 30.0
		if sim.berserkExpectedAt(time, sim.ripEnd) {
			ripCost = 15
		}
		pending = append(pending, pendingAction{sim.ripEnd, ripCost})
		ripRefreshPending = true

		// Rip alone gates Bite usage.
		if sim.ripEnd-time < ripCost/10. {
			floatEnergyForRip = true
		}
	}
	if sim.rakeDebuff && sim.rakeEnd < sim.FightLength-9 {
		if sim.berserkExpectedAt(time, sim.rakeEnd) {
			pending = append(pending, pendingAction{sim.rakeEnd, 17.5})
		} else {
			pending = append(pending, pendingAction{sim.rakeEnd, 35})
		}
	}
	if sim.mangleDebuff && sim.mangleEnd < sim.FightLength-1 {
		baseCost := p.MangleBaseCost()
		if sim.berserkExpectedAt(time, sim.mangleEnd) {
			pending = append(pending, pendingAction{sim.mangleEnd, 0.5 * baseCost})
		} else {
			pending = append(pending, pendingAction{sim.mangleEnd, baseCost})
		}
	}
	if strategy.UseRoar && p.SavageRoar && sim.roarEnd < sim.FightLength {
		if sim.berserkExpectedAt(time, sim.roarEnd) {
			pending = append(pending, pendingAction{sim.roarEnd, 12.5})
		} else {
			pending = append(pending, pendingAction{sim.roarEnd, 25})
		}
	}

	sortPending(pending)

	// Allow a bearweave when the next pending refresh is far enough
	// out to fit the two shift globals.
	furorCap := math.Min(20*float64(p.Talents.Furor), 85)
	weaveEnergy := furorCap - 30 - 20*sim.Latency
	if p.Talents.Furor > 3 {
		weaveEnergy -= 15
	}

	weaveEnd := time + 4.5 + 2*sim.Latency
	bearweaveNow := strategy.Bearweave && energy <= weaveEnergy &&
		!p.OmenProc &&
		(!ripRefreshPending || sim.ripEnd >= weaveEnd) &&
		!sim.tfExpectedBefore(time, weaveEnd) &&
		!p.Berserk

	// Emergency bearweave to save a Lacerate stack about to drop.
	emergencyBearweave := strategy.Bearweave && strategy.LaceratePrio &&
		sim.lacerateDebuff && sim.lacerateEnd-time < 2.5+sim.Latency

	// A weave costs two shifts of mana before the player is back in
	// Cat Form. Without it the weave is skipped rather than stranding
	// the player out of form.
	if (bearweaveNow || emergencyBearweave) && p.Mana < 2*p.ShiftCost {
		bearweaveNow = false
		emergencyBearweave = false
		sim.markOOM(time)
	}

	// Flowershift on the same energy window as a bearweave: the hasted
	// cast plus the return shift must both fit before the next refresh.
	flowerEnd := time + p.SpellGCD + 1.5 + 2*sim.Latency
	flowershiftNow := strategy.Flowershift && energy <= weaveEnergy &&
		!p.OmenProc &&
		(!ripRefreshPending || sim.ripEnd >= flowerEnd) &&
		!sim.tfExpectedBefore(time, flowerEnd) &&
		!p.Berserk

	if flowershiftNow && p.Mana < p.GiftCost()+p.ShiftCost {
		flowershiftNow = false
		sim.markOOM(time)
	}

	floatingEnergy := 0.0
	previousTime := time
	for _, action := range pending {
		deltaT := action.refreshTime - previousTime
		if deltaT < action.cost/10. {
			floatingEnergy += action.cost - 10*deltaT
			previousTime = action.refreshTime
		} else {
			previousTime += action.cost / 10.
		}
	}

	excessE := energy - floatingEnergy
	timeToNextAction := 0.0

	if !p.CatForm {
		// Shift back into Cat Form if the bear auto procced
		// Clearcasting, didn't generate enough Rage, or there is no
		// Energy leeway for another bear global.
		shiftNow := energy+15+10*sim.Latency > furorCap ||
			(ripRefreshPending && sim.ripEnd < time+3.0)

		powerbearNow := false
		if strategy.Powerbear {
			powerbearNow = !shiftNow && p.Rage < 10
			if powerbearNow && p.Mana < 2*p.ShiftCost {
				powerbearNow = false
				shiftNow = true
				sim.markOOM(time)
			}
		} else {
			shiftNow = shiftNow || p.Rage < 10
		}

		if !strategy.LaceratePrio {
			shiftNow = shiftNow || p.OmenProc
		}

		lacerateNow := strategy.LaceratePrio &&
			(!sim.lacerateDebuff || sim.lacerateStacks < 5 ||
				sim.lacerateEnd-time <= strategy.LacerateTime)
		emergencyLacerate := strategy.LaceratePrio && sim.lacerateDebuff &&
			sim.lacerateEnd-time < 3.0+2*sim.Latency

		switch {
		case emergencyLacerate && p.Rage >= 13:
			return sim.lacerate(time)
		case shiftNow:
			p.ReadyToShift = true
		case powerbearNow:
			p.Shift(time, true)
		case lacerateNow && p.Rage >= 13:
			return sim.lacerate(time)
		case p.Rage >= 15 && p.MangleCD < eps:
			return sim.mangle(time)
		case p.Rage >= 13:
			return sim.lacerate(time)
		default:
			timeToNextAction = sim.swingTimes[0] - time
		}
	} else if emergencyBearweave {
		p.ReadyToShift = true
	} else if berserkNow {
		sim.applyBerserk(time, false)
		return 0
	} else if roarNow {
		if energy >= p.RoarCost {
			return sim.roar(time)
		}
		timeToNextAction = (p.RoarCost - energy) / 10.
	} else if ripNow {
		if energy >= p.RipCost || p.OmenProc {
			return sim.rip(time)
		}
		timeToNextAction = (p.RipCost - energy) / 10.
	} else if biteNow && !floatEnergyForRip {
		if energy >= p.BiteCost {
			return p.Bite()
		}
		timeToNextAction = (p.BiteCost - energy) / 10.
	} else if mangleNow {
		if energy >= mangleCost || p.OmenProc {
			return sim.mangle(time)
		}
		timeToNextAction = (mangleCost - energy) / 10.
	} else if rakeNow {
		if energy >= p.RakeCost || p.OmenProc {
			return sim.rake(time)
		}
		timeToNextAction = (p.RakeCost - energy) / 10.
	} else if bearweaveNow {
		p.ReadyToShift = true
	} else if flowershiftNow {
		p.ReadyToGift = true
	} else if strategy.MangleSpam && !p.OmenProc {
		if excessE >= mangleCost {
			return sim.mangle(time)
		}
		timeToNextAction = (mangleCost - excessE) / 10.
	} else {
		if excessE >= p.ShredCost || p.OmenProc {
			return sim.shred()
		}
		timeToNextAction = (p.ShredCost - excessE) / 10.
	}

	// Model in latency when waiting on Energy for the next action.
	nextAction := time + timeToNextAction
	if len(pending) > 0 {
		nextAction = math.Min(nextAction, pending[0].refreshTime)
	}
	sim.nextAction = nextAction + sim.Latency

	return 0
}

func sortPending(actions []pendingAction) {
	for i := 1; i < len(actions); i++ {
		for j := i; j > 0 && actions[j].refreshTime < actions[j-1].refreshTime; j-- {
			actions[j], actions[j-1] = actions[j-1], actions[j]
		}
	}
}
