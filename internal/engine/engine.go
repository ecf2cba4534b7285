package engine

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"wotlk-cat-sim/internal/character"
	"wotlk-cat-sim/internal/combat"
	"wotlk-cat-sim/internal/config"
	"wotlk-cat-sim/internal/effects"
	"wotlk-cat-sim/internal/gear"
)

const (
	catWeaponSpeed  = 1.0
	bearWeaponSpeed = 2.5
	eps             = 1e-9
)

// AuraStats summarizes one effect's activity over a trial.
type AuraStats struct {
	Name   string
	Procs  int
	Uptime float64
}

// TrialResult is the immutable record produced by one simulated fight.
// Replicate workers pass these to the aggregator by message.
type TrialResult struct {
	Seed        int64
	FightLength float64
	TotalDamage float64
	DPS         float64
	Breakdown   map[string]character.AbilityStats
	Auras       []AuraStats
	TimeToOOM   float64
	WentOOM     bool
}

// Simulation owns the per-trial mutable state for one fight: the
// player, active effects, debuff timers, swing schedule, and RNG. The
// shared configuration is read-only.
type Simulation struct {
	cfg  *config.Config
	seed int64

	Player  *character.Player
	Effects []effects.Effect
	Rng     *rand.Rand

	FightLength     float64
	Latency         float64
	HasteMultiplier float64

	debuffs   character.DebuffState
	useSunder bool

	revitalizeFrequency float64

	swingTimer float64
	swingTimes []float64

	mangleDebuff bool
	mangleEnd    float64

	ripDebuff     bool
	ripStart      float64
	ripEnd        float64
	ripTicks      []float64
	ripDamage     float64
	ripCritChance float64
	ripCritMult   float64

	rakeDebuff     bool
	rakeEnd        float64
	rakeTicks      []float64
	rakeDamage     float64
	rakeCritChance float64
	rakeCritMult   float64

	lacerateDebuff   bool
	lacerateEnd      float64
	lacerateTicks    []float64
	lacerateStacks   int
	lacerateDamage   float64
	lacerateCritCh   float64
	lacerateCritMult float64
	lastLacerateTick float64

	roarEnd float64
	tfEnd   float64

	berserkEnd float64

	procEndTimes []float64
	nextAction   float64
	timeToOOM    float64
	wentOOM      bool

	curTime float64

	logWriter  io.Writer
	logEnabled bool
}

// NewSimulation builds fresh per-trial state from the shared config.
// Every trial gets its own player, effects, and RNG so that replicate
// workers never share mutable state.
func NewSimulation(cfg *config.Config, seed int64) *Simulation {
	rng := rand.New(rand.NewSource(seed))

	player := character.NewPlayer(cfg.PlayerOptions())
	player.SetRand(rng)

	// Jitter the fight length by one second of Gaussian noise so the
	// periodicity of the rotation does not alias with a fixed length.
	fightLength := cfg.Encounter.FightLength + rng.NormFloat64()

	sim := &Simulation{
		cfg:             cfg,
		seed:            seed,
		Player:          player,
		Rng:             rng,
		FightLength:     fightLength,
		Latency:         cfg.Encounter.Latency,
		HasteMultiplier: cfg.Encounter.HasteMultiplier,
		useSunder:       cfg.Encounter.Sunder,
	}

	sim.Effects = gear.BuildEffects(&cfg.Gear)
	for _, effect := range sim.Effects {
		if listener, ok := effect.(character.ProcListener); ok {
			player.ProcListeners = append(player.ProcListeners, listener)
		}
	}

	hotUptime := math.Max(cfg.Encounter.HoTUptime, eps)
	sim.revitalizeFrequency = 15 / (8 * hotUptime)

	sim.debuffs = character.DebuffState{
		GiftOfArthas:    cfg.Encounter.GiftOfArthas,
		BossArmor:       cfg.Encounter.BossArmor,
		FaerieFire:      cfg.Encounter.FaerieFire,
		BloodFrenzy:     cfg.Encounter.BloodFrenzy,
		ShatteringThrow: cfg.Encounter.ShatteringThrow,
	}

	return sim
}

// EnableLog streams a combat log for the trial to w.
func (sim *Simulation) EnableLog(w io.Writer) {
	sim.logWriter = w
	sim.logEnabled = true
}

func (sim *Simulation) logEvent(now float64, event, outcome string) {
	if !sim.logEnabled {
		return
	}
	p := sim.Player
	fmt.Fprintf(
		sim.logWriter,
		"[%8.3fs] %-18s %-28s energy=%5.1f cp=%d rage=%5.1f mana=%d\n",
		now, event, outcome, p.Energy, p.ComboPoints, p.Rage, int(p.Mana),
	)
}

// markOOM records the first time a mana-gated action had to be
// skipped.
func (sim *Simulation) markOOM(now float64) {
	if !sim.wentOOM {
		sim.wentOOM = true
		sim.timeToOOM = now
	}
}

// weaponSpeed returns the base weapon speed for the player's current
// form. The transient casting state keeps the Cat weapon equipped.
func (sim *Simulation) weaponSpeed() float64 {
	if sim.Player.CatForm || sim.Player.Casting {
		return catWeaponSpeed
	}
	return bearWeaponSpeed
}

// ApplyHasteRating rescales the swing schedule for a haste rating
// delta, preserving the elapsed fraction of the current swing.
func (sim *Simulation) ApplyHasteRating(now, increment float64) {
	weaponSpeed := sim.weaponSpeed()
	currentRating := combat.HasteRatingForSpeed(
		sim.swingTimer, weaponSpeed, sim.HasteMultiplier,
	)
	newTimer := combat.SwingTimer(
		weaponSpeed, currentRating+increment, sim.HasteMultiplier,
	)
	sim.Player.SpellGCD = combat.HastedGCD(currentRating + increment)
	sim.updateSwingTimes(now, newTimer, false)
}

// MultiplySwingSpeed applies a multiplicative attack speed change such
// as Bloodlust.
func (sim *Simulation) MultiplySwingSpeed(now, factor float64) {
	weaponSpeed := sim.weaponSpeed()
	rating := combat.HasteRatingForSpeed(
		sim.swingTimer, weaponSpeed, sim.HasteMultiplier,
	)
	sim.HasteMultiplier *= factor
	newTimer := combat.SwingTimer(weaponSpeed, rating, sim.HasteMultiplier)
	sim.updateSwingTimes(now, newTimer, false)
}

// RecalcDamageParams rebuilds the player's damage sheet against the
// current debuff environment.
func (sim *Simulation) RecalcDamageParams() {
	sim.Player.CalcDamageParams(sim.debuffs)
}

// LogEvent lets effects write combat log lines through the simulation.
func (sim *Simulation) LogEvent(now float64, event, outcome string) {
	sim.logEvent(now, event, outcome)
}

// ScheduleProcEnd registers a buff expiration as a wake-up point for
// the event loop.
func (sim *Simulation) ScheduleProcEnd(end float64) {
	sim.procEndTimes = append(sim.procEndTimes, end)
	sortFloats(sim.procEndTimes)
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// updateSwingTimes regenerates the upcoming swing schedule after a
// swing timer change.
func (sim *Simulation) updateSwingTimes(now, newTimer float64, firstSwing bool) {
	var startTime float64
	if firstSwing {
		startTime = now
	} else {
		fracRemaining := (sim.swingTimes[0] - now) / sim.swingTimer
		startTime = now + fracRemaining*newTimer
	}

	sim.swingTimer = newTimer
	sim.swingTimes = sim.swingTimes[:0]
	for t := startTime; t <= sim.FightLength+newTimer; t += newTimer {
		sim.swingTimes = append(sim.swingTimes, t)
	}
	if len(sim.swingTimes) < 2 {
		sim.swingTimes = append(sim.swingTimes, startTime+newTimer)
	}
}

// snapshotTickCrit captures the bleed tick crit parameters at
// application time. Later stat changes do not alter running bleeds.
func (sim *Simulation) snapshotTickCrit() (chance, mult float64) {
	if !sim.Player.Talents.PrimalGore {
		return 0, 1
	}
	chance = sim.Player.Stats.CritChance
	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}
	return chance, sim.Player.CritMultiplier()
}

func (sim *Simulation) rollTickCrit(base, chance, mult float64) float64 {
	if chance >= 1 {
		return base * mult
	}
	if chance > 0 && sim.Rng.Float64() < chance {
		return base * mult
	}
	return base
}

// mangle wraps the player cast and applies the Mangle debuff.
func (sim *Simulation) mangle(now float64) float64 {
	damage, success := sim.Player.Mangle()
	if success {
		sim.mangleDebuff = true
		if sim.cfg.Strategy.BearMangle {
			sim.mangleEnd = math.Inf(1)
		} else {
			sim.mangleEnd = now + 60
		}
	}
	return damage
}

// rake wraps the player cast and snapshots the bleed.
func (sim *Simulation) rake(now float64) float64 {
	damage, success := sim.Player.Rake(sim.mangleDebuff)
	if success {
		sim.rakeDebuff = true
		sim.rakeEnd = now + sim.Player.RakeDuration
		sim.rakeTicks = sim.rakeTicks[:0]
		for t := now + 3; t <= sim.rakeEnd+eps; t += 3 {
			sim.rakeTicks = append(sim.rakeTicks, t)
		}
		sim.rakeDamage = sim.Player.Damage.RakeTick
		sim.rakeCritChance, sim.rakeCritMult = sim.snapshotTickCrit()
	}
	return damage
}

// rip wraps the player cast and snapshots the per-tick damage.
func (sim *Simulation) rip(now float64) float64 {
	damagePerTick, success := sim.Player.Rip()
	if success {
		sim.ripDebuff = true
		sim.ripStart = now
		sim.ripEnd = now + sim.Player.RipDuration
		sim.ripTicks = sim.ripTicks[:0]
		for t := now + 2; t <= sim.ripEnd+eps; t += 2 {
			sim.ripTicks = append(sim.ripTicks, t)
		}
		sim.ripDamage = damagePerTick
		sim.ripCritChance, sim.ripCritMult = sim.snapshotTickCrit()
	}
	return 0
}

// lacerate wraps the player cast. Refreshes keep the established tick
// cadence and add a stack up to five.
func (sim *Simulation) lacerate(now float64) float64 {
	damage, success := sim.Player.Lacerate(sim.mangleDebuff)
	if success {
		sim.lacerateEnd = now + 15

		if sim.lacerateDebuff {
			lastTick := sim.lastLacerateTick
			if len(sim.lacerateTicks) > 0 {
				lastTick = sim.lacerateTicks[len(sim.lacerateTicks)-1]
			}
			for t := lastTick + 3; t <= sim.lacerateEnd+eps; t += 3 {
				sim.lacerateTicks = append(sim.lacerateTicks, t)
			}
			sim.lacerateStacks = min(sim.lacerateStacks+1, 5)
		} else {
			sim.lacerateDebuff = true
			sim.lacerateTicks = sim.lacerateTicks[:0]
			for t := now + 3; t <= sim.lacerateEnd+eps; t += 3 {
				sim.lacerateTicks = append(sim.lacerateTicks, t)
			}
			sim.lacerateStacks = 1
		}

		sim.lacerateDamage = sim.Player.Damage.LacerateTick *
			float64(sim.lacerateStacks) *
			(1 + 0.15*boolToFloat(sim.Player.Enrage))
		sim.lacerateCritCh, sim.lacerateCritMult = sim.snapshotTickCrit()
	}

	if sim.mangleDebuff {
		return damage * 1.3
	}
	return damage
}

// roar wraps the player cast and records the buff end time.
func (sim *Simulation) roar(now float64) float64 {
	sim.roarEnd = sim.Player.Roar(now)
	return 0
}

// shred wraps the player cast; with the glyph a landed Shred extends a
// running Rip by one tick, up to three extensions.
func (sim *Simulation) shred() float64 {
	damage, success := sim.Player.Shred(sim.mangleDebuff)
	if success && sim.Player.Glyphs.Shred && sim.ripDebuff {
		maxDuration := sim.Player.RipDuration + 6
		if sim.ripEnd-sim.ripStart < maxDuration-eps {
			sim.ripEnd += 2
			sim.ripTicks = append(sim.ripTicks, sim.ripEnd)
		}
	}
	return damage
}

// applyTigersFury grants the energy burst and flat damage buff.
func (sim *Simulation) applyTigersFury(now float64) {
	p := sim.Player
	p.Energy = math.Min(100, p.Energy+60)
	sim.debuffs.TigersFury = true
	sim.RecalcDamageParams()
	sim.tfEnd = now + 6
	p.TFCD = 30
	sim.nextAction = now + sim.Latency
	sim.ScheduleProcEnd(now + 30)
	sim.logEvent(now, "Tiger's Fury", "applied")
}

func (sim *Simulation) dropTigersFury(at float64) {
	sim.debuffs.TigersFury = false
	sim.RecalcDamageParams()
	sim.logEvent(at, "Tiger's Fury", "falls off")
}

// applyBerserk halves ability costs for the duration.
func (sim *Simulation) applyBerserk(now float64, prepop bool) {
	p := sim.Player
	p.Berserk = true
	p.SetAbilityCosts()
	if !prepop {
		p.GCD = 1.0
	}
	sim.berserkEnd = now + 15 + 5*boolToFloat(p.Glyphs.Berserk)
	p.BerserkCD = 180
	if prepop {
		p.BerserkCD = 179
	}
	sim.logEvent(now, "Berserk", "applied")
}

func (sim *Simulation) dropBerserk(at float64) {
	p := sim.Player
	p.Berserk = false
	p.SetAbilityCosts()
	sim.logEvent(at, "Berserk", "falls off")
}

// updateSunder advances the armor debuff schedule: one Sunder stack
// every 1.5 seconds until five are up, recomputing damage parameters
// on each application.
func (sim *Simulation) updateSunder(now float64) {
	if !sim.useSunder || sim.debuffs.SunderStacks >= 5 {
		return
	}
	if now >= 1.5*float64(sim.debuffs.SunderStacks) {
		sim.debuffs.SunderStacks++
		sim.logEvent(now, "Sunder Armor", "applied")
		sim.RecalcDamageParams()
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
