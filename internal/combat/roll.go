package combat

import "math/rand"

// Attack table constants shared by every physical roll.
const (
	GlanceChance        = 0.24
	glanceReductionLow  = 0.15
	glanceReductionHigh = 0.35
)

// Haste rating conversions at level 80.
const (
	MeleeHasteRatingPerPct = 25.21
	SpellHasteRatingPerPct = 32.79
)

// AttackOutcome classifies a single roll on the attack table.
type AttackOutcome int

const (
	OutcomeMiss AttackOutcome = iota
	OutcomeGlance
	OutcomeCrit
	OutcomeHit
)

// AttackResult is the resolved damage and outcome of one attack roll.
type AttackResult struct {
	Damage  float64
	Outcome AttackOutcome
}

func (r AttackResult) Miss() bool { return r.Outcome == OutcomeMiss }
func (r AttackResult) Crit() bool { return r.Outcome == OutcomeCrit }

// Roller resolves attack table rolls against a shared random source.
// Draw order is fixed: outcome first, then base damage, then any
// secondary rolls. Callers rely on this for reproducible trials.
type Roller struct {
	Rng *rand.Rand
}

func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{Rng: rng}
}

// RollWhite resolves an auto-attack on the one-roll table. Bands are
// checked in threshold order: miss, glance, crit, ordinary hit. The
// thresholds are cumulative and not clamped, so when
// miss+glance+crit exceeds 1 the later bands are crowded out, matching
// the in-game table.
func (r *Roller) RollWhite(low, high, missChance, critChance, critMult float64) AttackResult {
	outcomeRoll := r.Rng.Float64()
	if outcomeRoll < missChance {
		return AttackResult{Outcome: OutcomeMiss}
	}
	base := low + (high-low)*r.Rng.Float64()
	if outcomeRoll < missChance+GlanceChance {
		reduction := glanceReductionLow + (glanceReductionHigh-glanceReductionLow)*r.Rng.Float64()
		return AttackResult{Damage: base * (1 - reduction), Outcome: OutcomeGlance}
	}
	if outcomeRoll < missChance+GlanceChance+critChance {
		return AttackResult{Damage: base * critMult, Outcome: OutcomeCrit}
	}
	return AttackResult{Damage: base, Outcome: OutcomeHit}
}

// RollYellow resolves a special attack on the two-roll table: an
// avoidance roll, then an independent crit roll on connection.
func (r *Roller) RollYellow(low, high, missChance, critChance, critMult float64) AttackResult {
	if r.Rng.Float64() < missChance {
		return AttackResult{Outcome: OutcomeMiss}
	}
	base := low + (high-low)*r.Rng.Float64()
	if r.Rng.Float64() < critChance {
		return AttackResult{Damage: base * critMult, Outcome: OutcomeCrit}
	}
	return AttackResult{Damage: base, Outcome: OutcomeHit}
}

// RollSpell resolves a magical hit: a yellow roll followed by a partial
// resistance roll against a boss-level target.
func (r *Roller) RollSpell(low, high, missChance, critChance, critMult float64) AttackResult {
	result := r.RollYellow(low, high, missChance, critChance, critMult)
	if result.Miss() {
		return result
	}
	resistRoll := r.Rng.Float64()
	switch {
	case resistRoll < 0.55:
		// full hit
	case resistRoll < 0.85:
		result.Damage *= 0.75
	case resistRoll < 0.99:
		result.Damage *= 0.5
	default:
		result.Damage *= 0.25
	}
	return result
}

// SwingTimer returns the hasted swing interval in seconds for a weapon
// of the given base speed.
func SwingTimer(weaponSpeed, hasteRating, multiplier float64) float64 {
	return weaponSpeed / (multiplier * (1 + hasteRating/MeleeHasteRatingPerPct/100))
}

// HasteRatingForSpeed inverts SwingTimer: the rating needed to reach
// the given swing interval from the base weapon speed.
func HasteRatingForSpeed(swingTimer, weaponSpeed, multiplier float64) float64 {
	return 100 * MeleeHasteRatingPerPct * (weaponSpeed/(multiplier*swingTimer) - 1)
}

// HastedGCD returns the global cooldown for spells under the given
// haste rating, floored at one second. Physical abilities keep a fixed
// GCD and do not use this.
func HastedGCD(hasteRating float64) float64 {
	gcd := 1.5 / (1 + hasteRating/SpellHasteRatingPerPct/100)
	if gcd < 1.0 {
		return 1.0
	}
	return gcd
}
