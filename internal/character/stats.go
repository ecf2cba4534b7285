package character

import "math"

// Stats holds the fully raid-buffed Cat Form stats used for damage
// calculations. AttackPower already includes APMod scaling; CritChance
// is stored as a fraction with the 4.8% boss crit suppression already
// subtracted at construction time.
type Stats struct {
	AttackPower     float64
	DebuffAP        float64
	Agility         float64
	APMod           float64
	HitChance       float64
	ExpertiseRating float64
	CritChance      float64
	ArmorPenRating  float64
	BonusDamage     float64
	ShredBonus      float64
	RipBonus        float64
	WeaponSpeed     float64
	ManaPool        float64
	Intellect       float64
	Spirit          float64
	MP5             float64
}

// Talents holds the feral talent points that affect the simulation.
type Talents struct {
	FeralAggression     int
	PredatoryInstincts  int
	SavageFury          int
	Furor               int
	NaturalShapeshifter int
	Intensity           int
	ProtectorOfThePack  int
	ImprovedMangle      int
	ImprovedLotP        int
	PrimalGore          bool
	OmenOfClarity       bool
}

// Glyphs holds the major glyph selection.
type Glyphs struct {
	Mangle  bool
	Rip     bool
	Shred   bool
	Roar    bool
	Berserk bool
}

// SetBonuses flags the tier set bonuses that alter ability behavior.
type SetBonuses struct {
	T62P bool
	T64P bool
	T72P bool
	T84P bool
	T92P bool
	T94P bool
}

// DebuffState describes the boss debuff environment used when deriving
// ability damage ranges. TigersFury is included here because the buff
// adds flat weapon damage and therefore forces the same recalculation
// as a debuff change.
type DebuffState struct {
	GiftOfArthas    bool
	BossArmor       float64
	SunderStacks    int
	FaerieFire      bool
	BloodFrenzy     bool
	ShatteringThrow bool
	TigersFury      bool
}

// DamageParams holds the derived low/high damage ranges for every
// ability, recomputed whenever player stats or boss debuffs change.
// Bite and Rip values are indexed by combo points spent (1-5).
type DamageParams struct {
	Multiplier float64

	WhiteLow, WhiteHigh   float64
	ShredLow, ShredHigh   float64
	MangleLow, MangleHigh float64
	BiteLow, BiteHigh     [6]float64
	BiteMultiplier        float64
	RakeHit, RakeTick     float64
	RipTick               [6]float64

	WhiteBearLow, WhiteBearHigh   float64
	MaulLow, MaulHigh             float64
	MangleBearLow, MangleBearHigh float64
	LacerateHit, LacerateTick     float64
}

const armorConstant = 467.5*80 - 22167.5

// CalcMissChance derives the overall chance for a special to fail to
// land against a boss, along with the dodge component used for bear
// swing rage accounting.
func (p *Player) CalcMissChance() {
	missReduction := math.Min(p.Stats.HitChance*100, 8.0)
	dodgeReduction := math.Min(
		6.5, (10+math.Floor(p.Stats.ExpertiseRating/8.1974973675))*0.25,
	)
	p.MissChance = 0.01 * ((8.0 - missReduction) + (6.5 - dodgeReduction))
	p.DodgeChance = 0.01 * (6.5 - dodgeReduction)
}

// CritMultiplier returns the crit damage multiplier for the player's
// current form.
func (p *Player) CritMultiplier() float64 {
	mult := 2.0 * (1.0 + 0.03*b2f(p.MetaGem))
	if p.CatForm {
		mult *= 1.0 + float64(p.Talents.PredatoryInstincts)/30
	}
	return mult
}

// CalcDamageParams rederives all ability damage ranges for the given
// boss debuff environment.
func (p *Player) CalcDamageParams(debuffs DebuffState) {
	d := &p.Damage
	bonusDamage := (p.Stats.AttackPower+p.Stats.DebuffAP)/14 +
		p.Stats.BonusDamage + 80*b2f(debuffs.TigersFury)

	debuffedArmor := debuffs.BossArmor *
		(1 - 0.04*float64(debuffs.SunderStacks)) *
		(1 - 0.05*b2f(debuffs.FaerieFire)) *
		(1 - 0.2*b2f(debuffs.ShatteringThrow))
	arpCap := (debuffedArmor + armorConstant) / 3
	armorPen := math.Min(1399, p.Stats.ArmorPenRating) / 13.99 / 100 *
		math.Min(arpCap, debuffedArmor)
	residualArmor := debuffedArmor - armorPen
	armorMultiplier := 1 - residualArmor/(residualArmor+armorConstant)
	damageMultiplier := p.DamageMultiplier * (1 + 0.04*b2f(debuffs.BloodFrenzy))
	d.Multiplier = armorMultiplier * damageMultiplier

	d.WhiteLow = (43.0 + bonusDamage) * d.Multiplier
	d.WhiteHigh = (66.0 + bonusDamage) * d.Multiplier
	d.ShredLow = 1.2 * (d.WhiteLow*2.25 + (666+p.Stats.ShredBonus)*d.Multiplier)
	d.ShredHigh = 1.2 * (d.WhiteHigh*2.25 + (666+p.Stats.ShredBonus)*d.Multiplier)
	d.BiteMultiplier = d.Multiplier *
		(1 + 0.03*float64(p.Talents.FeralAggression)) *
		(1 + 0.15*b2f(p.Sets.T64P))

	ap := p.Stats.AttackPower
	for cp := 1; cp <= 5; cp++ {
		fcp := float64(cp)
		d.BiteLow[cp] = (290*fcp + 120 + 0.07*fcp*ap) * d.BiteMultiplier
		d.BiteHigh[cp] = (290*fcp + 260 + 0.07*fcp*ap) * d.BiteMultiplier
	}

	sfFac := 1 + 0.1*float64(p.Talents.SavageFury)
	mangleFac := sfFac * (1 + 0.1*b2f(p.Glyphs.Mangle))
	d.MangleLow = mangleFac * (d.WhiteLow*2 + 566*d.Multiplier)
	d.MangleHigh = mangleFac * (d.WhiteHigh*2 + 566*d.Multiplier)

	rakeMulti := sfFac * damageMultiplier
	d.RakeHit = rakeMulti * (176 + 0.01*ap)
	d.RakeTick = rakeMulti * (358 + 0.06*ap)

	ripMultiplier := damageMultiplier * (1 + 0.15*b2f(p.Sets.T64P))
	for cp := 1; cp <= 5; cp++ {
		fcp := float64(cp)
		d.RipTick[cp] = (36 + 93*fcp + 0.01*fcp*ap + p.Stats.RipBonus*fcp) * ripMultiplier
	}

	// Bear form values are derived from the Cat Form sheet by backing
	// out the feral AP contribution from Agility.
	bearAP := p.BearAPMod * (ap/p.Stats.APMod - p.Stats.Agility + 80)
	bearBonusDamage := (bearAP+p.Stats.DebuffAP)/14*2.5 + p.Stats.BonusDamage
	bearMulti := d.Multiplier * 1.04
	d.WhiteBearLow = (109.0 + bearBonusDamage) * bearMulti
	d.WhiteBearHigh = (165.0 + bearBonusDamage) * bearMulti
	maulMulti := sfFac * 1.2
	d.MaulLow = (d.WhiteBearLow + 578*bearMulti) * maulMulti
	d.MaulHigh = (d.WhiteBearHigh + 578*bearMulti) * maulMulti
	d.MangleBearLow = mangleFac * (d.WhiteBearLow*1.15 + 299*bearMulti)
	d.MangleBearHigh = mangleFac * (d.WhiteBearHigh*1.15 + 299*bearMulti)
	d.LacerateHit = (88 + 0.01*bearAP) * bearMulti * p.LacerateMulti
	d.LacerateTick = (64 + 0.01*bearAP) * bearMulti / armorMultiplier

	if !debuffs.GiftOfArthas {
		return
	}

	gota := 8 * armorMultiplier
	d.WhiteLow += gota
	d.WhiteHigh += gota
	d.ShredLow += gota
	d.ShredHigh += gota
	d.MangleLow += gota
	d.MangleHigh += gota
	d.WhiteBearLow += gota
	d.WhiteBearHigh += gota
	d.MaulLow += gota
	d.MaulHigh += gota
	d.MangleBearLow += gota
	d.MangleBearHigh += gota
	for cp := 1; cp <= 5; cp++ {
		d.BiteLow[cp] += gota
		d.BiteHigh[cp] += gota
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
