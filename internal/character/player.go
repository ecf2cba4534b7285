package character

import (
	"math"
	"math/rand"

	"wotlk-cat-sim/internal/combat"
)

// Ability names used for damage breakdown bookkeeping and logging.
const (
	AbilityMelee      = "Melee"
	AbilityMangleCat  = "Mangle (Cat)"
	AbilityRake       = "Rake"
	AbilityShred      = "Shred"
	AbilityRoar       = "Savage Roar"
	AbilityRip        = "Rip"
	AbilityBite       = "Ferocious Bite"
	AbilityShiftBear  = "Shift (Bear)"
	AbilityMaul       = "Maul"
	AbilityMangleBear = "Mangle (Bear)"
	AbilityLacerate   = "Lacerate"
	AbilityShiftCat   = "Shift (Cat)"
	AbilityGift       = "Gift of the Wild"
)

// AbilityOrder fixes the display order of the damage breakdown.
var AbilityOrder = []string{
	AbilityMelee, AbilityMangleCat, AbilityRake, AbilityShred, AbilityRoar,
	AbilityRip, AbilityBite, AbilityShiftBear, AbilityMaul, AbilityMangleBear,
	AbilityLacerate, AbilityShiftCat, AbilityGift,
}

// AbilityStats accumulates cast count and damage done for one ability.
type AbilityStats struct {
	Casts  int
	Damage float64
}

// ProcKind restricts which attacks a proc listener responds to.
type ProcKind int

const (
	ProcAnyHit ProcKind = iota
	ProcMangleOnly
	ProcShredOnly
)

// ProcListener receives a notification for every landed attack so that
// chance-based effects can roll for activation.
type ProcListener interface {
	OnHit(crit, yellow bool)
	Kind() ProcKind
}

// RoarDurations maps combo points spent to the base Savage Roar
// duration in seconds.
var RoarDurations = [6]float64{0, 14, 19, 24, 29, 34}

// Omen of Clarity proc rates per qualifying swing.
const (
	omenRateWhite = 3.5 / 60
	omenRateBear  = 3.5 / 60 * 2.5
)

// Gift of the Wild costs 1119 Mana with Glyph of the Wild and rolls
// Omen of Clarity once per target hit, 25 raid members assumed.
const giftCost = 1119

var omenRateGift = 1 - math.Pow(1-0.0875, 25)

// Player models the feral druid state machine: stats, talents, resource
// pools, cooldowns, and the derived per-ability damage sheet.
type Player struct {
	Stats   Stats
	Talents Talents
	Glyphs  Glyphs
	Sets    SetBonuses

	Wolfshead         bool
	MetaGem           bool
	JudgementOfWisdom bool
	UseRune           bool

	// Derived at construction.
	MissChance       float64
	DodgeChance      float64
	DamageMultiplier float64
	BearAPMod        float64
	RoarFac          float64
	LacerateMulti    float64
	RipDuration      float64
	RakeDuration     float64
	BiteCritBonus    float64
	ShiftCost        float64
	regenBase        float64
	regenFSR         float64

	Damage DamageParams

	// Resources.
	Energy      float64
	Rage        float64
	Mana        float64
	ComboPoints int

	// Combat state.
	GCD            float64
	SpellGCD       float64
	OmenProc       bool
	CatForm        bool
	Casting        bool
	ReadyToShift   bool
	ReadyToGift    bool
	Berserk        bool
	SavageRoar     bool
	Enrage         bool
	FiveSecondRule bool
	LastShift      float64

	// Cooldowns tracked as remaining seconds, decremented per event.
	TFCD      float64
	BerserkCD float64
	EnrageCD  float64
	MangleCD  float64
	RuneCD    float64
	ILotPICD  float64

	// Ability costs, halved while Berserk is active.
	ShredCost  float64
	RakeCost   float64
	MangleCost float64
	BiteCost   float64
	RipCost    float64
	RoarCost   float64

	mangleBaseCost float64
	ripBaseCost    float64

	Rng    *rand.Rand
	Roller *combat.Roller

	ProcListeners []ProcListener

	Breakdown map[string]*AbilityStats

	// Log is called with an event name and outcome string for every
	// player action when combat logging is enabled. Nil disables it.
	Log func(event, outcome string)
}

// PlayerOptions bundles the static configuration needed to construct a
// Player.
type PlayerOptions struct {
	Stats   Stats
	Talents Talents
	Glyphs  Glyphs
	Sets    SetBonuses

	Wolfshead         bool
	MetaGem           bool
	JudgementOfWisdom bool
	UseRune           bool

	// DamageMultiplier is the overall multiplier from talents and raid
	// buffs, 1.1 for 5/5 Naturalist.
	DamageMultiplier float64
}

// NewPlayer builds a Player from static options. The caller must still
// assign an RNG and call Reset plus CalcDamageParams before use.
func NewPlayer(opts PlayerOptions) *Player {
	p := &Player{
		Stats:             opts.Stats,
		Talents:           opts.Talents,
		Glyphs:            opts.Glyphs,
		Sets:              opts.Sets,
		Wolfshead:         opts.Wolfshead,
		MetaGem:           opts.MetaGem,
		JudgementOfWisdom: opts.JudgementOfWisdom,
		UseRune:           opts.UseRune,
		DamageMultiplier:  opts.DamageMultiplier,
	}
	if p.DamageMultiplier == 0 {
		p.DamageMultiplier = 1.1
	}

	// Boss crit suppression.
	p.Stats.CritChance -= 0.048

	p.BearAPMod = p.Stats.APMod / 1.1 *
		(1 + 0.02*float64(opts.Talents.ProtectorOfThePack))
	p.RoarFac = 0.3 + 0.03*b2f(opts.Glyphs.Roar)
	p.RipDuration = 12 + 4*b2f(opts.Glyphs.Rip) + 4*b2f(opts.Sets.T72P)
	p.RakeDuration = 9 + 3*b2f(opts.Sets.T92P)
	p.LacerateMulti = 1 + 0.05*b2f(opts.Sets.T72P)
	p.BiteCritBonus = 0.25 + 0.05*b2f(opts.Sets.T94P)
	p.mangleBaseCost = 40 - 5*b2f(opts.Sets.T62P) - 2*float64(opts.Talents.ImprovedMangle)
	p.ripBaseCost = 30

	p.CalcMissChance()
	p.SetManaRegen()
	p.Reset()
	return p
}

// SetRand assigns the random source shared by the owning trial.
func (p *Player) SetRand(rng *rand.Rand) {
	p.Rng = rng
	p.Roller = combat.NewRoller(rng)
}

// SetManaRegen derives the in-combat and five-second-rule mana regen
// rates from the player's regen stats.
func (p *Player) SetManaRegen() {
	regenFactor := 0.016725 / 5 * math.Sqrt(p.Stats.Intellect)
	baseRegen := p.Stats.Spirit * regenFactor
	bonusRegen := p.Stats.MP5 / 5
	p.regenBase = baseRegen + bonusRegen
	p.regenFSR = 0.5/3*float64(p.Talents.Intensity)*baseRegen + bonusRegen
	p.ShiftCost = 1224 * 0.4 * (1 - 0.1*float64(p.Talents.NaturalShapeshifter))
}

// Reset restores fight-specific state to its starting values.
func (p *Player) Reset() {
	p.GCD = 0
	p.OmenProc = false
	p.ILotPICD = 0
	p.TFCD = 0
	p.Energy = 100
	p.ComboPoints = 0
	p.Mana = p.Stats.ManaPool
	p.Rage = 0
	p.RuneCD = 0
	p.FiveSecondRule = false
	p.CatForm = true
	p.Casting = false
	p.ReadyToShift = false
	p.ReadyToGift = false
	p.SpellGCD = 1.5
	p.Berserk = false
	p.BerserkCD = 0
	p.Enrage = false
	p.EnrageCD = 0
	p.MangleCD = 0
	p.SavageRoar = false
	p.SetAbilityCosts()

	p.Breakdown = make(map[string]*AbilityStats, len(AbilityOrder))
	for _, name := range AbilityOrder {
		p.Breakdown[name] = &AbilityStats{}
	}
}

// SetAbilityCosts stores Energy costs for all specials based on whether
// Berserk is active.
func (p *Player) SetAbilityCosts() {
	div := 1 + b2f(p.Berserk)
	p.ShredCost = 42 / div
	p.RakeCost = 35 / div
	p.MangleCost = p.mangleBaseCost / div
	p.BiteCost = 35 / div
	p.RipCost = p.ripBaseCost / div
	p.RoarCost = 25 / div
}

// MangleBaseCost exposes the unmodified Mangle cost for rotation
// energy forecasting.
func (p *Player) MangleBaseCost() float64 { return p.mangleBaseCost }

// AdvanceTime decrements the GCD and every running cooldown by the
// elapsed interval.
func (p *Player) AdvanceTime(deltaT float64) {
	p.GCD = math.Max(0, p.GCD-deltaT)
	p.RuneCD = math.Max(0, p.RuneCD-deltaT)
	p.TFCD = math.Max(0, p.TFCD-deltaT)
	p.BerserkCD = math.Max(0, p.BerserkCD-deltaT)
	p.EnrageCD = math.Max(0, p.EnrageCD-deltaT)
	p.MangleCD = math.Max(0, p.MangleCD-deltaT)
	p.ILotPICD = math.Max(0, p.ILotPICD-deltaT)
}

// Regen updates Energy, Mana, and Enrage Rage for elapsed time.
func (p *Player) Regen(deltaT float64) {
	p.Energy = math.Min(100, p.Energy+10*deltaT)

	manaRegen := p.regenBase
	if p.FiveSecondRule {
		manaRegen = p.regenFSR
	}
	p.Mana = math.Min(p.Mana+manaRegen*deltaT, p.Stats.ManaPool)

	if p.Enrage {
		p.Rage = math.Min(100, p.Rage+deltaT)
	}
}

// CheckOmenProc rolls for Omen of Clarity on a successful white swing.
func (p *Player) CheckOmenProc(yellow bool) {
	if !p.Talents.OmenOfClarity || yellow {
		return
	}
	rate := omenRateWhite
	if !p.CatForm {
		rate = omenRateBear
	}
	if p.Rng.Float64() < rate {
		p.OmenProc = true
	}
}

// CheckJoWProc rolls for a Judgement of Wisdom mana return on a
// successful melee attack.
func (p *Player) CheckJoWProc() {
	if !p.JudgementOfWisdom {
		return
	}
	if p.Rng.Float64() < 0.25 {
		p.Mana = math.Min(p.Mana+70, p.Stats.ManaPool)
	}
}

// CheckProcs runs all on-hit proc checks for a successful attack.
func (p *Player) CheckProcs(yellow, crit bool) {
	p.CheckOmenProc(yellow)
	p.CheckJoWProc()

	if crit && p.ILotPICD < 1e-9 && p.Talents.ImprovedLotP > 0 {
		p.Mana = math.Min(
			p.Mana+0.04*float64(p.Talents.ImprovedLotP)*p.Stats.ManaPool,
			p.Stats.ManaPool,
		)
		p.ILotPICD = 6.0
	}

	for _, listener := range p.ProcListeners {
		if listener.Kind() == ProcAnyHit {
			listener.OnHit(crit, yellow)
		}
	}
}

func (p *Player) notifyProcs(kind ProcKind) {
	for _, listener := range p.ProcListeners {
		if listener.Kind() == kind {
			listener.OnHit(false, true)
		}
	}
}

// UseDarkRune pops a Dark Rune when mana is low enough for full value.
func (p *Player) UseDarkRune() bool {
	if !p.UseRune || p.RuneCD > 1e-9 || p.Mana > p.Stats.ManaPool-1500 {
		return false
	}
	p.Mana += 900 + p.Rng.Float64()*600
	p.RuneCD = 15 * 60
	return true
}

// Shift executes a form change between Cat and Dire Bear. A powershift
// re-enters the current form to reset resources via Furor.
func (p *Player) Shift(time float64, powershift bool) {
	outcome := ""

	if powershift {
		p.CatForm = !p.CatForm
	}

	var castName string
	if p.CatForm {
		p.CatForm = false
		p.Rage = 0
		if p.Rng.Float64() < 0.2*float64(p.Talents.Furor) {
			p.Rage = 10
		}
		castName = AbilityShiftBear

		// Bundle Enrage with the bear shift if available.
		if p.EnrageCD < 1e-9 {
			p.Rage += 20
			p.Enrage = true
			p.EnrageCD = 60
			outcome = "use Enrage"
		}
	} else {
		p.CatForm = true
		p.Energy = math.Min(
			100,
			math.Min(p.Energy, 20*float64(p.Talents.Furor))+20*b2f(p.Wolfshead),
		)
		p.Enrage = false
		castName = AbilityShiftCat
	}

	p.GCD = 1.5
	p.Casting = false
	p.Breakdown[castName].Casts++
	p.Mana = math.Max(0, p.Mana-p.ShiftCost)
	p.FiveSecondRule = true
	p.LastShift = time
	p.ReadyToShift = false

	if p.UseDarkRune() {
		outcome = "use Dark Rune"
	}

	if p.Log != nil {
		if powershift {
			castName = "Power" + castName
		}
		p.Log(castName, outcome)
	}
}

// GiftOfTheWild drops out of Cat Form to cast Gift of the Wild on the
// raid, fishing for a Clearcasting proc. The caster stays formless
// until the next Shift resolves.
func (p *Player) GiftOfTheWild(time float64) {
	p.CatForm = false
	p.Casting = true
	p.GCD = p.SpellGCD
	p.Breakdown[AbilityGift].Casts++
	p.Mana = math.Max(0, p.Mana-giftCost)
	p.FiveSecondRule = true
	p.LastShift = time
	p.ReadyToGift = false

	if p.Talents.OmenOfClarity && p.Rng.Float64() < omenRateGift {
		p.OmenProc = true
	}

	if p.Log != nil {
		p.Log(AbilityGift, "cast")
	}
}

// GiftCost exposes the Gift of the Wild mana cost for rotation mana
// gating.
func (p *Player) GiftCost() float64 { return giftCost }
