package effects

import "wotlk-cat-sim/internal/character"

// StatTarget identifies which player stat a temporary effect modifies.
type StatTarget int

const (
	TargetAttackPower StatTarget = iota
	TargetAgility
	TargetCritChance
	TargetHitChance
	TargetHasteRating
	TargetArmorPen
	TargetBonusDamage
)

var statTargetNames = map[StatTarget]string{
	TargetAttackPower: "attack_power",
	TargetAgility:     "agility",
	TargetCritChance:  "crit_chance",
	TargetHitChance:   "hit_chance",
	TargetHasteRating: "haste_rating",
	TargetArmorPen:    "armor_pen_rating",
	TargetBonusDamage: "bonus_damage",
}

func (t StatTarget) String() string {
	if name, ok := statTargetNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseStatTarget maps a configuration key to a StatTarget.
func ParseStatTarget(name string) (StatTarget, bool) {
	for target, targetName := range statTargetNames {
		if targetName == name {
			return target, true
		}
	}
	return 0, false
}

// StatMod is a single stat delta applied for the duration of an effect.
type StatMod struct {
	Target StatTarget
	Amount float64
}

// Host is the simulation surface that effects interact with. Haste and
// swing speed changes must go through the host so that pending swing
// times are rescaled; all other stat changes require a damage parameter
// recalculation.
type Host interface {
	ApplyHasteRating(now, increment float64)
	MultiplySwingSpeed(now, factor float64)
	RecalcDamageParams()
	LogEvent(now float64, event, outcome string)
	ScheduleProcEnd(end float64)
}

// ApplyDelta routes a single stat change to the right player field or
// host hook. Agility carries its coupled Attack Power and crit
// contributions, matching how the stat behaves on gear.
func ApplyDelta(host Host, p *character.Player, target StatTarget, now, amount float64) {
	switch target {
	case TargetHasteRating:
		host.ApplyHasteRating(now, amount)
		return
	case TargetAttackPower:
		p.Stats.AttackPower += amount
	case TargetAgility:
		p.Stats.Agility += amount
		p.Stats.AttackPower += p.Stats.APMod * amount
		p.Stats.CritChance += amount / 40.0 / 100.0
	case TargetCritChance:
		p.Stats.CritChance += amount
	case TargetHitChance:
		p.Stats.HitChance += amount
		p.CalcMissChance()
	case TargetArmorPen:
		p.Stats.ArmorPenRating += amount
	case TargetBonusDamage:
		p.Stats.BonusDamage += amount
	}
	host.RecalcDamageParams()
}

func applyMods(host Host, p *character.Player, mods []StatMod, now, sign float64) {
	for _, mod := range mods {
		ApplyDelta(host, p, mod.Target, now, sign*mod.Amount)
	}
}
