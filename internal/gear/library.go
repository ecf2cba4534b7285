package gear

import (
	"fmt"

	"wotlk-cat-sim/internal/character"
	"wotlk-cat-sim/internal/config"
	"wotlk-cat-sim/internal/effects"
)

// library maps equipped item names to effect constructors. Passive
// stats on these items are assumed to be baked into the player stat
// sheet; only the proc or on-use portion is modeled here.
var library = map[string]func() effects.Effect{
	"mirror_of_truth": func() effects.Effect {
		return &effects.ChanceProc{
			Bookkeeping: effects.Bookkeeping{ProcName: "Reflection of Torment"},
			Mods: []effects.StatMod{
				{Target: effects.TargetAttackPower, Amount: 1000},
			},
			Duration:     10,
			Cooldown:     50,
			ChanceOnCrit: 0.1,
			Condition:    character.ProcAnyHit,
		}
	},
	"pyrite_infuser": func() effects.Effect {
		return &effects.ChanceProc{
			Bookkeeping: effects.Bookkeeping{ProcName: "Pyrite Infusion"},
			Mods: []effects.StatMod{
				{Target: effects.TargetAttackPower, Amount: 1234},
			},
			Duration:     10,
			Cooldown:     50,
			ChanceOnCrit: 0.1,
			Condition:    character.ProcAnyHit,
		}
	},
	"grim_toll": func() effects.Effect {
		return &effects.ChanceProc{
			Bookkeeping: effects.Bookkeeping{ProcName: "Grim Toll"},
			Mods: []effects.StatMod{
				{Target: effects.TargetArmorPen, Amount: 612},
			},
			Duration:    10,
			Cooldown:    45,
			ChanceOnHit: 0.15,
			Condition:   character.ProcAnyHit,
		}
	},
	"mjolnir_runestone": func() effects.Effect {
		return &effects.ChanceProc{
			Bookkeeping: effects.Bookkeeping{ProcName: "Mjolnir Runestone"},
			Mods: []effects.StatMod{
				{Target: effects.TargetArmorPen, Amount: 665},
			},
			Duration:    10,
			Cooldown:    45,
			ChanceOnHit: 0.15,
			Condition:   character.ProcAnyHit,
		}
	},
	"dmc_greatness": func() effects.Effect {
		return &effects.RefreshingProc{
			ChanceProc: effects.ChanceProc{
				Bookkeeping: effects.Bookkeeping{ProcName: "Greatness"},
				Mods: []effects.StatMod{
					{Target: effects.TargetAgility, Amount: 300},
				},
				Duration:    15,
				Cooldown:    45,
				ChanceOnHit: 0.35,
				Condition:   character.ProcAnyHit,
			},
		}
	},
	"incisor_fragment": func() effects.Effect {
		return &effects.FixedUse{
			Bookkeeping: effects.Bookkeeping{ProcName: "Incisor Fragment"},
			Mods: []effects.StatMod{
				{Target: effects.TargetArmorPen, Amount: 291},
			},
			Duration: 20,
			Cooldown: 120,
		}
	},
	"mark_of_norgannon": func() effects.Effect {
		return &effects.FixedUse{
			Bookkeeping: effects.Bookkeeping{ProcName: "Mark of Norgannon"},
			Mods: []effects.StatMod{
				{Target: effects.TargetHasteRating, Amount: 491},
			},
			Duration: 20,
			Cooldown: 120,
		}
	},
	"fury_of_the_five_flights": func() effects.Effect {
		return &effects.StackingProc{
			Bookkeeping:    effects.Bookkeeping{ProcName: "Fury of the Five Flights"},
			Target:         effects.TargetAttackPower,
			StackIncrement: 16,
			MaxStacks:      20,
			AuraName:       "Fury of the Five Flights",
			StackName:      "Fury of the Five Flights stack",
			StackRates:     effects.ProcRates{White: 1, Yellow: 1},
			AuraDuration:   120,
			Cooldown:       120,
			ActivatedAura:  true,
		}
	},
	"bandits_insignia": func() effects.Effect {
		return &effects.InstantDamageProc{
			Bookkeeping: effects.Bookkeeping{ProcName: "Bandit's Insignia"},
			Rates:       effects.ProcRates{White: 0.15, Yellow: 0.15},
			MissChance:  0.17,
			BaseLow:     1504,
			BaseHigh:    2256,
		}
	},
}

// Validate checks every equipped item name against the library.
func Validate(cfg *config.GearConfig) error {
	for _, name := range cfg.Equipped {
		if _, ok := library[name]; !ok {
			return fmt.Errorf("gear: unknown item '%s'", name)
		}
	}
	return nil
}

// BuildEffects constructs fresh effect instances for one trial. Each
// trial gets its own instances so replicate workers never share
// mutable effect state.
func BuildEffects(cfg *config.GearConfig) []effects.Effect {
	built := make([]effects.Effect, 0, len(cfg.Equipped)+2)
	for _, name := range cfg.Equipped {
		ctor, ok := library[name]
		if !ok {
			continue
		}
		built = append(built, ctor())
	}

	if cfg.HastePotion {
		maxUses := cfg.MaxPotions
		if maxUses == 0 {
			maxUses = 1
		}
		built = append(built, &effects.FixedUse{
			Bookkeeping: effects.Bookkeeping{ProcName: "Potion of Speed"},
			Mods: []effects.StatMod{
				{Target: effects.TargetHasteRating, Amount: 500},
			},
			Duration: 15,
			Cooldown: 600,
			Delay:    cfg.PotionDelay,
			MaxUses:  maxUses,
		})
	}
	if cfg.Bloodlust {
		built = append(built, effects.NewBloodlust(cfg.BloodlustDelay))
	}
	return built
}
