package config

import "fmt"

func (cfg *Config) validate() error {
	if err := cfg.Player.validate(); err != nil {
		return err
	}
	if err := cfg.Encounter.validate(); err != nil {
		return err
	}
	if err := cfg.Strategy.validate(); err != nil {
		return err
	}
	return nil
}

func (p *PlayerConfig) validate() error {
	if p.SwingTimer <= 0 {
		return fmt.Errorf("player: swing_timer must be positive, got %g", p.SwingTimer)
	}
	if p.Stats.WeaponSpeed <= 0 {
		return fmt.Errorf("player: weapon_speed must be positive, got %g", p.Stats.WeaponSpeed)
	}
	if p.Stats.APMod <= 0 {
		return fmt.Errorf("player: ap_mod must be positive, got %g", p.Stats.APMod)
	}
	checkRank := func(name string, val, max int) error {
		if val < 0 || val > max {
			return fmt.Errorf("player: talent %s must be 0-%d, got %d", name, max, val)
		}
		return nil
	}
	if err := checkRank("feral_aggression", p.Talents.FeralAggression, 5); err != nil {
		return err
	}
	if err := checkRank("savage_fury", p.Talents.SavageFury, 2); err != nil {
		return err
	}
	if err := checkRank("furor", p.Talents.Furor, 5); err != nil {
		return err
	}
	if err := checkRank("natural_shapeshifter", p.Talents.NaturalShapeshifter, 3); err != nil {
		return err
	}
	if err := checkRank("intensity", p.Talents.Intensity, 3); err != nil {
		return err
	}
	if err := checkRank("improved_mangle", p.Talents.ImprovedMangle, 3); err != nil {
		return err
	}
	return nil
}

func (e *EncounterConfig) validate() error {
	if e.FightLength <= 0 {
		return fmt.Errorf("encounter: fight_length must be positive, got %g", e.FightLength)
	}
	if e.Latency < 0 {
		return fmt.Errorf("encounter: latency cannot be negative, got %g", e.Latency)
	}
	if e.HasteMultiplier <= 0 {
		return fmt.Errorf("encounter: haste_multiplier must be positive, got %g", e.HasteMultiplier)
	}
	if e.BossArmor < 0 {
		return fmt.Errorf("encounter: boss_armor cannot be negative, got %g", e.BossArmor)
	}
	if e.HoTUptime < 0 || e.HoTUptime > 1 {
		return fmt.Errorf("encounter: hot_uptime must be in [0, 1], got %g", e.HoTUptime)
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	if s.MinCombosForRip < 1 || s.MinCombosForRip > 5 {
		return fmt.Errorf("strategy: min_combos_for_rip must be 1-5, got %d", s.MinCombosForRip)
	}
	if s.MinCombosForBite < 1 || s.MinCombosForBite > 5 {
		return fmt.Errorf("strategy: min_combos_for_bite must be 1-5, got %d", s.MinCombosForBite)
	}
	if s.BiteTime != nil && *s.BiteTime < 0 {
		return fmt.Errorf("strategy: bite_time cannot be negative, got %g", *s.BiteTime)
	}
	if s.LaceratePrio && !s.Bearweave {
		return fmt.Errorf("strategy: lacerate_prio requires bearweave")
	}
	if s.Flowershift && s.Bearweave {
		return fmt.Errorf("strategy: flowershift and bearweave are mutually exclusive")
	}
	if s.LacerateTime < 0 {
		return fmt.Errorf("strategy: lacerate_time cannot be negative, got %g", s.LacerateTime)
	}
	return nil
}
