package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPlayerYAML = `
stats:
  attack_power: 10538
  ap_mod: 1.1
  agility: 1389
  crit_chance: 0.52
  hit_chance: 0.0716
  expertise_rating: 132
  armor_pen_rating: 735
  weapon_speed: 3.0
  mana_pool: 6000
  intellect: 200
  spirit: 180
swing_timer: 0.8389
talents:
  feral_aggression: 5
  predatory_instincts: 3
  savage_fury: 2
  furor: 5
  intensity: 3
  improved_mangle: 1
  primal_gore: true
  omen_of_clarity: true
glyphs:
  rip: true
  shred: true
  savage_roar: true
sets:
  t8_4p: true
wolfshead: true
meta_gem: true
judgement_of_wisdom: true
damage_multiplier: 1.1
`

const validEncounterYAML = `
fight_length: 300
latency: 0.1
haste_multiplier: 1.0
boss_armor: 10643
sunder: true
faerie_fire: true
hot_uptime: 0.3
`

const validStrategyYAML = `
min_combos_for_rip: 5
min_combos_for_bite: 5
use_rake: true
use_bite: true
use_roar: true
use_berserk: true
berserk_bite_thresh: 25
`

const validGearYAML = `
equipped:
  - grim_toll
  - dmc_greatness
bloodlust: true
bloodlust_delay: 5
haste_potion: true
potion_delay: 1
max_potions: 1
`

func writeConfigDir(t *testing.T, player, encounter, strategy, gear string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"player.yaml":    player,
		"encounter.yaml": encounter,
		"strategy.yaml":  strategy,
		"trinkets.yaml":  gear,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadConfigValid(t *testing.T) {
	dir := writeConfigDir(t,
		validPlayerYAML, validEncounterYAML, validStrategyYAML, validGearYAML)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Player.Stats.AttackPower != 10538 {
		t.Errorf("attack_power = %g", cfg.Player.Stats.AttackPower)
	}
	if cfg.Player.Talents.Furor != 5 {
		t.Errorf("furor = %d", cfg.Player.Talents.Furor)
	}
	if !cfg.Player.Glyphs.Roar {
		t.Error("savage_roar glyph not read")
	}
	if cfg.Encounter.FightLength != 300 {
		t.Errorf("fight_length = %g", cfg.Encounter.FightLength)
	}
	if cfg.Strategy.BiteTime != nil {
		t.Error("bite_time should be nil when omitted")
	}
	if len(cfg.Gear.Equipped) != 2 {
		t.Errorf("equipped = %v", cfg.Gear.Equipped)
	}
}

func TestLoadConfigBiteTime(t *testing.T) {
	strategy := validStrategyYAML + "bite_time: 11\n"
	dir := writeConfigDir(t,
		validPlayerYAML, validEncounterYAML, strategy, validGearYAML)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Strategy.BiteTime == nil || *cfg.Strategy.BiteTime != 11 {
		t.Errorf("bite_time = %v, want 11", cfg.Strategy.BiteTime)
	}
}

func TestLoadConfigUnknownKeyIsFatal(t *testing.T) {
	strategy := validStrategyYAML + "use_ferocious_bite: true\n"
	dir := writeConfigDir(t,
		validPlayerYAML, validEncounterYAML, strategy, validGearYAML)

	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("unknown strategy key accepted")
	}
	if !strings.Contains(err.Error(), "use_ferocious_bite") {
		t.Errorf("error does not name the unknown key: %v", err)
	}
	if !strings.Contains(err.Error(), "strategy.yaml") {
		t.Errorf("error does not name the offending file: %v", err)
	}
}

func TestLoadConfigUnknownNestedKeyIsFatal(t *testing.T) {
	player := strings.Replace(validPlayerYAML,
		"  agility: 1389", "  agility: 1389\n  armor: 5000", 1)
	dir := writeConfigDir(t,
		player, validEncounterYAML, validStrategyYAML, validGearYAML)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("unknown nested stats key accepted")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("missing config files accepted")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "zero swing timer",
			mutate:  func(cfg *Config) { cfg.Player.SwingTimer = 0 },
			wantErr: "swing_timer",
		},
		{
			name:    "talent over cap",
			mutate:  func(cfg *Config) { cfg.Player.Talents.Furor = 6 },
			wantErr: "furor",
		},
		{
			name:    "negative latency",
			mutate:  func(cfg *Config) { cfg.Encounter.Latency = -0.1 },
			wantErr: "latency",
		},
		{
			name:    "hot uptime above one",
			mutate:  func(cfg *Config) { cfg.Encounter.HoTUptime = 1.5 },
			wantErr: "hot_uptime",
		},
		{
			name:    "rip combos out of range",
			mutate:  func(cfg *Config) { cfg.Strategy.MinCombosForRip = 0 },
			wantErr: "min_combos_for_rip",
		},
		{
			name: "lacerate prio without bearweave",
			mutate: func(cfg *Config) {
				cfg.Strategy.LaceratePrio = true
				cfg.Strategy.Bearweave = false
			},
			wantErr: "lacerate_prio",
		},
		{
			name: "flowershift alongside bearweave",
			mutate: func(cfg *Config) {
				cfg.Strategy.Flowershift = true
				cfg.Strategy.Bearweave = true
			},
			wantErr: "flowershift",
		},
	}

	dir := writeConfigDir(t,
		validPlayerYAML, validEncounterYAML, validStrategyYAML, validGearYAML)
	base, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *base
			tc.mutate(&cfg)
			err := cfg.validate()
			if err == nil {
				t.Fatal("invalid config accepted")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
