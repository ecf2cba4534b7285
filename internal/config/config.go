package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wotlk-cat-sim/internal/character"
)

// PlayerConfig holds the character stat sheet, talents, glyphs, and set
// bonuses. Passive gear stats are assumed to be baked into the stat
// sheet already; only proc and on-use effects are listed separately in
// the gear config.
type PlayerConfig struct {
	Stats struct {
		AttackPower     float64 `yaml:"attack_power"`
		APMod           float64 `yaml:"ap_mod"`
		Agility         float64 `yaml:"agility"`
		CritChance      float64 `yaml:"crit_chance"`
		HitChance       float64 `yaml:"hit_chance"`
		ExpertiseRating float64 `yaml:"expertise_rating"`
		ArmorPenRating  float64 `yaml:"armor_pen_rating"`
		BonusDamage     float64 `yaml:"bonus_damage"`
		ShredBonus      float64 `yaml:"shred_bonus"`
		RipBonus        float64 `yaml:"rip_bonus"`
		WeaponSpeed     float64 `yaml:"weapon_speed"`
		ManaPool        float64 `yaml:"mana_pool"`
		Intellect       float64 `yaml:"intellect"`
		Spirit          float64 `yaml:"spirit"`
		MP5             float64 `yaml:"mp5"`
	} `yaml:"stats"`

	// SwingTimer is the fully buffed Cat Form swing timer in seconds.
	SwingTimer float64 `yaml:"swing_timer"`

	Talents struct {
		FeralAggression     int  `yaml:"feral_aggression"`
		PredatoryInstincts  int  `yaml:"predatory_instincts"`
		SavageFury          int  `yaml:"savage_fury"`
		Furor               int  `yaml:"furor"`
		NaturalShapeshifter int  `yaml:"natural_shapeshifter"`
		Intensity           int  `yaml:"intensity"`
		ProtectorOfThePack  int  `yaml:"protector_of_the_pack"`
		ImprovedMangle      int  `yaml:"improved_mangle"`
		ImprovedLotP        int  `yaml:"improved_lotp"`
		PrimalGore          bool `yaml:"primal_gore"`
		OmenOfClarity       bool `yaml:"omen_of_clarity"`
	} `yaml:"talents"`

	Glyphs struct {
		Mangle  bool `yaml:"mangle"`
		Rip     bool `yaml:"rip"`
		Shred   bool `yaml:"shred"`
		Roar    bool `yaml:"savage_roar"`
		Berserk bool `yaml:"berserk"`
	} `yaml:"glyphs"`

	Sets struct {
		T62P bool `yaml:"t6_2p"`
		T64P bool `yaml:"t6_4p"`
		T72P bool `yaml:"t7_2p"`
		T84P bool `yaml:"t8_4p"`
		T92P bool `yaml:"t9_2p"`
		T94P bool `yaml:"t9_4p"`
	} `yaml:"sets"`

	Wolfshead         bool `yaml:"wolfshead"`
	MetaGem           bool `yaml:"meta_gem"`
	JudgementOfWisdom bool `yaml:"judgement_of_wisdom"`
	DarkRune          bool `yaml:"dark_rune"`

	DamageMultiplier float64 `yaml:"damage_multiplier"`
}

// EncounterConfig holds the boss and raid environment.
type EncounterConfig struct {
	FightLength     float64 `yaml:"fight_length"`
	Latency         float64 `yaml:"latency"`
	HasteMultiplier float64 `yaml:"haste_multiplier"`
	BossArmor       float64 `yaml:"boss_armor"`
	Sunder          bool    `yaml:"sunder"`
	FaerieFire      bool    `yaml:"faerie_fire"`
	BloodFrenzy     bool    `yaml:"blood_frenzy"`
	ShatteringThrow bool    `yaml:"shattering_throw"`
	GiftOfArthas    bool    `yaml:"gift_of_arthas"`
	HoTUptime       float64 `yaml:"hot_uptime"`
}

// StrategyConfig holds the rotation policy knobs.
type StrategyConfig struct {
	MinCombosForRip   int      `yaml:"min_combos_for_rip"`
	MinCombosForBite  int      `yaml:"min_combos_for_bite"`
	UseRake           bool     `yaml:"use_rake"`
	UseBite           bool     `yaml:"use_bite"`
	UseRoar           bool     `yaml:"use_roar"`
	BiteTime          *float64 `yaml:"bite_time"`
	MangleSpam        bool     `yaml:"mangle_spam"`
	BearMangle        bool     `yaml:"bear_mangle"`
	UseBerserk        bool     `yaml:"use_berserk"`
	PrepopBerserk     bool     `yaml:"prepop_berserk"`
	PreprocOmen       bool     `yaml:"preproc_omen"`
	BerserkBiteThresh float64  `yaml:"berserk_bite_thresh"`
	Bearweave         bool     `yaml:"bearweave"`
	LaceratePrio      bool     `yaml:"lacerate_prio"`
	LacerateTime      float64  `yaml:"lacerate_time"`
	Powerbear         bool     `yaml:"powerbear"`
	Flowershift       bool     `yaml:"flowershift"`
}

// GearConfig lists activated and proc effects by name, plus the raid
// cooldown schedule.
type GearConfig struct {
	Equipped       []string `yaml:"equipped"`
	Bloodlust      bool     `yaml:"bloodlust"`
	BloodlustDelay float64  `yaml:"bloodlust_delay"`
	HastePotion    bool     `yaml:"haste_potion"`
	PotionDelay    float64  `yaml:"potion_delay"`
	MaxPotions     int      `yaml:"max_potions"`
}

// Config holds all configuration shared read-only across trials.
type Config struct {
	Player    PlayerConfig
	Encounter EncounterConfig
	Strategy  StrategyConfig
	Gear      GearConfig
}

// LoadConfig loads the four YAML configuration files from configDir.
// Unknown keys in any file are fatal errors.
func LoadConfig(configDir string) (*Config, error) {
	cfg := &Config{}

	if err := loadStrict(configDir+"/player.yaml", &cfg.Player); err != nil {
		return nil, err
	}
	if err := loadStrict(configDir+"/encounter.yaml", &cfg.Encounter); err != nil {
		return nil, err
	}
	if err := loadStrict(configDir+"/strategy.yaml", &cfg.Strategy); err != nil {
		return nil, err
	}
	if err := loadStrict(configDir+"/trinkets.yaml", &cfg.Gear); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadStrict(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// PlayerOptions maps the player configuration onto the character
// construction options.
func (cfg *Config) PlayerOptions() character.PlayerOptions {
	p := &cfg.Player
	return character.PlayerOptions{
		Stats: character.Stats{
			AttackPower:     p.Stats.AttackPower,
			APMod:           p.Stats.APMod,
			Agility:         p.Stats.Agility,
			CritChance:      p.Stats.CritChance,
			HitChance:       p.Stats.HitChance,
			ExpertiseRating: p.Stats.ExpertiseRating,
			ArmorPenRating:  p.Stats.ArmorPenRating,
			BonusDamage:     p.Stats.BonusDamage,
			ShredBonus:      p.Stats.ShredBonus,
			RipBonus:        p.Stats.RipBonus,
			WeaponSpeed:     p.Stats.WeaponSpeed,
			ManaPool:        p.Stats.ManaPool,
			Intellect:       p.Stats.Intellect,
			Spirit:          p.Stats.Spirit,
			MP5:             p.Stats.MP5,
		},
		Talents: character.Talents{
			FeralAggression:     p.Talents.FeralAggression,
			PredatoryInstincts:  p.Talents.PredatoryInstincts,
			SavageFury:          p.Talents.SavageFury,
			Furor:               p.Talents.Furor,
			NaturalShapeshifter: p.Talents.NaturalShapeshifter,
			Intensity:           p.Talents.Intensity,
			ProtectorOfThePack:  p.Talents.ProtectorOfThePack,
			ImprovedMangle:      p.Talents.ImprovedMangle,
			ImprovedLotP:        p.Talents.ImprovedLotP,
			PrimalGore:          p.Talents.PrimalGore,
			OmenOfClarity:       p.Talents.OmenOfClarity,
		},
		Glyphs: character.Glyphs{
			Mangle:  p.Glyphs.Mangle,
			Rip:     p.Glyphs.Rip,
			Shred:   p.Glyphs.Shred,
			Roar:    p.Glyphs.Roar,
			Berserk: p.Glyphs.Berserk,
		},
		Sets: character.SetBonuses{
			T62P: p.Sets.T62P,
			T64P: p.Sets.T64P,
			T72P: p.Sets.T72P,
			T84P: p.Sets.T84P,
			T92P: p.Sets.T92P,
			T94P: p.Sets.T94P,
		},
		Wolfshead:         p.Wolfshead,
		MetaGem:           p.MetaGem,
		JudgementOfWisdom: p.JudgementOfWisdom,
		UseRune:           p.DarkRune,
		DamageMultiplier:  p.DamageMultiplier,
	}
}
