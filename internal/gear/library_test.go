package gear

import (
	"strings"
	"testing"

	"wotlk-cat-sim/internal/config"
)

func TestValidateUnknownItem(t *testing.T) {
	cfg := &config.GearConfig{Equipped: []string{"grim_toll", "warglaive"}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("unknown item accepted")
	}
	if !strings.Contains(err.Error(), "warglaive") {
		t.Errorf("error does not name the unknown item: %v", err)
	}

	cfg.Equipped = []string{"grim_toll", "dmc_greatness"}
	if err := Validate(cfg); err != nil {
		t.Errorf("known items rejected: %v", err)
	}
}

func TestBuildEffectsComposition(t *testing.T) {
	cfg := &config.GearConfig{
		Equipped:    []string{"grim_toll", "mark_of_norgannon"},
		Bloodlust:   true,
		HastePotion: true,
	}

	built := BuildEffects(cfg)
	if len(built) != 4 {
		t.Fatalf("built %d effects, want 2 items + potion + bloodlust", len(built))
	}

	names := make(map[string]bool)
	for _, effect := range built {
		names[effect.Name()] = true
	}
	for _, want := range []string{
		"Grim Toll", "Mark of Norgannon", "Potion of Speed", "Bloodlust",
	} {
		if !names[want] {
			t.Errorf("missing effect %q in %v", want, names)
		}
	}
}

func TestBuildEffectsInstancesAreIndependent(t *testing.T) {
	cfg := &config.GearConfig{Equipped: []string{"grim_toll"}}

	a := BuildEffects(cfg)
	b := BuildEffects(cfg)

	a[0].Stats().NumProcs = 7
	if b[0].Stats().NumProcs != 0 {
		t.Error("trials share effect state")
	}
}

func TestBuildEffectsEmptyGear(t *testing.T) {
	cfg := &config.GearConfig{}
	if built := BuildEffects(cfg); len(built) != 0 {
		t.Errorf("built %d effects from empty gear", len(built))
	}
}
