package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wotlk-cat-sim/internal/character"
	"wotlk-cat-sim/internal/config"
	"wotlk-cat-sim/internal/engine"
	"wotlk-cat-sim/internal/gear"
)

// trace runs a single seeded fight with the combat log streamed to
// stdout, for rotation debugging.
func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	seed := flag.Int64("seed", 0, "RNG seed for the trial (0 = current time)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := gear.Validate(&cfg.Gear); err != nil {
		log.Fatalf("Invalid gear config: %v", err)
	}

	trialSeed := *seed
	if trialSeed == 0 {
		trialSeed = time.Now().UnixNano()
	}

	sim := engine.NewSimulation(cfg, trialSeed)
	sim.EnableLog(os.Stdout)
	result := sim.Run()

	fmt.Printf("\nSeed %d: %.1f damage over %.1fs = %.2f DPS\n",
		result.Seed, result.TotalDamage, result.FightLength, result.DPS)
	for _, name := range character.AbilityOrder {
		stats := result.Breakdown[name]
		if stats.Casts == 0 && stats.Damage == 0 {
			continue
		}
		fmt.Printf("  %-18s %3d casts  %10.1f damage\n", name, stats.Casts, stats.Damage)
	}
	if result.WentOOM {
		fmt.Printf("  went OOM at %.1fs\n", result.TimeToOOM)
	}
}
