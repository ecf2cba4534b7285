package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"wotlk-cat-sim/internal/character"
	"wotlk-cat-sim/internal/config"
	"wotlk-cat-sim/internal/engine"
	"wotlk-cat-sim/internal/gear"
)

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	replicates := flag.Int("replicates", 20000, "Number of fight replicates")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = num CPU)")
	seedBase := flag.Int64("seed-base", 0, "Base RNG seed (0 = current time)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := gear.Validate(&cfg.Gear); err != nil {
		log.Fatalf("Invalid gear config: %v", err)
	}

	numWorkers := *workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	baseSeed := *seedBase
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	fmt.Println("WotLK Feral Cat Simulator")
	fmt.Println("=========================")
	fmt.Printf("Fight length: %.0fs, replicates: %d, workers: %d, seed: %d\n\n",
		cfg.Encounter.FightLength, *replicates, numWorkers, baseSeed)

	start := time.Now()
	summary := engine.RunReplicates(cfg, *replicates, numWorkers, baseSeed)
	elapsed := time.Since(start)

	fmt.Printf("Mean DPS: %.2f +/- %.2f\n\n", summary.MeanDPS, summary.StdDPS)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Ability\tCasts/fight\tDPS\tShare\n")
	for _, name := range character.AbilityOrder {
		mean, ok := summary.MeanBreakdown[name]
		if !ok || (mean.CastsPerFight == 0 && mean.DPS == 0) {
			continue
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.2f\t%.1f%%\n",
			name, mean.CastsPerFight, mean.DPS, 100*mean.DPS/summary.MeanDPS)
	}
	w.Flush()

	if len(summary.MeanAuraUptime) > 0 {
		fmt.Println()
		aw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(aw, "Effect\tProcs/fight\tUptime\n")
		for name, uptime := range summary.MeanAuraUptime {
			fmt.Fprintf(aw, "%s\t%.1f\t%.1f%%\n",
				name, summary.MeanAuraProcs[name], 100*uptime)
		}
		aw.Flush()
	}

	if summary.OOMFraction > 0 {
		fmt.Printf("\nWent OOM in %.1f%% of fights, mean time to OOM %.1fs\n",
			100*summary.OOMFraction, summary.MeanTimeToOOM)
	}

	fmt.Printf("\nSimulated %d fights in %s\n", summary.Replicates, elapsed.Round(time.Millisecond))
}
