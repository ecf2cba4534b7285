package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"
	"time"

	"wotlk-cat-sim/internal/config"
	"wotlk-cat-sim/internal/engine"
	"wotlk-cat-sim/internal/gear"
)

// Rating conversions at level 80.
const (
	critRatingPerPct = 45.91
	hitRatingPerPct  = 32.79
)

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	replicates := flag.Int("replicates", 20000, "Replicates per experiment")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = num CPU)")
	seedBase := flag.Int64("seed-base", 0, "Base RNG seed (0 = current time)")
	sweepLengths := flag.Bool("sweep-lengths", false, "Sweep DPS over fight length instead of computing weights")
	sweepStart := flag.Float64("start", 120, "Sweep start fight length, seconds")
	sweepStop := flag.Float64("stop", 600, "Sweep stop fight length, seconds")
	sweepStep := flag.Float64("step", 30, "Sweep step, seconds")
	outputDir := flag.String("output-dir", "output", "Directory for sweep CSV output")
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

	if *sweepLengths {
		if err := runLengthSweep(cfg, *replicates, numWorkers, baseSeed,
			*sweepStart, *sweepStop, *sweepStep, *outputDir); err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		return
	}

	fmt.Printf("Stat Weights (paired trials, shared seed %d)\n", baseSeed)
	fmt.Printf("Replicates per experiment: %d\n\n", *replicates)

	report := engine.CalcStatWeights(cfg, *replicates, numWorkers, baseSeed)

	fmt.Printf("Baseline DPS: %.2f +/- %.2f\n\n", report.BaseDPS, report.BaseStd)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Stat\tDPS/point\tStdErr\tvs 1 AP\n")
	for _, weight := range report.Weights {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\n",
			weight.Stat, weight.DPSPerPoint, weight.StdErr, weight.Normalized)
	}
	w.Flush()

	printPawnString(report)

	if len(report.ManaWeights) > 0 {
		fmt.Printf("\nMana weights (baseline OOM fraction %.1f%%)\n",
			100*report.OOMFraction)
		mw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(mw, "Stat\tIncrement\tTime-to-OOM delta\tOOM fraction\n")
		for _, weight := range report.ManaWeights {
			fmt.Fprintf(mw, "%s\t%+.0f\t%+.2fs\t%.1f%%\n",
				weight.Stat, weight.Increment, weight.TimeToOOMDelta,
				100*weight.OOMFraction)
		}
		mw.Flush()
	}
}

// printPawnString emits a Pawn import line with everything converted
// to per-rating weights normalized against one point of Attack Power.
func printPawnString(report *engine.WeightReport) {
	byStat := make(map[string]float64, len(report.Weights))
	for _, weight := range report.Weights {
		byStat[weight.Stat] = weight.Normalized
	}

	fmt.Printf("\nPawn: v1: \"Feral Cat (Sim)\": AttackPower=1, Agility=%.3f, "+
		"CritRating=%.3f, HitRating=%.3f, HasteRating=%.3f, "+
		"ArmorPenetrationRating=%.3f, WeaponDamage=%.3f\n",
		byStat["agility"],
		byStat["crit_chance"]/critRatingPerPct,
		byStat["hit_chance"]/hitRatingPerPct,
		byStat["haste_rating"],
		byStat["armor_pen_rating"],
		byStat["weapon_damage"],
	)
}

// runLengthSweep writes a CSV of mean DPS against fight length, which
// shows how cooldown alignment and OOM pressure scale with encounter
// duration.
func runLengthSweep(cfg *config.Config, replicates, workers int, baseSeed int64,
	start, stop, step float64, outputDir string) error {
	if step <= 0 {
		return fmt.Errorf("step must be > 0 (got %.2f)", step)
	}
	if stop <= start {
		return fmt.Errorf("stop must be > start (start=%.2f, stop=%.2f)", start, stop)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	outPath := filepath.Join(outputDir, "fight_lengths.csv")
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"fight_length", "dps", "dps_std", "oom_fraction"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	points := 0
	for length := start; length <= stop+1e-9; length += step {
		modified := *cfg
		modified.Encounter.FightLength = length
		summary := engine.RunReplicates(&modified, replicates, workers, baseSeed)

		record := []string{
			fmt.Sprintf("%.1f", length),
			fmt.Sprintf("%.2f", summary.MeanDPS),
			fmt.Sprintf("%.2f", summary.StdDPS),
			fmt.Sprintf("%.4f", summary.OOMFraction),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		points++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	fmt.Printf("Sweep complete: %d points, output=%s\n", points, outPath)
	return nil
}
