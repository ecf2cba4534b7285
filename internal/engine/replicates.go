package engine

import (
	"math"
	"sync"

	"wotlk-cat-sim/internal/config"
)

// AbilityAverage holds per-ability casts and damage contribution
// averaged over replicates.
type AbilityAverage struct {
	CastsPerFight float64
	DPS           float64
}

// Summary aggregates the results of a batch of replicates.
type Summary struct {
	Replicates int

	MeanDPS float64
	StdDPS  float64

	MeanBreakdown map[string]AbilityAverage

	// MeanAuraUptime and MeanAuraProcs are keyed by effect name.
	MeanAuraUptime map[string]float64
	MeanAuraProcs  map[string]float64

	// OOMFraction is the fraction of replicates that ran out of mana,
	// and MeanTimeToOOM the average time at which they did.
	OOMFraction   float64
	MeanTimeToOOM float64
}

// runTrial simulates a single fight. A panicking trial yields nil so
// that one bad replicate never takes down the whole batch or corrupts
// the running aggregate.
func runTrial(cfg *config.Config, seed int64) (result *TrialResult) {
	defer func() {
		if recover() != nil {
			result = nil
		}
	}()
	sim := NewSimulation(cfg, seed)
	return sim.Run()
}

// RunReplicates simulates n independent fights across the given number
// of workers and aggregates their results. Trial t always uses seed
// baseSeed+t, so results are identical for any worker count.
func RunReplicates(cfg *config.Config, n, workers int, baseSeed int64) *Summary {
	if workers < 1 {
		workers = 1
	}

	results := make(chan *TrialResult, workers)
	trials := make(chan int64)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range trials {
				if result := runTrial(cfg, baseSeed+t); result != nil {
					results <- result
				}
			}
		}()
	}

	go func() {
		for t := int64(0); t < int64(n); t++ {
			trials <- t
		}
		close(trials)
		wg.Wait()
		close(results)
	}()

	return aggregate(results)
}

// aggregate folds trial records into running means as they arrive.
func aggregate(results <-chan *TrialResult) *Summary {
	summary := &Summary{
		MeanBreakdown:  make(map[string]AbilityAverage),
		MeanAuraUptime: make(map[string]float64),
		MeanAuraProcs:  make(map[string]float64),
	}

	var sumSq float64
	oomCount := 0
	sumTimeToOOM := 0.0

	i := 0
	for result := range results {
		fi := float64(i)
		summary.MeanDPS = (summary.MeanDPS*fi + result.DPS) / (fi + 1)
		sumSq += result.DPS * result.DPS

		for name, stats := range result.Breakdown {
			mean := summary.MeanBreakdown[name]
			mean.CastsPerFight = (mean.CastsPerFight*fi + float64(stats.Casts)) /
				(fi + 1)
			mean.DPS = (mean.DPS*fi + stats.Damage/result.FightLength) / (fi + 1)
			summary.MeanBreakdown[name] = mean
		}
		for _, aura := range result.Auras {
			summary.MeanAuraUptime[aura.Name] =
				(summary.MeanAuraUptime[aura.Name]*fi + aura.Uptime) / (fi + 1)
			summary.MeanAuraProcs[aura.Name] =
				(summary.MeanAuraProcs[aura.Name]*fi + float64(aura.Procs)) /
					(fi + 1)
		}

		if result.WentOOM {
			oomCount++
			sumTimeToOOM += result.TimeToOOM
		}
		i++
	}

	summary.Replicates = i
	if i > 0 {
		summary.StdDPS = math.Sqrt(
			sumSq/float64(i) - summary.MeanDPS*summary.MeanDPS,
		)
		summary.OOMFraction = float64(oomCount) / float64(i)
	}
	if oomCount > 0 {
		summary.MeanTimeToOOM = sumTimeToOOM / float64(oomCount)
	}
	return summary
}
