package engine

import (
	"math"
	"sync"

	"wotlk-cat-sim/internal/combat"
	"wotlk-cat-sim/internal/config"
)

// StatWeight is the estimated marginal DPS value of one stat point.
type StatWeight struct {
	Stat string

	// DPSPerPoint is the finite-difference derivative of mean DPS with
	// respect to one point of the stat.
	DPSPerPoint float64

	// Normalized is the weight relative to one point of Attack Power.
	Normalized float64

	// StdErr is the standard error of DPSPerPoint from the paired
	// per-trial differences.
	StdErr float64
}

// ManaWeight is the marginal time-to-OOM value of one point of a
// regen stat, reported only when the baseline runs dry.
type ManaWeight struct {
	Stat           string
	Increment      float64
	TimeToOOMDelta float64
	OOMFraction    float64
}

// WeightReport holds a full stat weight analysis.
type WeightReport struct {
	BaseDPS     float64
	BaseStd     float64
	Replicates  int
	Weights     []StatWeight
	OOMFraction float64
	ManaWeights []ManaWeight
}

// statPerturbation describes one finite-difference experiment: a
// config mutation and the per-point increment it represents.
type statPerturbation struct {
	name      string
	increment float64
	apply     func(cfg *config.Config)
}

// perturbations builds the standard experiment set. Increments are
// sized large enough to resolve the derivative against trial noise
// while staying in the linear regime.
func perturbations(base *config.Config) []statPerturbation {
	apMod := base.Player.Stats.APMod
	hitIncrement := 0.02
	hitSign := 1.0
	if base.Player.Stats.HitChance+hitIncrement > 0.08 {
		// Already at or near the hit cap, step downward instead.
		hitSign = -1.0
	}

	return []statPerturbation{
		{
			name:      "attack_power",
			increment: 80,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.AttackPower += 80 * apMod
			},
		},
		{
			name:      "agility",
			increment: 40,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.Agility += 40
				cfg.Player.Stats.AttackPower += 40 * apMod
				cfg.Player.Stats.CritChance += 40.0 / 40.0 / 100.0
			},
		},
		{
			name:      "crit_chance",
			increment: 2, // percent
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.CritChance += 0.02
			},
		},
		{
			name:      "hit_chance",
			increment: 2 * hitSign, // percent
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.HitChance += 0.02 * hitSign
			},
		},
		{
			name:      "haste_rating",
			increment: 63.08,
			apply: func(cfg *config.Config) {
				// Cat swings run on the normalized 1.0s form speed.
				rating := combat.HasteRatingForSpeed(
					cfg.Player.SwingTimer, 1.0,
					cfg.Encounter.HasteMultiplier,
				)
				cfg.Player.SwingTimer = combat.SwingTimer(
					1.0, rating+63.08,
					cfg.Encounter.HasteMultiplier,
				)
			},
		},
		{
			name:      "armor_pen_rating",
			increment: 50,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.ArmorPenRating += 50
			},
		},
		{
			name:      "weapon_damage",
			increment: 12,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.BonusDamage += 12
			},
		},
	}
}

// manaPerturbations covers the regen stats when the encounter drains
// mana.
func manaPerturbations() []statPerturbation {
	return []statPerturbation{
		{
			name:      "intellect",
			increment: 15,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.Intellect += 15
				cfg.Player.Stats.ManaPool += 15 * 15
			},
		},
		{
			name:      "spirit",
			increment: 30,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.Spirit += 30
			},
		},
		{
			name:      "mp5",
			increment: 10,
			apply: func(cfg *config.Config) {
				cfg.Player.Stats.MP5 += 10
			},
		},
	}
}

// CalcStatWeights runs paired finite-difference experiments: the
// baseline and every perturbed variant reuse the same per-trial seeds,
// so the per-trial DPS differences isolate the stat's effect from the
// shared random stream.
func CalcStatWeights(cfg *config.Config, n, workers int, baseSeed int64) *WeightReport {
	baseDPS, baseOOM := runTrialArrays(cfg, n, workers, baseSeed)

	report := &WeightReport{Replicates: n}
	report.BaseDPS, report.BaseStd = meanStd(baseDPS)

	oomCount := 0
	for _, t := range baseOOM {
		if t >= 0 {
			oomCount++
		}
	}
	report.OOMFraction = float64(oomCount) / float64(n)

	var apWeight float64
	for _, pert := range perturbations(cfg) {
		modified := *cfg
		pert.apply(&modified)

		modDPS, _ := runTrialArrays(&modified, n, workers, baseSeed)

		diffs := make([]float64, n)
		for i := range diffs {
			diffs[i] = modDPS[i] - baseDPS[i]
		}
		meanDiff, stdDiff := meanStd(diffs)

		weight := StatWeight{
			Stat:        pert.name,
			DPSPerPoint: meanDiff / pert.increment,
			StdErr: stdDiff / math.Sqrt(float64(n)) /
				math.Abs(pert.increment),
		}
		if pert.name == "attack_power" {
			apWeight = weight.DPSPerPoint
		}
		report.Weights = append(report.Weights, weight)
	}

	if apWeight != 0 {
		for i := range report.Weights {
			report.Weights[i].Normalized = report.Weights[i].DPSPerPoint / apWeight
		}
	}

	if oomCount > 0 {
		baseMean := meanOOMTime(baseOOM, cfg.Encounter.FightLength)
		for _, pert := range manaPerturbations() {
			modified := *cfg
			pert.apply(&modified)
			_, modOOM := runTrialArrays(&modified, n, workers, baseSeed)

			modCount := 0
			for _, t := range modOOM {
				if t >= 0 {
					modCount++
				}
			}
			report.ManaWeights = append(report.ManaWeights, ManaWeight{
				Stat:      pert.name,
				Increment: pert.increment,
				TimeToOOMDelta: meanOOMTime(modOOM, cfg.Encounter.FightLength) -
					baseMean,
				OOMFraction: float64(modCount) / float64(n),
			})
		}
	}

	return report
}

// runTrialArrays runs n trials and returns per-trial DPS indexed by
// trial number, plus per-trial time-to-OOM (-1 when the trial never
// ran dry). Index order is fixed by seed, not completion order, so
// paired experiments line up trial for trial.
func runTrialArrays(cfg *config.Config, n, workers int, baseSeed int64) (dps, oom []float64) {
	if workers < 1 {
		workers = 1
	}
	dps = make([]float64, n)
	oom = make([]float64, n)

	trials := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range trials {
				result := runTrial(cfg, baseSeed+int64(t))
				if result == nil {
					dps[t] = math.NaN()
					oom[t] = -1
					continue
				}
				dps[t] = result.DPS
				if result.WentOOM {
					oom[t] = result.TimeToOOM
				} else {
					oom[t] = -1
				}
			}
		}()
	}
	for t := 0; t < n; t++ {
		trials <- t
	}
	close(trials)
	wg.Wait()
	return dps, oom
}

// meanStd ignores NaN entries, which mark trials that faulted.
func meanStd(xs []float64) (mean, std float64) {
	n := 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			mean += x
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean /= float64(n)
	for _, x := range xs {
		if !math.IsNaN(x) {
			std += (x - mean) * (x - mean)
		}
	}
	std = math.Sqrt(std / float64(n))
	return mean, std
}

// meanOOMTime averages time-to-OOM treating trials that never ran dry
// as lasting the full fight.
func meanOOMTime(oom []float64, fightLength float64) float64 {
	sum := 0.0
	for _, t := range oom {
		if t < 0 {
			sum += fightLength
		} else {
			sum += t
		}
	}
	return sum / float64(len(oom))
}
