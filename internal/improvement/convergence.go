package improvement

import (
	"fmt"
	"math"
)

// convergenceTracker drives the coarse-to-fine convergence state machine.
// Stalled iterations (improvement below MinImprovement) first trigger
// granularity refinement: once sinceRefinement reaches RefinementTrigger
// and the multiplier is above its floor, the multiplier is halved and both
// counters reset. Only when the multiplier is already at the floor can the
// no-improvement counter reach its limit and end the run.
type convergenceTracker struct {
	cfg             Config
	multiplier      float64
	noImprovement   int
	sinceRefinement int
}

func newConvergenceTracker(cfg Config) *convergenceTracker {
	m := cfg.InitialMultiplier
	if m < cfg.MultiplierFloor {
		m = cfg.MultiplierFloor
	}
	return &convergenceTracker{cfg: cfg, multiplier: m}
}

// observe records one iteration's score improvement and reports whether
// the run has converged, with a human-readable reason.
func (t *convergenceTracker) observe(improvement float64) (converged bool, reason string) {
	if improvement >= t.cfg.MinImprovement {
		t.noImprovement = 0
		t.sinceRefinement = 0
		return false, ""
	}

	t.noImprovement++
	t.sinceRefinement++

	if t.sinceRefinement >= t.cfg.RefinementTrigger && t.multiplier > t.cfg.MultiplierFloor {
		t.multiplier /= 2
		if t.multiplier < t.cfg.MultiplierFloor {
			t.multiplier = t.cfg.MultiplierFloor
		}
		t.noImprovement = 0
		t.sinceRefinement = 0
		return false, ""
	}

	if t.multiplier <= t.cfg.MultiplierFloor && t.noImprovement >= t.cfg.NoImprovementLimit {
		return true, fmt.Sprintf("no improvement for %d iterations at minimum granularity", t.noImprovement)
	}
	return false, ""
}

// percent estimates run progress from refinement depth plus the stall
// fraction at the current depth. It is a UI signal, not a guarantee.
func (t *convergenceTracker) percent() float64 {
	totalLevels := refinementLevels(t.cfg.InitialMultiplier, t.cfg.MultiplierFloor)
	doneLevels := refinementLevels(t.cfg.InitialMultiplier, t.multiplier)

	var stallFraction float64
	if t.multiplier <= t.cfg.MultiplierFloor && t.cfg.NoImprovementLimit > 0 {
		stallFraction = math.Min(1, float64(t.noImprovement)/float64(t.cfg.NoImprovementLimit))
	} else if t.cfg.RefinementTrigger > 0 {
		stallFraction = math.Min(1, float64(t.sinceRefinement)/float64(t.cfg.RefinementTrigger))
	}

	p := (float64(doneLevels) + stallFraction) / float64(totalLevels+1) * 100
	return math.Min(100, math.Max(0, p))
}

// refinementLevels counts the halvings it takes to go from one multiplier
// down to another.
func refinementLevels(from, to float64) int {
	if to <= 0 || from <= to {
		return 0
	}
	return int(math.Round(math.Log2(from / to)))
}
