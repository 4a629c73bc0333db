package improvement

import "testing"

func trackerConfig() Config {
	cfg := DefaultConfig(28)
	cfg.InitialMultiplier = 4
	cfg.MultiplierFloor = 1
	cfg.RefinementTrigger = 2
	cfg.NoImprovementLimit = 3
	cfg.MinImprovement = 1e-4
	return cfg
}

func TestTrackerImprovementResetsCounters(t *testing.T) {
	tr := newConvergenceTracker(trackerConfig())

	if done, _ := tr.observe(0); done {
		t.Fatalf("should not converge after a single stall")
	}
	if tr.noImprovement != 1 || tr.sinceRefinement != 1 {
		t.Fatalf("expected counters 1/1, got %d/%d", tr.noImprovement, tr.sinceRefinement)
	}

	if done, _ := tr.observe(1.0); done {
		t.Fatalf("improvement must not converge")
	}
	if tr.noImprovement != 0 || tr.sinceRefinement != 0 {
		t.Fatalf("improvement should reset counters, got %d/%d", tr.noImprovement, tr.sinceRefinement)
	}
}

func TestTrackerRefinesBeforeConverging(t *testing.T) {
	tr := newConvergenceTracker(trackerConfig())

	// Two stalls at multiplier 4 halve it to 2 and reset counters.
	tr.observe(0)
	if done, _ := tr.observe(0); done {
		t.Fatalf("must refine granularity, not converge")
	}
	if tr.multiplier != 2 {
		t.Fatalf("expected multiplier 2 after first refinement, got %g", tr.multiplier)
	}
	if tr.noImprovement != 0 {
		t.Fatalf("refinement should reset the no-improvement counter")
	}

	// Two more stalls reach the floor.
	tr.observe(0)
	tr.observe(0)
	if tr.multiplier != 1 {
		t.Fatalf("expected multiplier at floor, got %g", tr.multiplier)
	}

	// At the floor, only the no-improvement limit terminates.
	tr.observe(0)
	tr.observe(0)
	done, reason := tr.observe(0)
	if !done {
		t.Fatalf("expected convergence after %d stalls at the floor", tr.cfg.NoImprovementLimit)
	}
	if reason == "" {
		t.Fatalf("expected a convergence reason")
	}
}

func TestTrackerTinyImprovementCountsAsStall(t *testing.T) {
	tr := newConvergenceTracker(trackerConfig())
	tr.observe(1e-6) // below MinImprovement
	if tr.noImprovement != 1 {
		t.Fatalf("sub-threshold improvement should count as a stall")
	}
}

func TestTrackerPercentMonotoneAcrossRefinements(t *testing.T) {
	tr := newConvergenceTracker(trackerConfig())
	prev := tr.percent()
	for i := 0; i < 12; i++ {
		done, _ := tr.observe(0)
		p := tr.percent()
		if p < 0 || p > 100 {
			t.Fatalf("percent out of range: %g", p)
		}
		if p+1e-9 < prev {
			t.Fatalf("percent regressed from %g to %g", prev, p)
		}
		prev = p
		if done {
			return
		}
	}
	t.Fatalf("tracker never converged under constant stalls")
}

func TestRefinementLevels(t *testing.T) {
	if got := refinementLevels(8, 1); got != 3 {
		t.Fatalf("expected 3 levels from 8 to 1, got %d", got)
	}
	if got := refinementLevels(1, 1); got != 0 {
		t.Fatalf("expected 0 levels, got %d", got)
	}
}
