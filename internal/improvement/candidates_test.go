package improvement

import (
	"testing"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

func TestCandidateDaysSingle(t *testing.T) {
	days := candidateDays(7, 1)
	if len(days) != 1 || days[0] != 0 {
		t.Fatalf("single candidate must land on day 0, got %v", days)
	}
}

func TestCandidateDaysEvenSpacing(t *testing.T) {
	days := candidateDays(28, 4)
	want := []int{0, 7, 14, 21}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %v", len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("expected days %v, got %v", want, days)
		}
	}
}

func TestCandidateDaysNeverDuplicate(t *testing.T) {
	days := candidateDays(5, 5)
	seen := make(map[int]bool)
	for _, d := range days {
		if seen[d] {
			t.Fatalf("duplicate candidate day %d in %v", d, days)
		}
		seen[d] = true
		if d < 0 || d >= 5 {
			t.Fatalf("candidate day %d out of cycle", d)
		}
	}
}

func TestNearestAllowed(t *testing.T) {
	allowed := []float64{1, 2, 4, 8}
	if got := nearestAllowed(3.4, allowed); got != 4 {
		t.Fatalf("expected 4, got %g", got)
	}
	if got := nearestAllowed(0.2, allowed); got != 1 {
		t.Fatalf("expected 1, got %g", got)
	}
	if got := nearestAllowed(5, nil); got != 5 {
		t.Fatalf("empty allowed set should pass through, got %g", got)
	}
}

func TestStartingAmount(t *testing.T) {
	cfg := DefaultConfig(28)
	cfg.DefaultInjectionMg = 4
	cfg.AllowedAmountsMg = []float64{1, 2, 8}

	if got := cfg.startingAmount(testValerate()); got != 4 {
		t.Fatalf("expected injectable start 4, got %g", got)
	}
	// Non-injectable starts snap to the allowed discrete set.
	if got := cfg.startingAmount(testOral()); got != 2 {
		t.Fatalf("expected non-injectable start snapped to 2, got %g", got)
	}
}

func TestPreferredMedication(t *testing.T) {
	po := testOral()
	inj := testValerate()
	if got := preferredMedication([]*models.Medication{po, inj}); got != inj {
		t.Fatalf("expected the injectable to be preferred")
	}
	if got := preferredMedication([]*models.Medication{po}); got != po {
		t.Fatalf("expected the only medication to be chosen")
	}
}

func TestConcentrationFactorLookup(t *testing.T) {
	cfg := DefaultConfig(28)
	cfg.DefaultConcentrationFactor = 20
	cfg.ConcentrationFactors = map[string]float64{"estradiol valerate": 40}

	if got := cfg.concentrationFactor("estradiol valerate"); got != 40 {
		t.Fatalf("expected configured factor 40, got %g", got)
	}
	if got := cfg.concentrationFactor("unknown"); got != 20 {
		t.Fatalf("expected default factor 20, got %g", got)
	}
}
