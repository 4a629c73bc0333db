package kinetics

import (
	"math"
	"testing"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

func valerate() *models.Medication {
	return &models.Medication{
		Name: "estradiol valerate",
		Kind: models.KindInjectable,
		Injectable: &models.InjectableParams{
			D: 2596.06, K1: 2.382, K2: 0.233, K3: 1.376,
		},
	}
}

func oral() *models.Medication {
	return &models.Medication{
		Name: "oral estradiol",
		Kind: models.KindNonInjectable,
		NonInjectable: &models.NonInjectableParams{
			F: 0.05, Ka: 0.56, Ke: 0.087, Vd: 80, Route: models.RouteOral,
		},
	}
}

func timesRange(from, to, step float64) []float64 {
	var out []float64
	for t := from; t <= to; t += step {
		out = append(out, t)
	}
	return out
}

func TestInjectableSingleDoseShape(t *testing.T) {
	doses := []models.Dose{{Day: 0, AmountMg: 1, Medication: valerate()}}
	times := timesRange(0, 100, 0.25)
	points := Evaluate(doses, times, 100)

	if got := points[0].Injectable; math.Abs(got) > 1e-6 {
		t.Fatalf("expected ~0 at t=0, got %g", got)
	}

	peak := 0.0
	peakIdx := 0
	for i, p := range points {
		if p.Injectable > peak {
			peak = p.Injectable
			peakIdx = i
		}
	}
	if peak <= 0 {
		t.Fatalf("expected a positive interior peak")
	}
	if peakIdx == 0 || peakIdx == len(points)-1 {
		t.Fatalf("expected the peak to be interior, got index %d", peakIdx)
	}

	last := points[len(points)-1].Injectable
	if last > peak*1e-6 {
		t.Fatalf("expected concentration to return to ~0 by t=100, got %g (peak %g)", last, peak)
	}
}

func TestInjectableZeroOutsideWindow(t *testing.T) {
	doses := []models.Dose{{Day: 10, AmountMg: 4, Medication: valerate()}}
	points := Evaluate(doses, []float64{0, 5, 9.99, 10 + 41}, 40)
	for i, p := range points[:3] {
		if p.Injectable != 0 {
			t.Fatalf("expected 0 before administration, point %d got %g", i, p.Injectable)
		}
	}
	if got := points[3].Injectable; got != 0 {
		t.Fatalf("expected 0 after the effect window, got %g", got)
	}
}

func TestNonInjectableDecaysTowardZero(t *testing.T) {
	doses := []models.Dose{{Day: 0, AmountMg: 2, Medication: oral()}}
	points := Evaluate(doses, []float64{-1, 0.1, 1, 5, 20}, 40)

	if points[0].NonInjectable != 0 {
		t.Fatalf("expected 0 before administration, got %g", points[0].NonInjectable)
	}
	if points[1].NonInjectable <= 0 {
		t.Fatalf("expected a positive concentration shortly after the dose")
	}
	if points[4].NonInjectable >= points[2].NonInjectable {
		t.Fatalf("expected decay: c(20)=%g not below c(1)=%g", points[4].NonInjectable, points[2].NonInjectable)
	}
	if points[4].NonInjectable > points[1].NonInjectable*1e-3 {
		t.Fatalf("expected near-complete elimination by day 20, got %g", points[4].NonInjectable)
	}
}

func TestNonInjectableLimitingForm(t *testing.T) {
	med := oral()
	med.NonInjectable.Ke = med.NonInjectable.Ka // exact collision
	doses := []models.Dose{{Day: 0, AmountMg: 2, Medication: med}}
	points := Evaluate(doses, timesRange(0, 10, 0.5), 40)
	for _, p := range points {
		if math.IsNaN(p.NonInjectable) || math.IsInf(p.NonInjectable, 0) {
			t.Fatalf("limiting form produced a non-finite value at t=%g", p.Day)
		}
		if p.NonInjectable < 0 {
			t.Fatalf("negative concentration at t=%g", p.Day)
		}
	}
}

func TestInjectableCollidingRatesAbsorbed(t *testing.T) {
	med := valerate()
	med.Injectable.K3 = med.Injectable.K1
	doses := []models.Dose{{Day: 0, AmountMg: 4, Medication: med}}
	points := Evaluate(doses, timesRange(0, 20, 1), 40)
	for _, p := range points {
		if math.IsNaN(p.Injectable) || math.IsInf(p.Injectable, 0) {
			t.Fatalf("colliding rates produced a non-finite value at t=%g", p.Day)
		}
		if p.Injectable != 0 {
			t.Fatalf("colliding rates should contribute zero, got %g at t=%g", p.Injectable, p.Day)
		}
	}
}

func TestEvaluateSumsAndClassSplit(t *testing.T) {
	inj := valerate()
	po := oral()
	single := Evaluate([]models.Dose{{Day: 0, AmountMg: 1, Medication: inj}}, []float64{2}, 40)
	double := Evaluate([]models.Dose{
		{Day: 0, AmountMg: 1, Medication: inj},
		{Day: 0, AmountMg: 1, Medication: inj},
	}, []float64{2}, 40)
	if math.Abs(double[0].Injectable-2*single[0].Injectable) > 1e-9 {
		t.Fatalf("expected dose contributions to sum: %g vs 2*%g", double[0].Injectable, single[0].Injectable)
	}

	mixed := Evaluate([]models.Dose{
		{Day: 0, AmountMg: 1, Medication: inj},
		{Day: 0, AmountMg: 2, Medication: po},
	}, []float64{1}, 40)
	if mixed[0].Injectable <= 0 || mixed[0].NonInjectable <= 0 {
		t.Fatalf("expected both classes populated, got %+v", mixed[0])
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	doses := []models.Dose{
		{Day: 0, AmountMg: 3, Medication: valerate()},
		{Day: 4, AmountMg: 2, Medication: oral()},
	}
	times := timesRange(0, 28, 0.25)
	a := Evaluate(doses, times, 40)
	b := Evaluate(doses, times, 40)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical output for identical input at index %d", i)
		}
	}
}

func TestEvaluateNonNegative(t *testing.T) {
	doses := []models.Dose{
		{Day: 0, AmountMg: 0.1, Medication: valerate()},
		{Day: 3, AmountMg: 8, Medication: oral()},
		{Day: 14, AmountMg: 6, Medication: valerate()},
	}
	for _, p := range Evaluate(doses, timesRange(-5, 60, 0.1), 40) {
		if p.Injectable < 0 || p.NonInjectable < 0 {
			t.Fatalf("negative concentration at t=%g: %+v", p.Day, p)
		}
	}
}
