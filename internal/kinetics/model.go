// Package kinetics implements the closed-form concentration model: a pure
// mapping from a set of timed doses to per-class concentration values over
// arbitrary sample times. Injectable depot esters follow a three-exponential
// absorption/distribution/elimination curve; non-injectable forms follow a
// one-compartment first-order absorption curve. Both are deterministic and
// safe to evaluate concurrently on disjoint inputs.
package kinetics

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

// rateTolerance is the relative tolerance at which two rate constants are
// treated as colliding. The closed forms are singular at exact equality.
const rateTolerance = 1e-9

func ratesCollide(a, b float64) bool {
	return scalar.EqualWithinRel(a, b, rateTolerance)
}

// Evaluate sums the contribution of every dose at every sample time and
// returns one ConcentrationPoint per time. effectDuration bounds the active
// window of injectable doses, in days. Negative sums are clamped to zero.
func Evaluate(doses []models.Dose, times []float64, effectDuration float64) []models.ConcentrationPoint {
	points := make([]models.ConcentrationPoint, len(times))
	for i, t := range times {
		var injectable, nonInjectable float64
		for _, d := range doses {
			elapsed := t - float64(d.Day)
			switch d.Medication.Kind {
			case models.KindInjectable:
				injectable += injectableAt(d.Medication.Injectable, d.AmountMg, elapsed, effectDuration)
			case models.KindNonInjectable:
				nonInjectable += nonInjectableAt(d.Medication.NonInjectable, d.AmountMg, elapsed)
			}
		}
		points[i] = models.ConcentrationPoint{
			Day:           t,
			Injectable:    math.Max(0, injectable),
			NonInjectable: math.Max(0, nonInjectable),
		}
	}
	return points
}

// injectableAt evaluates the three-exponential depot curve for a single
// dose. elapsed is in days relative to the administration day. Outside
// [0, effectDuration] the contribution is zero. Colliding rate constants
// make the partial-fraction form singular; such a dose contributes zero
// rather than NaN.
func injectableAt(p *models.InjectableParams, amountMg, elapsed, effectDuration float64) float64 {
	if elapsed < 0 || elapsed > effectDuration {
		return 0
	}
	if ratesCollide(p.K1, p.K2) || ratesCollide(p.K2, p.K3) || ratesCollide(p.K1, p.K3) {
		return 0
	}
	scale := amountMg * p.D / 5 * p.K1 * p.K2
	term1 := math.Exp(-p.K1*elapsed) / ((p.K2 - p.K1) * (p.K3 - p.K1))
	term2 := math.Exp(-p.K2*elapsed) / ((p.K1 - p.K2) * (p.K3 - p.K2))
	term3 := math.Exp(-p.K3*elapsed) / ((p.K1 - p.K3) * (p.K2 - p.K3))
	return scale * (term1 + term2 + term3)
}

// nonInjectableAt evaluates the one-compartment absorption curve for a
// single dose. elapsed is in days; the rate constants are per hour. When
// ka and ke collide the limiting form is used instead of the singular
// difference quotient.
func nonInjectableAt(p *models.NonInjectableParams, amountMg, elapsed float64) float64 {
	if elapsed < 0 {
		return 0
	}
	hours := elapsed * 24
	if ratesCollide(p.Ka, p.Ke) {
		return amountMg * p.F * p.Ka * hours / p.Vd * math.Exp(-p.Ke*hours)
	}
	return p.F * amountMg * p.Ka / (p.Vd * (p.Ka - p.Ke)) *
		(math.Exp(-p.Ke*hours) - math.Exp(-p.Ka*hours))
}
