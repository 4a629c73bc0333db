package improvement

import (
	"gonum.org/v1/gonum/stat"

	"github.com/jessibug-os/EstraDial/internal/kinetics"
	"github.com/jessibug-os/EstraDial/pkg/models"
	"github.com/jessibug-os/EstraDial/pkg/utils"
)

// Evaluator scores a candidate schedule against a reference cycle. Lower
// scores are better. The score is the mean squared relative error of the
// modeled concentrations plus additive simplicity penalties; unconstrained
// error minimization drifts toward maximal dose granularity and variety,
// and the penalties bias the search toward simpler schedules without a
// separate constraint solver.
type Evaluator struct {
	cfg       Config
	reference []models.ReferencePoint
}

// NewEvaluator builds an evaluator over a private copy of the reference
// cycle, so concurrent runs never share reference data.
func NewEvaluator(cfg Config, reference []models.ReferencePoint) *Evaluator {
	ref := make([]models.ReferencePoint, len(reference))
	copy(ref, reference)
	return &Evaluator{cfg: cfg, reference: ref}
}

// Score computes the multi-objective score of a schedule.
func (e *Evaluator) Score(doses models.Schedule) float64 {
	score := e.meanSquaredError(doses)
	score += e.cfg.InjectionCountWeight * float64(doses.InjectableCount())
	score += e.cfg.DistinctAmountWeight * float64(distinctRoundedAmounts(doses))
	score += e.cfg.DistinctMedicationWeight * float64(distinctMedications(doses))
	return score
}

// meanSquaredError samples the model at several sub-day offsets per
// reference day within [0, ScheduleDays) and averages the squared relative
// error per class. When both classes have reference data the class means
// are averaged; otherwise the single populated class stands alone. A zero
// target is replaced by 1 to avoid division by zero.
func (e *Evaluator) meanSquaredError(doses models.Schedule) float64 {
	evaluated := doses
	if e.cfg.SteadyState {
		evaluated = e.withPreCycles(doses)
	}

	offsets := e.cfg.SubDayOffsets
	if len(offsets) == 0 {
		offsets = []float64{0}
	}

	var times []float64
	var refs []models.ReferencePoint
	for _, rp := range e.reference {
		if rp.Day < 0 || rp.Day >= e.cfg.ScheduleDays {
			continue
		}
		for _, off := range offsets {
			times = append(times, float64(rp.Day)+off)
			refs = append(refs, rp)
		}
	}
	if len(times) == 0 {
		return 0
	}

	points := kinetics.Evaluate(evaluated, times, e.cfg.EffectDurationDays)

	var injErrs, nonInjErrs []float64
	for i, p := range points {
		injErrs = append(injErrs, squaredRelativeError(p.Injectable, refs[i].Injectable))
		if refs[i].NonInjectable != nil {
			nonInjErrs = append(nonInjErrs, squaredRelativeError(p.NonInjectable, *refs[i].NonInjectable))
		}
	}

	injMSE := stat.Mean(injErrs, nil)
	if len(nonInjErrs) == 0 {
		return injMSE
	}
	return (injMSE + stat.Mean(nonInjErrs, nil)) / 2
}

// withPreCycles prepends copies of the schedule at negative day offsets,
// one per configured pre-cycle, so steady-state evaluation sees residual
// concentration from hypothetical prior cycles.
func (e *Evaluator) withPreCycles(doses models.Schedule) models.Schedule {
	out := make(models.Schedule, 0, len(doses)*(e.cfg.PreCycles+1))
	for cycle := e.cfg.PreCycles; cycle >= 1; cycle-- {
		for _, d := range doses {
			shifted := d
			shifted.Day = d.Day - cycle*e.cfg.ScheduleDays
			out = append(out, shifted)
		}
	}
	return append(out, doses...)
}

func squaredRelativeError(generated, target float64) float64 {
	if target == 0 {
		target = 1
	}
	rel := (generated - target) / target
	return rel * rel
}

// distinctRoundedAmounts counts distinct dose amounts after rounding to
// 0.01 mg, the finest amount the search itself can produce.
func distinctRoundedAmounts(doses models.Schedule) int {
	seen := make(map[float64]bool, len(doses))
	for _, d := range doses {
		seen[utils.Round(d.AmountMg, 2)] = true
	}
	return len(seen)
}

func distinctMedications(doses models.Schedule) int {
	seen := make(map[string]bool, len(doses))
	for _, d := range doses {
		seen[d.Medication.Name] = true
	}
	return len(seen)
}
