// Package improvement implements the dose-schedule optimizer: a greedy
// local search over mixed discrete/continuous decision variables (amounts,
// medication identity, timing) driven by the concentration model and the
// multi-objective evaluator. Each iteration applies four ordered mutation
// phases with first-improvement acceptance, and an adaptive granularity
// multiplier moves the search from coarse to fine steps as it stalls.
package improvement

import (
	"context"
	"errors"
	"sync"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

// ErrNoMedications is returned when an optimizer is constructed without
// any available medication. This is the only fatal configuration error;
// everything else degrades to a usable schedule.
var ErrNoMedications = errors.New("at least one available medication is required")

// ProgressFunc observes a run between iterations. percent is a rough
// completion estimate in [0, 100]. It is also the cooperative cancellation
// checkpoint: context cancellation is only noticed between iterations.
type ProgressFunc func(percent float64, score float64, iteration int)

// Result is the outcome of one optimization run. Doses is the best-score
// snapshot observed across the entire run, which is not necessarily the
// final working copy: the greedy phases can regress past the best point.
type Result struct {
	Doses      models.Schedule
	Score      float64
	Iterations int
	// Converged is false when the run ended on the iteration ceiling or
	// on cancellation rather than on the convergence criteria.
	Converged bool
	Reason    string
}

// Optimizer owns the state of a single run. It is not safe for concurrent
// Optimize calls; run independent Optimizers in parallel instead.
type Optimizer struct {
	cfg         Config
	medications []*models.Medication
	evaluator   *Evaluator
	progress    ProgressFunc

	mu        sync.RWMutex
	bestScore float64
	bestDoses models.Schedule
	iteration int
}

// NewOptimizer builds a run over the given medications and reference
// cycle. The reference is copied; the medications are treated as immutable.
func NewOptimizer(cfg Config, medications []*models.Medication, reference []models.ReferencePoint) (*Optimizer, error) {
	if len(medications) == 0 {
		return nil, ErrNoMedications
	}
	return &Optimizer{
		cfg:         cfg,
		medications: medications,
		evaluator:   NewEvaluator(cfg, reference),
	}, nil
}

// WithProgressReporter sets the per-iteration progress callback.
func (o *Optimizer) WithProgressReporter(fn ProgressFunc) *Optimizer {
	o.progress = fn
	return o
}

// BestScore returns the best score observed so far. Safe to call while
// Optimize runs on another goroutine.
func (o *Optimizer) BestScore() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bestScore
}

// Iteration returns the current iteration number.
func (o *Optimizer) Iteration() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.iteration
}

// Optimize runs the search to convergence, the iteration ceiling, or
// cancellation. On cancellation it returns the best schedule found so far
// rather than an error.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	working := o.initialSchedule()
	score := o.evaluator.Score(working)
	o.snapshot(working, score, 0)

	tracker := newConvergenceTracker(o.cfg)

	for iteration := 1; iteration <= o.cfg.MaxIterations; iteration++ {
		select {
		case <-ctx.Done():
			return o.buildResult(false, "cancelled"), nil
		default:
		}

		o.mu.Lock()
		o.iteration = iteration
		o.mu.Unlock()

		prev := score
		score = o.prunePhase(&working, score)
		score = o.adjustPhase(&working, score, tracker.multiplier)
		score = o.switchPhase(&working, score)
		score = o.additionPhase(&working, score)

		if score < o.BestScore() {
			o.snapshot(working, score, iteration)
		}

		converged, reason := tracker.observe(prev - score)
		if o.progress != nil {
			o.progress(tracker.percent(), score, iteration)
		}
		if converged {
			return o.buildResult(true, reason), nil
		}
	}

	return o.buildResult(false, "iteration ceiling reached"), nil
}

// initialSchedule seeds evenly spaced candidate days with the preferred
// medication at its starting amount.
func (o *Optimizer) initialSchedule() models.Schedule {
	med := preferredMedication(o.medications)
	count := o.cfg.MaxInjections
	if med.Kind != models.KindInjectable || count < 1 {
		count = 1
	}
	days := candidateDays(o.cfg.ScheduleDays, count)
	working := make(models.Schedule, 0, len(days))
	for _, day := range days {
		working = append(working, models.Dose{
			Day:        day,
			AmountMg:   o.cfg.startingAmount(med),
			Medication: med,
		})
	}
	return working
}

// prunePhase enforces the injectable cap: while the working copy exceeds
// it, the single removal with the best resulting score is applied, at most
// one removal per iteration.
func (o *Optimizer) prunePhase(working *models.Schedule, score float64) float64 {
	if working.InjectableCount() <= o.cfg.MaxInjections {
		return score
	}

	bestIdx := -1
	bestScore := 0.0
	for i, d := range *working {
		if d.Medication.Kind != models.KindInjectable {
			continue
		}
		candidate := removeAt(*working, i)
		s := o.evaluator.Score(candidate)
		if bestIdx < 0 || s < bestScore {
			bestIdx = i
			bestScore = s
		}
	}
	if bestIdx < 0 {
		return score
	}
	*working = removeAt(*working, bestIdx)
	return bestScore
}

// adjustPhase searches nearby amounts for every dose. Non-injectable doses
// try every other allowed discrete amount; injectable doses try a bounded
// number of volume increments in each direction, stepping by the configured
// granularity times the current multiplier and stopping once outside the
// [min, max] amount range. The best amount found per dose is kept.
func (o *Optimizer) adjustPhase(working *models.Schedule, score float64, multiplier float64) float64 {
	for i := range *working {
		dose := (*working)[i]
		bestAmount := dose.AmountMg
		bestScore := score

		try := func(amount float64) {
			(*working)[i].AmountMg = amount
			if s := o.evaluator.Score(*working); s < bestScore {
				bestScore = s
				bestAmount = amount
			}
		}

		if dose.Medication.Kind == models.KindNonInjectable {
			for _, amount := range o.cfg.AllowedAmountsMg {
				if amount != dose.AmountMg {
					try(amount)
				}
			}
		} else {
			factor := o.cfg.concentrationFactor(dose.Medication.Name)
			stepMg := o.cfg.GranularityML * multiplier * factor
			for _, dir := range []float64{1, -1} {
				for k := 1; k <= o.cfg.VolumeSearchSteps; k++ {
					amount := dose.AmountMg + dir*float64(k)*stepMg
					if amount < o.cfg.MinDoseMg || amount > o.cfg.MaxDoseMg {
						break
					}
					try(amount)
				}
			}
		}

		(*working)[i].AmountMg = bestAmount
		score = bestScore
	}
	return score
}

// switchPhase tries substituting every other available medication into
// each dose, skipping substitutions that would break the same-day or
// route constraints. Crossing between classes re-derives the starting
// amount; within a class the current amount is kept (snapped to the
// allowed set for non-injectables).
func (o *Optimizer) switchPhase(working *models.Schedule, score float64) float64 {
	for i := range *working {
		current := (*working)[i]
		bestDose := current
		bestScore := score

		for _, med := range o.medications {
			if med.Name == current.Medication.Name {
				continue
			}
			if o.violatesSwitchConstraints(*working, i, med) {
				continue
			}

			amount := current.AmountMg
			switch {
			case med.Kind != current.Medication.Kind:
				amount = o.cfg.startingAmount(med)
			case med.Kind == models.KindNonInjectable:
				amount = nearestAllowed(amount, o.cfg.AllowedAmountsMg)
			}

			(*working)[i] = models.Dose{Day: current.Day, AmountMg: amount, Medication: med}
			if s := o.evaluator.Score(*working); s < bestScore {
				bestScore = s
				bestDose = (*working)[i]
			}
		}

		(*working)[i] = bestDose
		score = bestScore
	}
	return score
}

// violatesSwitchConstraints reports whether replacing the dose at idx with
// med would duplicate a same-day medication or exceed a route's per-day
// limit. The dose at idx itself is excluded from the counts.
func (o *Optimizer) violatesSwitchConstraints(working models.Schedule, idx int, med *models.Medication) bool {
	day := working[idx].Day
	for j, other := range working {
		if j == idx {
			continue
		}
		if other.Day == day && other.Medication.Name == med.Name {
			return true
		}
	}
	if med.Kind == models.KindNonInjectable {
		route := med.NonInjectable.Route
		count := 0
		for j, other := range working {
			if j == idx || other.Day != day || other.Medication.Kind != models.KindNonInjectable {
				continue
			}
			if other.Medication.NonInjectable.Route == route {
				count++
			}
		}
		if count >= route.MaxPerDay() {
			return true
		}
	}
	return false
}

// additionPhase tries adding a new dose of every available medication on
// every day, at the medication's starting amount. Any addition that
// improves the running score is accepted immediately; additions violating
// the per-day or per-cycle constraints are silently skipped.
func (o *Optimizer) additionPhase(working *models.Schedule, score float64) float64 {
	for day := 0; day < o.cfg.ScheduleDays; day++ {
		for _, med := range o.medications {
			if working.HasMedicationOn(day, med.Name) {
				continue
			}
			if med.Kind == models.KindInjectable && working.InjectableCount() >= o.cfg.MaxInjections {
				continue
			}
			if med.Kind == models.KindNonInjectable {
				route := med.NonInjectable.Route
				if working.RouteCountOn(day, route) >= route.MaxPerDay() {
					continue
				}
			}

			candidate := append(working.Clone(), models.Dose{
				Day:        day,
				AmountMg:   o.cfg.startingAmount(med),
				Medication: med,
			})
			if s := o.evaluator.Score(candidate); s < score {
				*working = candidate
				score = s
			}
		}
	}
	return score
}

// snapshot records a new best schedule. The copy is taken only on
// improvement, never per iteration.
func (o *Optimizer) snapshot(doses models.Schedule, score float64, iteration int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bestDoses != nil && score >= o.bestScore {
		return
	}
	o.bestScore = score
	o.bestDoses = doses.Clone()
	o.iteration = iteration
}

func (o *Optimizer) buildResult(converged bool, reason string) *Result {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return &Result{
		Doses:      o.bestDoses.Clone(),
		Score:      o.bestScore,
		Iterations: o.iteration,
		Converged:  converged,
		Reason:     reason,
	}
}

func removeAt(s models.Schedule, i int) models.Schedule {
	out := make(models.Schedule, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
