package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jessibug-os/EstraDial/internal/improvement"
	"github.com/jessibug-os/EstraDial/internal/kinetics"
	"github.com/jessibug-os/EstraDial/internal/metrics"
	"github.com/jessibug-os/EstraDial/pkg/logger"
	"github.com/jessibug-os/EstraDial/pkg/models"
)

type optimizationRequest struct {
	Cycle         string   `json:"cycle"`
	ScheduleDays  int      `json:"schedule_days"`
	MaxInjections int      `json:"max_injections"`
	SteadyState   bool     `json:"steady_state"`
	Medications   []string `json:"medications,omitempty"`
}

type concentrationRequest struct {
	Doses []struct {
		Day        int     `json:"day"`
		AmountMg   float64 `json:"amount_mg"`
		Medication string  `json:"medication"`
	} `json:"doses"`
	Times              []float64 `json:"times"`
	EffectDurationDays float64   `json:"effect_duration_days,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateOptimization(w http.ResponseWriter, r *http.Request) {
	var req optimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ScheduleDays <= 0 {
		s.writeError(w, http.StatusBadRequest, "schedule_days must be positive")
		return
	}

	cycle, ok := s.cfg.Cycle(req.Cycle)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown reference cycle: "+req.Cycle)
		return
	}

	meds := s.medications
	if len(req.Medications) > 0 {
		meds = make([]*models.Medication, 0, len(req.Medications))
		for _, name := range req.Medications {
			med, ok := s.medsByName[name]
			if !ok {
				s.writeError(w, http.StatusBadRequest, "unknown medication: "+name)
				return
			}
			meds = append(meds, med)
		}
	}

	runCfg := s.optimizerConfig(req.ScheduleDays, req.MaxInjections, req.SteadyState)
	opt, err := improvement.NewOptimizer(runCfg, meds, cycle.ToReference())
	if err != nil {
		if errors.Is(err, improvement.ErrNoMedications) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := s.store.Create(req.Cycle, cancel)
	opt.WithProgressReporter(func(percent, score float64, iteration int) {
		s.store.SetProgress(id, percent, score, iteration)
	})

	metrics.OptimizationsStarted.Inc()
	go s.runOptimization(ctx, id, opt)

	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// runOptimization drives one run to completion on its own goroutine and
// records the outcome.
func (s *Server) runOptimization(ctx context.Context, id string, opt *improvement.Optimizer) {
	s.store.SetRunning(id)
	start := time.Now()

	res, err := opt.Optimize(ctx)
	switch {
	case err != nil:
		s.store.SetResult(id, RunStatusFailed, nil, err.Error())
		metrics.OptimizationsFinished.WithLabelValues("failed").Inc()
		logger.Error("optimization failed", "run", id, "error", err)
	case res.Reason == "cancelled":
		s.store.SetResult(id, RunStatusCancelled, res, "")
		metrics.OptimizationsFinished.WithLabelValues("cancelled").Inc()
		metrics.OptimizationIterations.Observe(float64(res.Iterations))
		logger.Info("optimization cancelled", "run", id, "score", res.Score, "iterations", res.Iterations)
	default:
		s.store.SetResult(id, RunStatusCompleted, res, "")
		metrics.OptimizationsFinished.WithLabelValues("completed").Inc()
		metrics.OptimizationIterations.Observe(float64(res.Iterations))
		logger.Info("optimization finished",
			"run", id,
			"score", res.Score,
			"iterations", res.Iterations,
			"converged", res.Converged,
			"reason", res.Reason,
			"elapsed", time.Since(start).String(),
		)
	}
}

// optimizerConfig layers the file-configured optimizer settings over the
// built-in defaults for one run.
func (s *Server) optimizerConfig(scheduleDays, maxInjections int, steadyState bool) improvement.Config {
	cfg := improvement.DefaultConfig(scheduleDays)
	o := s.cfg.Optimizer

	if o.EffectDurationDays > 0 {
		cfg.EffectDurationDays = o.EffectDurationDays
	}
	if o.GranularityML > 0 {
		cfg.GranularityML = o.GranularityML
	}
	if o.InitialMultiplier > 0 {
		cfg.InitialMultiplier = o.InitialMultiplier
	}
	if o.VolumeSearchSteps > 0 {
		cfg.VolumeSearchSteps = o.VolumeSearchSteps
	}
	if o.MinDoseMg > 0 {
		cfg.MinDoseMg = o.MinDoseMg
	}
	if o.MaxDoseMg > 0 {
		cfg.MaxDoseMg = o.MaxDoseMg
	}
	if o.MaxInjections > 0 {
		cfg.MaxInjections = o.MaxInjections
	}
	if o.DefaultInjectionMg > 0 {
		cfg.DefaultInjectionMg = o.DefaultInjectionMg
	}
	if len(o.AllowedAmountsMg) > 0 {
		cfg.AllowedAmountsMg = o.AllowedAmountsMg
	}
	if len(o.SubDayOffsets) > 0 {
		cfg.SubDayOffsets = o.SubDayOffsets
	}
	if o.PreCycles > 0 {
		cfg.PreCycles = o.PreCycles
	}
	if o.MinImprovement > 0 {
		cfg.MinImprovement = o.MinImprovement
	}
	if o.NoImprovementLimit > 0 {
		cfg.NoImprovementLimit = o.NoImprovementLimit
	}
	if o.RefinementTrigger > 0 {
		cfg.RefinementTrigger = o.RefinementTrigger
	}
	if o.MaxIterations > 0 {
		cfg.MaxIterations = o.MaxIterations
	}
	if o.InjectionCountWeight > 0 {
		cfg.InjectionCountWeight = o.InjectionCountWeight
	}
	if o.DistinctAmountWeight > 0 {
		cfg.DistinctAmountWeight = o.DistinctAmountWeight
	}
	if o.DistinctMedicationWeight > 0 {
		cfg.DistinctMedicationWeight = o.DistinctMedicationWeight
	}
	if o.DefaultConcentrationMgPerML > 0 {
		cfg.DefaultConcentrationFactor = o.DefaultConcentrationMgPerML
	}
	cfg.ConcentrationFactors = s.cfg.ConcentrationFactors()

	// Per-request overrides.
	if maxInjections > 0 {
		cfg.MaxInjections = maxInjections
	}
	cfg.SteadyState = steadyState

	return cfg
}

func (s *Server) handleListOptimizations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.store.List(limit)})
}

func (s *Server) handleGetOptimization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelOptimization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Cancel(id); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "cancelling"})
}

func (s *Server) handleConcentrations(w http.ResponseWriter, r *http.Request) {
	var req concentrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Times) == 0 {
		s.writeError(w, http.StatusBadRequest, "times cannot be empty")
		return
	}

	doses := make(models.Schedule, 0, len(req.Doses))
	for _, d := range req.Doses {
		med, ok := s.medsByName[d.Medication]
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown medication: "+d.Medication)
			return
		}
		if d.AmountMg <= 0 {
			s.writeError(w, http.StatusBadRequest, "amount_mg must be positive")
			return
		}
		doses = append(doses, models.Dose{Day: d.Day, AmountMg: d.AmountMg, Medication: med})
	}

	effectDuration := req.EffectDurationDays
	if effectDuration <= 0 {
		effectDuration = s.optimizerConfig(1, 0, false).EffectDurationDays
	}

	points := kinetics.Evaluate(doses, req.Times, effectDuration)
	s.writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
