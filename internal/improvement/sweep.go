package improvement

import (
	"context"
	"fmt"
	"sync"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

// SweepResult pairs one candidate injection count with its run outcome.
type SweepResult struct {
	InjectionCount int
	Result         *Result
}

// SweepInjectionCounts runs one independent optimization per candidate
// injection count and returns the best outcome plus all of them. The runs
// are embarrassingly parallel: each owns its own state and a private copy
// of the reference data, so they only share the semaphore bounding
// parallelism.
func SweepInjectionCounts(ctx context.Context, cfg Config, counts []int, medications []*models.Medication, reference []models.ReferencePoint, maxParallel int) (*SweepResult, []*SweepResult, error) {
	if len(counts) == 0 {
		return nil, nil, fmt.Errorf("no injection counts provided")
	}
	if maxParallel <= 0 {
		maxParallel = 1
	}

	semaphore := make(chan struct{}, maxParallel)
	results := make([]*SweepResult, len(counts))
	errs := make([]error, len(counts))
	var wg sync.WaitGroup

	for i, count := range counts {
		wg.Add(1)
		go func(idx, injections int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			runCfg := cfg
			runCfg.MaxInjections = injections
			opt, err := NewOptimizer(runCfg, medications, reference)
			if err != nil {
				errs[idx] = err
				return
			}
			res, err := opt.Optimize(ctx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = &SweepResult{InjectionCount: injections, Result: res}
		}(i, count)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, results, fmt.Errorf("sweep run failed: %w", err)
		}
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Result.Score < best.Result.Score {
			best = r
		}
	}
	return best, results, nil
}
