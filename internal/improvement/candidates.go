package improvement

import (
	"math"

	"github.com/jessibug-os/EstraDial/pkg/models"
	"github.com/jessibug-os/EstraDial/pkg/utils"
)

// candidateDays returns count evenly spaced administration days across the
// cycle. A single candidate is placed at day 0.
func candidateDays(scheduleDays, count int) []int {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []int{0}
	}
	days := make([]int, 0, count)
	spacing := float64(scheduleDays) / float64(count)
	for i := 0; i < count; i++ {
		day := int(math.Round(float64(i) * spacing))
		if day >= scheduleDays {
			day = scheduleDays - 1
		}
		// Spacing below one day collapses candidates onto the same day;
		// the one-dose-per-medication-per-day invariant forbids that.
		if len(days) > 0 && day <= days[len(days)-1] {
			day = days[len(days)-1] + 1
			if day >= scheduleDays {
				break
			}
		}
		days = append(days, day)
	}
	return days
}

// startingAmount derives the seed amount for a new dose of the given
// medication: the configured default for injectables, the closest allowed
// discrete amount for everything else.
func (c Config) startingAmount(med *models.Medication) float64 {
	if med.Kind == models.KindInjectable {
		return utils.ClampFloat64(c.DefaultInjectionMg, c.MinDoseMg, c.MaxDoseMg)
	}
	return nearestAllowed(c.DefaultInjectionMg, c.AllowedAmountsMg)
}

// nearestAllowed snaps amount to the closest member of the allowed set.
func nearestAllowed(amount float64, allowed []float64) float64 {
	if len(allowed) == 0 {
		return amount
	}
	best := allowed[0]
	bestDist := math.Abs(amount - best)
	for _, a := range allowed[1:] {
		if d := math.Abs(amount - a); d < bestDist {
			best = a
			bestDist = d
		}
	}
	return best
}

// preferredMedication picks the seed medication for initialization,
// preferring an injectable when one is available.
func preferredMedication(meds []*models.Medication) *models.Medication {
	for _, m := range meds {
		if m.Kind == models.KindInjectable {
			return m
		}
	}
	return meds[0]
}
