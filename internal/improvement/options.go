package improvement

// Config is the immutable parameter set of one optimization run. A run owns
// its Config by value; independent runs never share mutable state.
type Config struct {
	// ScheduleDays is the cycle length in days.
	ScheduleDays int
	// EffectDurationDays bounds the active window of an injectable dose.
	EffectDurationDays float64

	// GranularityML is the minimum volume increment explored when adjusting
	// injectable amounts. The effective step is GranularityML times the
	// current multiplier.
	GranularityML float64
	// InitialMultiplier is the coarse-to-fine starting multiplier; it is
	// halved on each refinement down to MultiplierFloor.
	InitialMultiplier float64
	MultiplierFloor   float64
	// VolumeSearchSteps is how many increments the dose-adjustment phase
	// tries in each direction per dose.
	VolumeSearchSteps int

	MinDoseMg float64
	MaxDoseMg float64
	// MaxInjections caps the number of injectable doses in a schedule.
	MaxInjections int
	// DefaultInjectionMg seeds new injectable doses.
	DefaultInjectionMg float64
	// AllowedAmountsMg is the discrete amount set for non-injectable doses.
	AllowedAmountsMg []float64

	// SubDayOffsets are the fractional-day offsets sampled per reference day.
	SubDayOffsets []float64

	// SteadyState enables synthetic pre-cycles so residual concentration
	// from prior cycles is represented; PreCycles is how many.
	SteadyState bool
	PreCycles   int

	// MinImprovement is the per-iteration score delta below which the
	// iteration counts as stalled.
	MinImprovement float64
	// NoImprovementLimit is the number of stalled iterations, at the
	// finest granularity, after which the run converges.
	NoImprovementLimit int
	// RefinementTrigger is the number of stalled iterations after which the
	// granularity multiplier is halved.
	RefinementTrigger int
	// MaxIterations is a hard safety ceiling; the greedy loop has no
	// formal termination guarantee without it.
	MaxIterations int

	// Penalty weights of the multi-objective score.
	InjectionCountWeight     float64
	DistinctAmountWeight     float64
	DistinctMedicationWeight float64

	// ConcentrationFactors maps injectable medication names to their
	// preparation strength in mg/mL, used for volume/mass conversion
	// during dose search. Missing names fall back to
	// DefaultConcentrationFactor.
	ConcentrationFactors       map[string]float64
	DefaultConcentrationFactor float64
}

// DefaultConfig returns the standard run parameters for a cycle of the
// given length.
func DefaultConfig(scheduleDays int) Config {
	return Config{
		ScheduleDays:       scheduleDays,
		EffectDurationDays: 40,

		GranularityML:     0.01,
		InitialMultiplier: 8,
		MultiplierFloor:   1,
		VolumeSearchSteps: 3,

		MinDoseMg:          0.1,
		MaxDoseMg:          10,
		MaxInjections:      3,
		DefaultInjectionMg: 4,
		AllowedAmountsMg:   []float64{1, 2, 3, 4, 6, 8},

		SubDayOffsets: []float64{0, 0.25, 0.5, 0.75},

		SteadyState: false,
		PreCycles:   2,

		MinImprovement:     1e-4,
		NoImprovementLimit: 3,
		RefinementTrigger:  2,
		MaxIterations:      200,

		InjectionCountWeight:     0.01,
		DistinctAmountWeight:     0.005,
		DistinctMedicationWeight: 0.01,

		DefaultConcentrationFactor: 20,
	}
}

// concentrationFactor returns the mg/mL strength for an injectable
// medication name.
func (c Config) concentrationFactor(name string) float64 {
	if f, ok := c.ConcentrationFactors[name]; ok && f > 0 {
		return f
	}
	return c.DefaultConcentrationFactor
}
