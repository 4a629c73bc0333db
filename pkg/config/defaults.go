package config

// DefaultConfig returns a configuration with a realistic estradiol
// medication table and a physiological 28-day reference cycle, so the
// daemon is usable without a config file. Injectable curve parameters are
// fitted constants; non-injectable parameters are per-hour rates.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		Listen:         ":8080",
		RateLimitRPS:   5,
		RateLimitBurst: 20,

		Medications: []MedicationSpec{
			{
				Name: "estradiol valerate", Kind: "injectable",
				D: 2596.06, K1: 2.382, K2: 0.233, K3: 1.376,
				ConcentrationMgPerML: 20,
			},
			{
				Name: "estradiol cypionate", Kind: "injectable",
				D: 1920.9, K1: 0.168, K2: 0.126, K3: 2.115,
				ConcentrationMgPerML: 5,
			},
			{
				Name: "estradiol enanthate", Kind: "injectable",
				D: 333.9, K1: 0.424, K2: 0.435, K3: 0.153,
				ConcentrationMgPerML: 40,
			},
			{
				Name: "oral estradiol", Kind: "non_injectable",
				F: 0.05, Ka: 0.56, Ke: 0.087, Vd: 80, Route: "oral",
			},
			{
				Name: "sublingual estradiol", Kind: "non_injectable",
				F: 0.25, Ka: 2.0, Ke: 0.095, Vd: 70, Route: "sublingual",
			},
			{
				Name: "estradiol patch", Kind: "non_injectable",
				F: 0.6, Ka: 0.03, Ke: 0.05, Vd: 75, Route: "patch",
			},
		},

		ReferenceCycles: []ReferenceCycle{
			{
				Name: "menstrual-28",
				Points: []ReferencePointSpec{
					{Day: 0, Injectable: 40}, {Day: 1, Injectable: 40},
					{Day: 2, Injectable: 45}, {Day: 3, Injectable: 50},
					{Day: 4, Injectable: 55}, {Day: 5, Injectable: 60},
					{Day: 6, Injectable: 70}, {Day: 7, Injectable: 80},
					{Day: 8, Injectable: 95}, {Day: 9, Injectable: 115},
					{Day: 10, Injectable: 140}, {Day: 11, Injectable: 175},
					{Day: 12, Injectable: 220}, {Day: 13, Injectable: 250},
					{Day: 14, Injectable: 180}, {Day: 15, Injectable: 110},
					{Day: 16, Injectable: 100}, {Day: 17, Injectable: 110},
					{Day: 18, Injectable: 125}, {Day: 19, Injectable: 135},
					{Day: 20, Injectable: 140}, {Day: 21, Injectable: 140},
					{Day: 22, Injectable: 135}, {Day: 23, Injectable: 125},
					{Day: 24, Injectable: 110}, {Day: 25, Injectable: 90},
					{Day: 26, Injectable: 70}, {Day: 27, Injectable: 50},
				},
			},
			{
				Name: "flat-100",
				Points: []ReferencePointSpec{
					{Day: 0, Injectable: 100}, {Day: 4, Injectable: 100},
					{Day: 8, Injectable: 100}, {Day: 12, Injectable: 100},
					{Day: 16, Injectable: 100}, {Day: 20, Injectable: 100},
					{Day: 24, Injectable: 100}, {Day: 27, Injectable: 100},
				},
			},
		},

		Optimizer: OptimizerSettings{
			EffectDurationDays: 40,
			GranularityML:      0.01,
			InitialMultiplier:  8,
			VolumeSearchSteps:  3,

			MinDoseMg:          0.1,
			MaxDoseMg:          10,
			MaxInjections:      3,
			DefaultInjectionMg: 4,
			AllowedAmountsMg:   []float64{1, 2, 3, 4, 6, 8},
			SubDayOffsets:      []float64{0, 0.25, 0.5, 0.75},

			PreCycles:          2,
			MinImprovement:     1e-4,
			NoImprovementLimit: 3,
			RefinementTrigger:  2,
			MaxIterations:      200,

			InjectionCountWeight:     0.01,
			DistinctAmountWeight:     0.005,
			DistinctMedicationWeight: 0.01,

			DefaultConcentrationMgPerML: 20,
		},
	}
}
