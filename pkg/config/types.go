package config

import (
	"fmt"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

// Config is the daemon configuration: server settings, the static
// medication parameter table, the selectable reference cycles, and the
// optimizer defaults.
type Config struct {
	LogLevel       string  `yaml:"log_level"`
	Listen         string  `yaml:"listen"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int64   `yaml:"rate_limit_burst"`

	Medications     []MedicationSpec  `yaml:"medications"`
	ReferenceCycles []ReferenceCycle  `yaml:"reference_cycles"`
	Optimizer       OptimizerSettings `yaml:"optimizer"`
}

// MedicationSpec is the YAML shape of one medication table entry. Kind
// selects which parameter set applies.
type MedicationSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // injectable or non_injectable

	// Injectable parameters.
	D                    float64 `yaml:"d,omitempty"`
	K1                   float64 `yaml:"k1,omitempty"`
	K2                   float64 `yaml:"k2,omitempty"`
	K3                   float64 `yaml:"k3,omitempty"`
	ConcentrationMgPerML float64 `yaml:"concentration_mg_per_ml,omitempty"`

	// Non-injectable parameters.
	F     float64 `yaml:"f,omitempty"`
	Ka    float64 `yaml:"ka,omitempty"`
	Ke    float64 `yaml:"ke,omitempty"`
	Vd    float64 `yaml:"vd,omitempty"`
	Route string  `yaml:"route,omitempty"`
}

// ToMedication converts the spec into the domain type and validates it.
func (s MedicationSpec) ToMedication() (*models.Medication, error) {
	med := &models.Medication{Name: s.Name}
	switch s.Kind {
	case string(models.KindInjectable):
		med.Kind = models.KindInjectable
		med.Injectable = &models.InjectableParams{D: s.D, K1: s.K1, K2: s.K2, K3: s.K3}
	case string(models.KindNonInjectable):
		med.Kind = models.KindNonInjectable
		med.NonInjectable = &models.NonInjectableParams{
			F: s.F, Ka: s.Ka, Ke: s.Ke, Vd: s.Vd, Route: models.Route(s.Route),
		}
	default:
		return nil, fmt.Errorf("medication %s: unknown kind %q", s.Name, s.Kind)
	}
	if err := med.Validate(); err != nil {
		return nil, err
	}
	return med, nil
}

// MedicationList converts the whole table.
func (c *Config) MedicationList() ([]*models.Medication, error) {
	meds := make([]*models.Medication, 0, len(c.Medications))
	for _, spec := range c.Medications {
		med, err := spec.ToMedication()
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	return meds, nil
}

// ConcentrationFactors returns the per-medication preparation strengths
// (mg/mL) declared in the table.
func (c *Config) ConcentrationFactors() map[string]float64 {
	factors := make(map[string]float64)
	for _, spec := range c.Medications {
		if spec.ConcentrationMgPerML > 0 {
			factors[spec.Name] = spec.ConcentrationMgPerML
		}
	}
	return factors
}

// ReferenceCycle is a named target concentration profile.
type ReferenceCycle struct {
	Name   string               `yaml:"name"`
	Points []ReferencePointSpec `yaml:"points"`
}

// ReferencePointSpec is the YAML shape of one reference sample.
type ReferencePointSpec struct {
	Day           int      `yaml:"day"`
	Injectable    float64  `yaml:"injectable"`
	NonInjectable *float64 `yaml:"non_injectable,omitempty"`
}

// ToReference converts the cycle's points into the domain type.
func (rc ReferenceCycle) ToReference() []models.ReferencePoint {
	ref := make([]models.ReferencePoint, len(rc.Points))
	for i, p := range rc.Points {
		ref[i] = models.ReferencePoint{Day: p.Day, Injectable: p.Injectable, NonInjectable: p.NonInjectable}
	}
	return ref
}

// Cycle returns the named reference cycle, or false when absent.
func (c *Config) Cycle(name string) (ReferenceCycle, bool) {
	for _, rc := range c.ReferenceCycles {
		if rc.Name == name {
			return rc, true
		}
	}
	return ReferenceCycle{}, false
}

// OptimizerSettings are the file-configurable optimizer defaults. Zero
// values mean "use the built-in default".
type OptimizerSettings struct {
	EffectDurationDays float64 `yaml:"effect_duration_days"`
	GranularityML      float64 `yaml:"granularity_ml"`
	InitialMultiplier  float64 `yaml:"initial_multiplier"`
	VolumeSearchSteps  int     `yaml:"volume_search_steps"`

	MinDoseMg          float64   `yaml:"min_dose_mg"`
	MaxDoseMg          float64   `yaml:"max_dose_mg"`
	MaxInjections      int       `yaml:"max_injections"`
	DefaultInjectionMg float64   `yaml:"default_injection_mg"`
	AllowedAmountsMg   []float64 `yaml:"allowed_amounts_mg"`
	SubDayOffsets      []float64 `yaml:"sub_day_offsets"`

	PreCycles          int     `yaml:"pre_cycles"`
	MinImprovement     float64 `yaml:"min_improvement"`
	NoImprovementLimit int     `yaml:"no_improvement_limit"`
	RefinementTrigger  int     `yaml:"refinement_trigger"`
	MaxIterations      int     `yaml:"max_iterations"`

	InjectionCountWeight     float64 `yaml:"injection_count_weight"`
	DistinctAmountWeight     float64 `yaml:"distinct_amount_weight"`
	DistinctMedicationWeight float64 `yaml:"distinct_medication_weight"`

	DefaultConcentrationMgPerML float64 `yaml:"default_concentration_mg_per_ml"`
}
