package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a Config from YAML bytes and validates it. This is also
// used where config arrives as payload rather than via the filesystem.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if len(cfg.Medications) == 0 {
		return fmt.Errorf("at least one medication must be defined")
	}
	names := make(map[string]bool)
	for _, spec := range cfg.Medications {
		if names[spec.Name] {
			return fmt.Errorf("duplicate medication name: %s", spec.Name)
		}
		names[spec.Name] = true
		if _, err := spec.ToMedication(); err != nil {
			return err
		}
	}

	cycleNames := make(map[string]bool)
	for _, rc := range cfg.ReferenceCycles {
		if rc.Name == "" {
			return fmt.Errorf("reference cycle name cannot be empty")
		}
		if cycleNames[rc.Name] {
			return fmt.Errorf("duplicate reference cycle name: %s", rc.Name)
		}
		cycleNames[rc.Name] = true
		if len(rc.Points) == 0 {
			return fmt.Errorf("reference cycle %s has no points", rc.Name)
		}
		days := make(map[int]bool)
		for _, p := range rc.Points {
			if p.Day < 0 {
				return fmt.Errorf("reference cycle %s: day cannot be negative", rc.Name)
			}
			if days[p.Day] {
				return fmt.Errorf("reference cycle %s: duplicate day %d", rc.Name, p.Day)
			}
			days[p.Day] = true
			if p.Injectable < 0 {
				return fmt.Errorf("reference cycle %s, day %d: target cannot be negative", rc.Name, p.Day)
			}
			if p.NonInjectable != nil && *p.NonInjectable < 0 {
				return fmt.Errorf("reference cycle %s, day %d: non-injectable target cannot be negative", rc.Name, p.Day)
			}
		}
	}

	return validateOptimizer(&cfg.Optimizer)
}

func validateOptimizer(o *OptimizerSettings) error {
	if o.EffectDurationDays < 0 {
		return fmt.Errorf("effect_duration_days cannot be negative")
	}
	if o.GranularityML < 0 {
		return fmt.Errorf("granularity_ml cannot be negative")
	}
	if o.MinDoseMg < 0 || o.MaxDoseMg < 0 {
		return fmt.Errorf("dose bounds cannot be negative")
	}
	if o.MaxDoseMg > 0 && o.MinDoseMg > o.MaxDoseMg {
		return fmt.Errorf("min_dose_mg %f exceeds max_dose_mg %f", o.MinDoseMg, o.MaxDoseMg)
	}
	if o.MaxInjections < 0 {
		return fmt.Errorf("max_injections cannot be negative")
	}
	for _, a := range o.AllowedAmountsMg {
		if a <= 0 {
			return fmt.Errorf("allowed_amounts_mg entries must be positive, got %f", a)
		}
	}
	for _, off := range o.SubDayOffsets {
		if off < 0 || off >= 1 {
			return fmt.Errorf("sub_day_offsets entries must be in [0, 1), got %f", off)
		}
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max_iterations cannot be negative")
	}
	return nil
}
