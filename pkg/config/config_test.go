package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessibug-os/EstraDial/pkg/models"
)

const validYAML = `
log_level: info
listen: ":8080"
medications:
  - name: estradiol valerate
    kind: injectable
    d: 2596.06
    k1: 2.382
    k2: 0.233
    k3: 1.376
    concentration_mg_per_ml: 20
  - name: oral estradiol
    kind: non_injectable
    f: 0.05
    ka: 0.56
    ke: 0.087
    vd: 80
    route: oral
reference_cycles:
  - name: flat
    points:
      - day: 0
        injectable: 100
      - day: 7
        injectable: 100
        non_injectable: 5
optimizer:
  max_injections: 2
  max_iterations: 50
`

func TestParseYAMLValid(t *testing.T) {
	cfg, err := ParseYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Medications) != 2 {
		t.Fatalf("expected 2 medications, got %d", len(cfg.Medications))
	}
	if cfg.Optimizer.MaxInjections != 2 {
		t.Fatalf("expected max_injections 2, got %d", cfg.Optimizer.MaxInjections)
	}

	meds, err := cfg.MedicationList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meds[0].Kind != models.KindInjectable || meds[1].Kind != models.KindNonInjectable {
		t.Fatalf("medication kinds not preserved")
	}

	factors := cfg.ConcentrationFactors()
	if factors["estradiol valerate"] != 20 {
		t.Fatalf("expected concentration factor 20, got %g", factors["estradiol valerate"])
	}

	cycle, ok := cfg.Cycle("flat")
	if !ok {
		t.Fatalf("expected cycle flat")
	}
	ref := cycle.ToReference()
	if len(ref) != 2 {
		t.Fatalf("expected 2 reference points, got %d", len(ref))
	}
	if ref[1].NonInjectable == nil || *ref[1].NonInjectable != 5 {
		t.Fatalf("optional non-injectable target not preserved")
	}
	if ref[0].NonInjectable != nil {
		t.Fatalf("absent non-injectable target must stay nil")
	}
}

func TestParseYAMLRejectsBadConfigs(t *testing.T) {
	cases := map[string]string{
		"bad log level":  "log_level: loud\nmedications:\n  - name: x\n    kind: injectable\n    d: 1\n    k1: 1\n    k2: 2\n    k3: 3\n",
		"no medications": "log_level: info\nmedications: []\n",
		"duplicate medication": `log_level: info
medications:
  - {name: a, kind: injectable, d: 1, k1: 1, k2: 2, k3: 3}
  - {name: a, kind: injectable, d: 1, k1: 1, k2: 2, k3: 3}
`,
		"unknown kind": "log_level: info\nmedications:\n  - {name: a, kind: pill}\n",
		"negative reference day": `log_level: info
medications:
  - {name: a, kind: injectable, d: 1, k1: 1, k2: 2, k3: 3}
reference_cycles:
  - name: c
    points:
      - {day: -1, injectable: 10}
`,
		"duplicate reference day": `log_level: info
medications:
  - {name: a, kind: injectable, d: 1, k1: 1, k2: 2, k3: 3}
reference_cycles:
  - name: c
    points:
      - {day: 0, injectable: 10}
      - {day: 0, injectable: 20}
`,
		"bad sub-day offset": `log_level: info
medications:
  - {name: a, kind: injectable, d: 1, k1: 1, k2: 2, k3: 3}
optimizer:
  sub_day_offsets: [0, 1.5]
`,
		"not yaml": "log_level: [",
	}
	for name, yml := range cases {
		if _, err := ParseYAML([]byte(yml)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := validate(cfg); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
	meds, err := cfg.MedicationList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hasInjectable := false
	for _, m := range meds {
		if m.Kind == models.KindInjectable {
			hasInjectable = true
		}
	}
	if !hasInjectable {
		t.Fatalf("default medication table must include an injectable")
	}
	if _, ok := cfg.Cycle("menstrual-28"); !ok {
		t.Fatalf("default config must ship the menstrual-28 cycle")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected listen :8080, got %s", cfg.Listen)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
