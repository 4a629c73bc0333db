package models

import "fmt"

// MedicationKind distinguishes the two pharmacokinetic families.
type MedicationKind string

const (
	// KindInjectable covers depot ester injections modeled by a
	// three-compartment absorption/distribution/elimination curve.
	KindInjectable MedicationKind = "injectable"
	// KindNonInjectable covers oral/sublingual/transdermal forms modeled
	// by a one-compartment first-order absorption curve.
	KindNonInjectable MedicationKind = "non_injectable"
)

// Route is the administration route of a non-injectable medication.
type Route string

const (
	RouteOral       Route = "oral"
	RouteSublingual Route = "sublingual"
	RoutePatch      Route = "patch"
	RouteGel        Route = "gel"
)

// MaxPerDay returns how many doses of this route a single day may carry.
func (r Route) MaxPerDay() int {
	switch r {
	case RoutePatch:
		return 1
	case RouteGel:
		return 2
	case RouteOral:
		return 3
	case RouteSublingual:
		return 4
	default:
		return 1
	}
}

// Valid reports whether the route is one of the known routes.
func (r Route) Valid() bool {
	switch r {
	case RouteOral, RouteSublingual, RoutePatch, RouteGel:
		return true
	}
	return false
}

// InjectableParams are the fitted parameters of a depot injection curve.
// D is a dose scaling constant; K1, K2, K3 are rate constants in 1/day.
type InjectableParams struct {
	D  float64
	K1 float64
	K2 float64
	K3 float64
}

// NonInjectableParams are the parameters of a one-compartment curve.
// F is bioavailability (0..1], Ka and Ke are absorption and elimination
// rates in 1/hour, Vd is the volume of distribution in liters.
type NonInjectableParams struct {
	F     float64
	Ka    float64
	Ke    float64
	Vd    float64
	Route Route
}

// Medication is immutable reference data describing one available
// preparation. Exactly one of Injectable/NonInjectable is set, matching Kind.
type Medication struct {
	Name          string
	Kind          MedicationKind
	Injectable    *InjectableParams
	NonInjectable *NonInjectableParams
}

// Validate checks that the medication's kind and parameter set agree.
func (m *Medication) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("medication name cannot be empty")
	}
	switch m.Kind {
	case KindInjectable:
		if m.Injectable == nil {
			return fmt.Errorf("medication %s: injectable parameters are required", m.Name)
		}
		if m.NonInjectable != nil {
			return fmt.Errorf("medication %s: injectable medication cannot carry non-injectable parameters", m.Name)
		}
		p := m.Injectable
		if p.K1 <= 0 || p.K2 <= 0 || p.K3 <= 0 {
			return fmt.Errorf("medication %s: rate constants must be positive", m.Name)
		}
	case KindNonInjectable:
		if m.NonInjectable == nil {
			return fmt.Errorf("medication %s: non-injectable parameters are required", m.Name)
		}
		if m.Injectable != nil {
			return fmt.Errorf("medication %s: non-injectable medication cannot carry injectable parameters", m.Name)
		}
		p := m.NonInjectable
		if p.F <= 0 || p.F > 1 {
			return fmt.Errorf("medication %s: bioavailability must be in (0, 1], got %f", m.Name, p.F)
		}
		if p.Ka <= 0 || p.Ke <= 0 {
			return fmt.Errorf("medication %s: absorption and elimination rates must be positive", m.Name)
		}
		if p.Vd <= 0 {
			return fmt.Errorf("medication %s: volume of distribution must be positive, got %f", m.Name, p.Vd)
		}
		if !p.Route.Valid() {
			return fmt.Errorf("medication %s: invalid route %q", m.Name, p.Route)
		}
	default:
		return fmt.Errorf("medication %s: unknown kind %q", m.Name, m.Kind)
	}
	return nil
}

// Dose is one administration of a medication on a schedule day.
type Dose struct {
	Day        int
	AmountMg   float64
	Medication *Medication
}

// ConcentrationPoint is the model output at one sample time, split by
// medication class. Day is fractional; concentrations are never negative.
type ConcentrationPoint struct {
	Day           float64 `json:"day"`
	Injectable    float64 `json:"injectable"`
	NonInjectable float64 `json:"non_injectable"`
}

// ReferencePoint is one target sample of the reference cycle. The
// non-injectable target is optional; nil means the class has no target
// at this day.
type ReferencePoint struct {
	Day           int
	Injectable    float64
	NonInjectable *float64
}

// Schedule is a collection of doses spanning one cycle.
type Schedule []Dose

// Clone returns an independent copy of the schedule. Medication pointers
// are shared; medications are immutable reference data.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// InjectableCount returns the number of injectable doses in the schedule.
func (s Schedule) InjectableCount() int {
	n := 0
	for _, d := range s {
		if d.Medication.Kind == KindInjectable {
			n++
		}
	}
	return n
}

// HasMedicationOn reports whether the named medication already has a dose
// on the given day.
func (s Schedule) HasMedicationOn(day int, name string) bool {
	for _, d := range s {
		if d.Day == day && d.Medication.Name == name {
			return true
		}
	}
	return false
}

// RouteCountOn returns how many non-injectable doses of the given route
// fall on the given day.
func (s Schedule) RouteCountOn(day int, route Route) int {
	n := 0
	for _, d := range s {
		if d.Day != day || d.Medication.Kind != KindNonInjectable {
			continue
		}
		if d.Medication.NonInjectable.Route == route {
			n++
		}
	}
	return n
}

// CheckConstraints verifies the schedule invariants: the injectable dose
// count stays within the cap, no medication is dosed twice on one day, and
// per-day route limits hold.
func (s Schedule) CheckConstraints(maxInjections int) error {
	if got := s.InjectableCount(); got > maxInjections {
		return fmt.Errorf("injectable dose count %d exceeds cap %d", got, maxInjections)
	}
	type dayMed struct {
		day  int
		name string
	}
	seen := make(map[dayMed]bool)
	type dayRoute struct {
		day   int
		route Route
	}
	routeCounts := make(map[dayRoute]int)
	for _, d := range s {
		key := dayMed{d.Day, d.Medication.Name}
		if seen[key] {
			return fmt.Errorf("medication %s dosed twice on day %d", d.Medication.Name, d.Day)
		}
		seen[key] = true
		if d.Medication.Kind == KindNonInjectable {
			r := d.Medication.NonInjectable.Route
			rk := dayRoute{d.Day, r}
			routeCounts[rk]++
			if routeCounts[rk] > r.MaxPerDay() {
				return fmt.Errorf("day %d carries %d %s doses, limit is %d", d.Day, routeCounts[rk], r, r.MaxPerDay())
			}
		}
	}
	return nil
}
