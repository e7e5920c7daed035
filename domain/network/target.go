package network

import (
	"fmt"
	"sort"
	"strings"

	"gocorda/domain/core"
)

// TargetKind says how a production target was specified
type TargetKind int

const (
	// TargetMetabolite requires that a metabolite can be produced
	TargetMetabolite TargetKind = iota
	// TargetEquation requires that a reaction given as a string can carry flux
	TargetEquation
	// TargetStoichiometry requires that an irreversible reaction with the given coefficients can carry flux
	TargetStoichiometry
)

// Target is an additional metabolic task the reconstruction must support
type Target struct {
	Kind          TargetKind
	Metabolite    string
	Equation      string
	Stoichiometry map[string]float64
}

// MetaboliteTarget requires production of a metabolite
func MetaboliteTarget(id string) Target {
	return Target{Kind: TargetMetabolite, Metabolite: id}
}

// EquationTarget requires flux through a reaction written as a string
func EquationTarget(eq string) Target {
	return Target{Kind: TargetEquation, Equation: eq}
}

// StoichiometryTarget requires flux through an irreversible reaction
func StoichiometryTarget(stoich map[string]float64) Target {
	return Target{Kind: TargetStoichiometry, Stoichiometry: stoich}
}

// ParseTarget interprets a loosely typed value as decoded from YAML or JSON:
// a string is an equation when it contains an arrow and a metabolite id otherwise,
// a map is a stoichiometry. Anything else is rejected.
func ParseTarget(v any) (Target, error) {
	switch t := v.(type) {
	case string:
		if HasArrow(t) {
			return EquationTarget(t), nil
		}
		if strings.TrimSpace(t) == "" {
			return Target{}, fmt.Errorf("%w: empty metabolite id", core.ErrInvalidTarget)
		}
		return MetaboliteTarget(strings.TrimSpace(t)), nil
	case map[string]float64:
		return StoichiometryTarget(t), nil
	case map[string]int:
		st := make(map[string]float64, len(t))
		for k, c := range t {
			st[k] = float64(c)
		}
		return StoichiometryTarget(st), nil
	case map[string]any:
		st := make(map[string]float64, len(t))
		for k, raw := range t {
			c, ok := toFloat(raw)
			if !ok {
				return Target{}, fmt.Errorf("%w: coefficient of %s is %T", core.ErrInvalidTarget, k, raw)
			}
			st[k] = c
		}
		return StoichiometryTarget(st), nil
	default:
		return Target{}, fmt.Errorf("%w: metabolite test not string or dictionary (got %T)", core.ErrInvalidTarget, v)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// String describes the target the way it was given
func (t Target) String() string {
	switch t.Kind {
	case TargetMetabolite:
		return t.Metabolite
	case TargetEquation:
		return t.Equation
	default:
		keys := make([]string, 0, len(t.Stoichiometry))
		for k := range t.Stoichiometry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %g", k, t.Stoichiometry[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}

// DemandReaction builds the synthetic reaction for the target. Metabolite and
// stoichiometry targets must only reference metabolites already in n.
func (t Target) DemandReaction(id string, n *Network) (Reaction, error) {
	r := Reaction{ID: id, Mock: t.String(), LowerBound: 0, UpperBound: DefaultBound}
	switch t.Kind {
	case TargetMetabolite:
		if !n.HasMetabolite(t.Metabolite) {
			return Reaction{}, fmt.Errorf("%w: %s", core.ErrMetaboliteNotFound, t.Metabolite)
		}
		r.Metabolites = map[string]float64{t.Metabolite: -1}
	case TargetEquation:
		stoich, lb, ub, err := ParseReactionString(t.Equation)
		if err != nil {
			return Reaction{}, err
		}
		r.Metabolites, r.LowerBound, r.UpperBound = stoich, lb, ub
	case TargetStoichiometry:
		if len(t.Stoichiometry) == 0 {
			return Reaction{}, fmt.Errorf("%w: empty stoichiometry", core.ErrInvalidTarget)
		}
		r.Metabolites = make(map[string]float64, len(t.Stoichiometry))
		for mid, c := range t.Stoichiometry {
			if !n.HasMetabolite(mid) {
				return Reaction{}, fmt.Errorf("%w: %s", core.ErrMetaboliteNotFound, mid)
			}
			r.Metabolites[mid] = c
		}
	default:
		return Reaction{}, fmt.Errorf("%w: unknown kind %d", core.ErrInvalidTarget, t.Kind)
	}
	return r, nil
}
