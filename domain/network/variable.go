package network

import (
	"sort"
	"strings"
)

// Direction selects one of the two flux channels of a reaction
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ReverseSuffix is appended to a reaction id to name its backward variable
const ReverseSuffix = "_reverse"

// Variable is a single directed, non-negative flux channel. Net reaction flux
// is the forward value minus the backward value.
type Variable struct {
	Reaction  string
	Direction Direction
}

// Fwd returns the forward variable of a reaction
func Fwd(reaction string) Variable { return Variable{Reaction: reaction, Direction: Forward} }

// Bwd returns the backward variable of a reaction
func Bwd(reaction string) Variable { return Variable{Reaction: reaction, Direction: Backward} }

// Reverse returns the opposite direction of the same reaction
func (v Variable) Reverse() Variable {
	if v.Direction == Forward {
		return Bwd(v.Reaction)
	}
	return Fwd(v.Reaction)
}

// String renders the variable as "<id>" or "<id>_reverse"
func (v Variable) String() string {
	if v.Direction == Backward {
		return v.Reaction + ReverseSuffix
	}
	return v.Reaction
}

// Less orders variables by reaction id, forward before backward
func (v Variable) Less(o Variable) bool {
	if v.Reaction != o.Reaction {
		return v.Reaction < o.Reaction
	}
	return v.Direction < o.Direction
}

// ParseVariable resolves a rendered variable name against a network. An
// exact reaction id always wins over the reverse-suffix reading.
func ParseVariable(n *Network, s string) (Variable, bool) {
	if _, ok := n.Reaction(s); ok {
		return Fwd(s), true
	}
	if base, ok := strings.CutSuffix(s, ReverseSuffix); ok {
		if _, ok := n.Reaction(base); ok {
			return Bwd(base), true
		}
	}
	return Variable{}, false
}

// SortVariables sorts in place by Less
func SortVariables(vs []Variable) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Less(vs[j]) })
}

// VariableSet is an unordered set of variables
type VariableSet map[Variable]struct{}

// NewVariableSet builds a set from the given variables
func NewVariableSet(vs ...Variable) VariableSet {
	s := make(VariableSet, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v
func (s VariableSet) Add(v Variable) { s[v] = struct{}{} }

// Has reports membership
func (s VariableSet) Has(v Variable) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in deterministic order
func (s VariableSet) Sorted() []Variable {
	out := make([]Variable, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	SortVariables(out)
	return out
}

// Strings returns the sorted rendered names
func (s VariableSet) Strings() []string {
	vs := s.Sorted()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// SubsetOf reports whether every member of s is in o
func (s VariableSet) SubsetOf(o VariableSet) bool {
	for v := range s {
		if !o.Has(v) {
			return false
		}
	}
	return true
}
