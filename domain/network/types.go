// Package network holds the metabolic network model: metabolites, reactions
// with stoichiometry and flux bounds, and the directed flux variables derived
// from them.
package network

import (
	"fmt"
	"sort"

	"gocorda/domain/core"
)

// Metabolite is a chemical species of the network
type Metabolite struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Compartment string `json:"compartment,omitempty"`
}

// Reaction converts metabolites with the given stoichiometry; negative
// coefficients are consumed, positive ones produced
type Reaction struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name,omitempty"`
	Metabolites          map[string]float64 `json:"metabolites"`
	LowerBound           float64            `json:"lower_bound"`
	UpperBound           float64            `json:"upper_bound"`
	GeneRule             string             `json:"gene_reaction_rule,omitempty"`
	ObjectiveCoefficient float64            `json:"objective_coefficient,omitempty"`
	// Mock holds the production target a synthetic demand reaction was created for
	Mock string `json:"-"`
}

// Reversible reports whether the reaction can carry flux in both directions
func (r *Reaction) Reversible() bool {
	return r.LowerBound < 0 && r.UpperBound > 0
}

// IsMock reports whether the reaction is a synthetic production target
func (r *Reaction) IsMock() bool {
	return r.Mock != ""
}

// Copy returns a deep copy of the reaction
func (r Reaction) Copy() Reaction {
	mets := make(map[string]float64, len(r.Metabolites))
	for id, c := range r.Metabolites {
		mets[id] = c
	}
	r.Metabolites = mets
	return r
}

// Network is a metabolic model. Reaction order is significant: it fixes the
// column order of every linear program built from the network.
type Network struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Metabolites []Metabolite `json:"metabolites"`
	Reactions   []Reaction   `json:"reactions"`

	reactionIndex   map[string]int
	metaboliteIndex map[string]int
}

// New creates an empty network
func New(id, name string) *Network {
	return &Network{ID: id, Name: name}
}

func (n *Network) reindex() {
	n.reactionIndex = make(map[string]int, len(n.Reactions))
	for i, r := range n.Reactions {
		n.reactionIndex[r.ID] = i
	}
	n.metaboliteIndex = make(map[string]int, len(n.Metabolites))
	for i, m := range n.Metabolites {
		n.metaboliteIndex[m.ID] = i
	}
}

func (n *Network) ensureIndex() {
	if n.reactionIndex == nil || len(n.reactionIndex) != len(n.Reactions) ||
		n.metaboliteIndex == nil || len(n.metaboliteIndex) != len(n.Metabolites) {
		n.reindex()
	}
}

// AddMetabolite adds a metabolite, rejecting duplicate ids
func (n *Network) AddMetabolite(m Metabolite) error {
	n.ensureIndex()
	if _, ok := n.metaboliteIndex[m.ID]; ok {
		return fmt.Errorf("%w: metabolite %s", core.ErrDuplicateID, m.ID)
	}
	n.Metabolites = append(n.Metabolites, m)
	n.metaboliteIndex[m.ID] = len(n.Metabolites) - 1
	return nil
}

// AddReaction adds a reaction. Metabolites it references that the network
// does not know yet are created.
func (n *Network) AddReaction(r Reaction) error {
	n.ensureIndex()
	if r.ID == "" {
		return core.NewValidationError("reaction", "id cannot be empty")
	}
	if _, ok := n.reactionIndex[r.ID]; ok {
		return fmt.Errorf("%w: reaction %s", core.ErrDuplicateID, r.ID)
	}
	if r.LowerBound > r.UpperBound {
		return core.NewValidationError("reaction "+r.ID, fmt.Sprintf("lower bound %g exceeds upper bound %g", r.LowerBound, r.UpperBound))
	}
	for _, mid := range sortedKeys(r.Metabolites) {
		if !n.HasMetabolite(mid) {
			if err := n.AddMetabolite(Metabolite{ID: mid}); err != nil {
				return err
			}
		}
	}
	if r.Metabolites == nil {
		r.Metabolites = map[string]float64{}
	}
	n.Reactions = append(n.Reactions, r)
	n.reactionIndex[r.ID] = len(n.Reactions) - 1
	return nil
}

// Reaction looks up a reaction by id
func (n *Network) Reaction(id string) (*Reaction, bool) {
	n.ensureIndex()
	i, ok := n.reactionIndex[id]
	if !ok {
		return nil, false
	}
	return &n.Reactions[i], true
}

// ReactionIndex returns the position of a reaction in the network
func (n *Network) ReactionIndex(id string) (int, bool) {
	n.ensureIndex()
	i, ok := n.reactionIndex[id]
	return i, ok
}

// HasMetabolite reports whether the metabolite exists
func (n *Network) HasMetabolite(id string) bool {
	n.ensureIndex()
	_, ok := n.metaboliteIndex[id]
	return ok
}

// MetaboliteIndex returns the row position of a metabolite
func (n *Network) MetaboliteIndex(id string) (int, bool) {
	n.ensureIndex()
	i, ok := n.metaboliteIndex[id]
	return i, ok
}

// ReactionIDs returns reaction ids in network order
func (n *Network) ReactionIDs() []string {
	ids := make([]string, len(n.Reactions))
	for i, r := range n.Reactions {
		ids[i] = r.ID
	}
	return ids
}

// Objective returns the non-zero objective coefficients by reaction id
func (n *Network) Objective() map[string]float64 {
	obj := make(map[string]float64)
	for _, r := range n.Reactions {
		if r.ObjectiveCoefficient != 0 {
			obj[r.ID] = r.ObjectiveCoefficient
		}
	}
	return obj
}

// GeneRules returns reaction id -> gene-reaction rule
func (n *Network) GeneRules() map[string]string {
	rules := make(map[string]string, len(n.Reactions))
	for _, r := range n.Reactions {
		rules[r.ID] = r.GeneRule
	}
	return rules
}

// Copy returns a deep copy of the network
func (n *Network) Copy() *Network {
	out := &Network{
		ID:          n.ID,
		Name:        n.Name,
		Metabolites: append([]Metabolite(nil), n.Metabolites...),
		Reactions:   make([]Reaction, len(n.Reactions)),
	}
	for i, r := range n.Reactions {
		out.Reactions[i] = r.Copy()
	}
	out.reindex()
	return out
}

// RemoveOrphanMetabolites drops metabolites no reaction references
func (n *Network) RemoveOrphanMetabolites() {
	used := make(map[string]bool)
	for _, r := range n.Reactions {
		for mid, c := range r.Metabolites {
			if c != 0 {
				used[mid] = true
			}
		}
	}
	kept := n.Metabolites[:0]
	for _, m := range n.Metabolites {
		if used[m.ID] {
			kept = append(kept, m)
		}
	}
	n.Metabolites = kept
	n.reindex()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
