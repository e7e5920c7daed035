// Package cobrajson reads and writes metabolic models in the COBRA JSON format.
package cobrajson

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"gocorda/domain/network"
	"gocorda/internal/errors"
)

// Defaults applied to reactions that omit their bounds
const (
	DefaultLowerBound = 0
	DefaultUpperBound = network.DefaultBound
)

// ReadFile loads a COBRA JSON model from disk
func ReadFile(path string) (*network.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read model: %w", err))
	}
	return Read(data)
}

// Read parses a COBRA JSON document
func Read(data []byte) (*network.Network, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.InvalidInput("model is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	reactions := doc.Get("reactions")
	if !reactions.IsArray() {
		return nil, errors.InvalidInput("model has no reactions array")
	}

	n := network.New(doc.Get("id").String(), doc.Get("name").String())

	var err error
	doc.Get("metabolites").ForEach(func(_, m gjson.Result) bool {
		err = n.AddMetabolite(network.Metabolite{
			ID:          m.Get("id").String(),
			Name:        m.Get("name").String(),
			Compartment: m.Get("compartment").String(),
		})
		return err == nil
	})
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	reactions.ForEach(func(_, r gjson.Result) bool {
		var rxn network.Reaction
		rxn, err = parseReaction(r)
		if err == nil {
			err = n.AddReaction(rxn)
		}
		return err == nil
	})
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return n, nil
}

func parseReaction(r gjson.Result) (network.Reaction, error) {
	id := r.Get("id").String()
	if id == "" {
		return network.Reaction{}, fmt.Errorf("reaction without id: %s", r.Raw)
	}
	rxn := network.Reaction{
		ID:                   id,
		Name:                 r.Get("name").String(),
		Metabolites:          map[string]float64{},
		LowerBound:           DefaultLowerBound,
		UpperBound:           DefaultUpperBound,
		GeneRule:             r.Get("gene_reaction_rule").String(),
		ObjectiveCoefficient: r.Get("objective_coefficient").Float(),
	}
	if lb := r.Get("lower_bound"); lb.Exists() {
		rxn.LowerBound = lb.Float()
	}
	if ub := r.Get("upper_bound"); ub.Exists() {
		rxn.UpperBound = ub.Float()
	}

	var err error
	r.Get("metabolites").ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.Number {
			err = fmt.Errorf("reaction %s: coefficient of %s is not a number", id, k.String())
			return false
		}
		rxn.Metabolites[k.String()] = v.Float()
		return true
	})
	return rxn, err
}

// GeneIDs lists the gene ids declared in a COBRA JSON document
func GeneIDs(data []byte) []string {
	var ids []string
	gjson.GetBytes(data, "genes.#.id").ForEach(func(_, g gjson.Result) bool {
		ids = append(ids, g.String())
		return true
	})
	return ids
}
