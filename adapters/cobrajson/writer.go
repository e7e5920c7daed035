package cobrajson

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"gocorda/domain/network"
)

type document struct {
	ID          string               `json:"id"`
	Name        string               `json:"name,omitempty"`
	Metabolites []network.Metabolite `json:"metabolites"`
	Reactions   []network.Reaction   `json:"reactions"`
	Genes       []gene               `json:"genes"`
	Version     string               `json:"version"`
}

type gene struct {
	ID string `json:"id"`
}

// Write encodes n as COBRA JSON. Genes are collected from the reaction rules.
func Write(w io.Writer, n *network.Network) error {
	doc := document{
		ID:          n.ID,
		Name:        n.Name,
		Metabolites: n.Metabolites,
		Reactions:   n.Reactions,
		Genes:       genesOf(n),
		Version:     "1",
	}
	if doc.Metabolites == nil {
		doc.Metabolites = []network.Metabolite{}
	}
	if doc.Reactions == nil {
		doc.Reactions = []network.Reaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteFile writes n to path
func WriteFile(path string, n *network.Network) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, n); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func genesOf(n *network.Network) []gene {
	seen := map[string]bool{}
	out := []gene{}
	for _, r := range n.Reactions {
		for _, tok := range strings.FieldsFunc(r.GeneRule, func(c rune) bool {
			return c == '(' || c == ')' || c == ' ' || c == '\t'
		}) {
			if strings.EqualFold(tok, "and") || strings.EqualFold(tok, "or") || seen[tok] {
				continue
			}
			seen[tok] = true
			out = append(out, gene{ID: tok})
		}
	}
	return out
}
