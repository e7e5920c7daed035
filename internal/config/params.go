package config

import (
	"fmt"
	"os"

	"gocorda/domain/network"
	"gocorda/internal/corda"
	"gocorda/internal/errors"

	"gopkg.in/yaml.v3"
)

// Params is a YAML parameter file. Unset fields keep the engine defaults.
//
//	n: 5
//	penalty_factor: 100
//	support: 5
//	tflux: 1
//	targets:
//	  - atp_c
//	  - "adp_c + pi_c -> atp_c"
//	  - {adp_c: -1, pi_c: -1, atp_c: 1}
type Params struct {
	N             *int     `yaml:"n"`
	PenaltyFactor *float64 `yaml:"penalty_factor"`
	Support       *int     `yaml:"support"`
	TFlux         *float64 `yaml:"tflux"`
	Tolerance     *float64 `yaml:"tolerance"`
	Targets       []any    `yaml:"targets"`
}

// LoadParams reads a YAML parameter file
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read params: %w", err))
	}
	return ParseParams(data)
}

// ParseParams decodes YAML parameters
func ParseParams(data []byte) (*Params, error) {
	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("invalid params: %w", err))
	}
	return &p, nil
}

// ParseTargets converts loosely typed targets from YAML or JSON
func ParseTargets(raw []any) ([]network.Target, error) {
	targets := make([]network.Target, 0, len(raw))
	for i, v := range raw {
		t, err := network.ParseTarget(normalize(v))
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("target %d: %w", i, err))
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// normalize turns yaml's map[interface{}]interface{} into map[string]any
func normalize(v any) any {
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[fmt.Sprint(k)] = val
	}
	return out
}

// Options builds reconstruction options from the engine defaults
func (e EngineConfig) Options() corda.Options {
	opts := corda.DefaultOptions()
	opts.N = e.N
	opts.PenaltyFactor = e.PenaltyFactor
	opts.Support = e.Support
	opts.TFlux = e.TFlux
	opts.Tolerance = e.Tolerance
	return opts
}

// Apply overrides opts with every field set in the file
func (p *Params) Apply(opts *corda.Options) error {
	if p.N != nil {
		opts.N = *p.N
	}
	if p.PenaltyFactor != nil {
		opts.PenaltyFactor = *p.PenaltyFactor
	}
	if p.Support != nil {
		opts.Support = *p.Support
	}
	if p.TFlux != nil {
		opts.TFlux = *p.TFlux
	}
	if p.Tolerance != nil {
		opts.Tolerance = *p.Tolerance
	}
	if len(p.Targets) > 0 {
		targets, err := ParseTargets(p.Targets)
		if err != nil {
			return err
		}
		opts.Targets = targets
	}
	return nil
}
