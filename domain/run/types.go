// Package run holds the persisted record of a reconstruction run.
package run

import (
	"fmt"

	"gocorda/domain/core"
)

// Parameters are the engine settings a run used
type Parameters struct {
	N             int      `json:"n" db:"n"`
	PenaltyFactor float64  `json:"penalty_factor" db:"penalty_factor"`
	Support       int      `json:"support" db:"support"`
	TFlux         float64  `json:"tflux" db:"tflux"`
	Targets       []string `json:"targets,omitempty"`
}

// Fingerprint identifies the inputs of a run so identical runs can be recognized
type Fingerprint struct {
	ModelHash      core.Hash `json:"model_hash"`
	ConfidenceHash core.Hash `json:"confidence_hash"`
	ParameterHash  core.Hash `json:"parameter_hash"`
	CodeVersion    string    `json:"code_version"`
	Fingerprint    core.Hash `json:"fingerprint"` // Hash of all above
}

// NewFingerprint combines the component hashes
func NewFingerprint(modelHash, confidenceHash core.Hash, params Parameters, codeVersion string) Fingerprint {
	paramHash := core.HashFields(
		fmt.Sprintf("n:%d", params.N),
		fmt.Sprintf("pf:%g", params.PenaltyFactor),
		fmt.Sprintf("support:%d", params.Support),
		fmt.Sprintf("tflux:%g", params.TFlux),
		fmt.Sprintf("targets:%v", params.Targets),
	)

	return Fingerprint{
		ModelHash:      modelHash,
		ConfidenceHash: confidenceHash,
		ParameterHash:  paramHash,
		CodeVersion:    codeVersion,
		Fingerprint: core.HashFields(
			"model:"+modelHash.String(),
			"confidence:"+confidenceHash.String(),
			"params:"+paramHash.String(),
			"code:"+codeVersion,
		),
	}
}

// ReactionResult is the outcome for one reaction of the reference network
type ReactionResult struct {
	ReactionID  string `json:"reaction_id" db:"reaction_id"`
	Initial     int    `json:"initial" db:"initial_confidence"`
	Final       int    `json:"final" db:"final_confidence"`
	Included    bool   `json:"included" db:"included"`
	Redundancy  int    `json:"redundancy" db:"redundancy"`
	Impossible  bool   `json:"impossible" db:"impossible"`
	IsMockEntry bool   `json:"mock,omitempty" db:"mock"`
}
