package run

import (
	"gocorda/domain/core"
)

// Status is the lifecycle state of a run record
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Record is the stored result of one reconstruction
type Record struct {
	ID          core.RunID       `json:"id"`
	ModelID     string           `json:"model_id"`
	ModelName   string           `json:"model_name,omitempty"`
	Status      Status           `json:"status"`
	Parameters  Parameters       `json:"parameters"`
	Fingerprint Fingerprint      `json:"fingerprint"`
	Included    int              `json:"included"`
	Total       int              `json:"total"`
	Solves      int              `json:"solves"`
	Report      string           `json:"report"`
	Error       string           `json:"error,omitempty"`
	Reactions   []ReactionResult `json:"reactions,omitempty"`
	CreatedAt   core.Timestamp   `json:"created_at"`
	DurationMS  int64            `json:"duration_ms"`
}

// NewRecord starts a record with a fresh id
func NewRecord(modelID, modelName string, params Parameters, fp Fingerprint) *Record {
	return &Record{
		ID:          core.NewRunID(),
		ModelID:     modelID,
		ModelName:   modelName,
		Status:      StatusComplete,
		Parameters:  params,
		Fingerprint: fp,
		CreatedAt:   core.Now(),
	}
}

// IncludedIDs lists the included non-mock reactions in stored order
func (r *Record) IncludedIDs() []string {
	var ids []string
	for _, rr := range r.Reactions {
		if rr.Included && !rr.IsMockEntry {
			ids = append(ids, rr.ReactionID)
		}
	}
	return ids
}

// Validate checks if the record is complete
func (r *Record) Validate() error {
	if r.ID.IsEmpty() {
		return core.NewValidationError("run", "id cannot be empty")
	}
	if r.ModelID == "" {
		return core.NewValidationError("run", "model_id cannot be empty")
	}
	if r.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("run", "fingerprint cannot be empty")
	}
	if r.Status != StatusComplete && r.Status != StatusFailed {
		return core.NewValidationError("run", "unknown status "+string(r.Status))
	}
	return nil
}
