package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrReactionNotFound   = fmt.Errorf("reaction %w", ErrNotFound)
	ErrMetaboliteNotFound = fmt.Errorf("metabolite %w", ErrNotFound)
	ErrRunNotFound        = fmt.Errorf("run %w", ErrNotFound)
)

// ErrValidation is wrapped by every input error below, so a single
// errors.Is check classifies them.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidConfidence = fmt.Errorf("%w: confidence level", ErrValidation)
	ErrInvalidRule       = fmt.Errorf("%w: gene-reaction rule", ErrValidation)
	ErrInvalidReaction   = fmt.Errorf("%w: reaction string", ErrValidation)
	ErrInvalidTarget     = fmt.Errorf("%w: production target", ErrValidation)
	ErrDuplicateID       = fmt.Errorf("%w: duplicate identifier", ErrValidation)
)

// NewValidationError reports a bad value for field
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
