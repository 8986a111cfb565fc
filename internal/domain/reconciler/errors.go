package reconciler

import (
	"errors"
	"fmt"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// Record kinds reported by ValidationError.
const (
	KindClaim      = "claim"
	KindSettlement = "settlement"
)

// ValidationError reports a malformed input record. Validation runs before
// any matching, so a run that returns one has produced no output.
type ValidationError struct {
	Kind     string // KindClaim or KindSettlement
	RecordID string // Empty when the record has no id
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	id := e.RecordID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("invalid %s %s: %s: %s", e.Kind, id, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(kind, id, field, message string) *ValidationError {
	return &ValidationError{
		Kind:     kind,
		RecordID: id,
		Field:    field,
		Message:  message,
	}
}
