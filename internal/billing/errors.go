package billing

import (
	"errors"

	"github.com/diewo77/facturation/internal/validation"
)

// ErrNotFound reports an operation on an invoice id that does not exist.
var ErrNotFound = errors.New("invoice not found")

// ValidationError carries the per-field violations that rejected an input
// before any persistence call was made.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Violations.String()
}
