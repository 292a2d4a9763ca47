package supply

import (
	"errors"
	"fmt"
)

// Entity-scoped pipeline failures. Each aborts only the army being evaluated.
var (
	ErrInvalidNumericValue    = errors.New("invalid numeric value")
	ErrNonPositiveConsumption = errors.New("daily consumption must be greater than zero")
	ErrMissingCellData        = errors.New("missing cell data")
)

// NumericError reports a required cell that could not be read as a number.
type NumericError struct {
	Field string
	Value string
	Err   error
}

func (e *NumericError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v: %q", e.Field, e.Err, e.Value)
}

func (e *NumericError) Unwrap() error { return e.Err }
