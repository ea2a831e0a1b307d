package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Dataset construction errors
	ErrMisaligned = errors.New("dataset columns are not row-aligned")
	ErrEmptyTable = errors.New("dataset has no rows")

	// Severity errors
	ErrBadSeverity = errors.New("unknown severity level")

	// Classifier errors
	ErrFitFailed        = errors.New("classifier fit failed")
	ErrDegenerateLabels = fmt.Errorf("%w: labels contain fewer than two classes", ErrFitFailed)
	ErrNonFiniteInput   = fmt.Errorf("%w: non-finite values in design matrix", ErrFitFailed)
	ErrEmptyFit         = fmt.Errorf("%w: no training rows", ErrFitFailed)
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrFitFailed)
}

func IsAlignmentError(err error) bool {
	return errors.Is(err, ErrMisaligned) || errors.Is(err, ErrEmptyTable)
}
