package timer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation does not apply to the
	// current phase. The session is left unchanged.
	ErrInvalidTransition = errors.New("invalid timer transition")
	// ErrSkipNotAllowed is returned when a timed session is skipped before the
	// progress threshold.
	ErrSkipNotAllowed = errors.New("not enough progress to skip")
)

func transitionErr(op string, phase Phase) error {
	return fmt.Errorf("%s while %s: %w", op, phase, ErrInvalidTransition)
}
