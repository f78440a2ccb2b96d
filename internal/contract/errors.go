package contract

import (
	"errors"
	"fmt"

	"github.com/autoops/kpiscope/schema"
)

// Sentinel errors for the analysis core.
var (
	// ErrValidation marks bad or missing required input. Fatal; the
	// pipeline halts before analysis.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientData marks a statistic that cannot be computed from
	// the points available. Recovered locally by omitting the record.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCorruptMemory marks an unreadable persisted memory file. Fatal;
	// the store never guesses at recovery.
	ErrCorruptMemory = errors.New("corrupt memory store")
)

// StageError wraps any failure inside a pipeline stage with the stage
// identity, so a failed run can report exactly where it halted.
type StageError struct {
	Stage schema.StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
