package paths

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for path sampling operations.
var (
	// ErrMaxLength indicates the engine hit its frame budget before the
	// stopping condition was met.
	ErrMaxLength = errors.New("paths: trajectory exceeded max length")

	// ErrUnstable indicates the integrator produced a non-physical
	// state (NaN or Inf).
	ErrUnstable = errors.New("paths: engine unstable (invalid state)")

	// ErrNoEngine indicates an operation needed trajectory generation
	// but no engine was configured.
	ErrNoEngine = errors.New("paths: no engine configured")

	// ErrNotDecorrelated indicates the decorrelation step budget ran
	// out before the active paths broke free of their references.
	ErrNotDecorrelated = errors.New("paths: decorrelation budget exhausted")
)

// IsEngineFailure reports whether err is a per-step engine failure that
// the run loop should absorb as a rejected move rather than escalate.
func IsEngineFailure(err error) bool {
	return errors.Is(err, ErrMaxLength) || errors.Is(err, ErrUnstable)
}

// IncompleteInitializationError is returned by bootstrap when one or
// more required ensembles could not be populated within the retry
// budget. Fatal to setup: the simulation must not start.
type IncompleteInitializationError struct {
	Missing []string
	Retries int
}

func (e *IncompleteInitializationError) Error() string {
	return fmt.Sprintf("incomplete initial conditions: no valid trajectory for %s after %d retries",
		strings.Join(e.Missing, ", "), e.Retries)
}

// StorageWriteError wraps a failed append to the step store. Always
// fatal: a gap in the persisted history cannot be tolerated.
type StorageWriteError struct {
	Op  string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed during %s: %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
