package tuner

import (
	"fmt"

	"modeltune/pkg/types"
)

// ladderExhaustedError signals that the shrink ladder ran out (or the
// attempt bound was hit) before the model loaded.
type ladderExhaustedError struct {
	alias string
	cfg   types.RuntimeConfig
}

func (e ladderExhaustedError) Error() string {
	return fmt.Sprintf("tuning exhausted for %s at ctx=%d batch=%d: model does not fit; try a smaller quantization",
		e.alias, e.cfg.ContextLength, e.cfg.BatchSize)
}

// ErrLadderExhausted constructs a ladderExhaustedError.
func ErrLadderExhausted(alias string, cfg types.RuntimeConfig) error {
	return ladderExhaustedError{alias: alias, cfg: cfg}
}

// IsLadderExhausted reports whether err indicates an exhausted shrink ladder.
func IsLadderExhausted(err error) bool {
	_, ok := err.(ladderExhaustedError)
	return ok
}

// busyError signals that a tuning session is already in flight. Probe
// outcomes are only meaningful while one session owns the accelerator, so
// sessions are strictly serialized.
type busyError struct{ alias string }

func (e busyError) Error() string { return "tuning already in progress: " + e.alias }

// ErrBusy constructs a busyError for the alias currently being tuned.
func ErrBusy(alias string) error { return busyError{alias: alias} }

// IsBusy reports whether err indicates a session already in flight.
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}
