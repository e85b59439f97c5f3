package exam

import (
	"errors"
	"fmt"
)

// ErrImageRead is returned when a captured photo cannot be read; the session is left untouched.
var ErrImageRead = errors.New("read page image")

// AnalysisError is a failed number/set or type-change detection. It never leaves the
// processor: the detection degrades to an empty result and a voice message.
type AnalysisError struct {
	Kind string // "numbers" | "type_change"
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
