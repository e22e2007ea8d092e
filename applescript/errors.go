package applescript

import (
	"errors"
	"fmt"
)

// ErrCycle is reported by Dumps when a container directly or indirectly
// contains itself.
var ErrCycle = errors.New("cycle detected while serializing AppleScript value")

// ParseError reports a grammar violation in literal source text. Position is
// the zero-based character offset where parsing diverged.
type ParseError struct {
	Message  string
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (position %d).", e.Message, e.Position)
}

// DecodeError reports a structurally valid raw tree that does not satisfy the
// requested schema. The originating validation failure is attached as the
// cause and available through Unwrap.
type DecodeError struct {
	Source   string
	Expected string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("AppleScript value %q does not match expected type %s: %v",
		e.Source, e.Expected, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
