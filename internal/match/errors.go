package match

import "errors"

var (
	// ErrEmptyPattern is returned when a pattern with empty text is added
	// to a PatternSet.
	ErrEmptyPattern = errors.New("match: empty pattern text")

	// ErrNotBuilt is returned when a scan is attempted against a nil or
	// unbuilt automaton.
	ErrNotBuilt = errors.New("match: automaton not built")

	// ErrInvalidPolicy is returned when a redaction policy is contradictory
	// or names an unknown mode.
	ErrInvalidPolicy = errors.New("match: invalid redaction policy")
)
