package match

import (
	"fmt"
	"unicode"
)

// Pattern is a single vocabulary entry: the literal text as loaded, the
// normalized rune sequence the automaton is built from, and an opaque id
// assigned by the loader.
type Pattern struct {
	ID   int
	Text string

	runes []rune
}

// Len returns the pattern length in runes.
func (p Pattern) Len() int {
	return len(p.runes)
}

// PatternSet is a validated collection of patterns. Normalization is applied
// exactly once, at Add time, so the builder and scanner always agree on the
// transform. Duplicate text under different ids is legal; both ids are
// reported for every occurrence.
type PatternSet struct {
	caseInsensitive bool
	patterns        []Pattern
}

// NewPatternSet creates an empty PatternSet. When caseInsensitive is set,
// pattern runes are folded with unicode.ToLower at ingestion and the scanner
// folds input runes the same way.
func NewPatternSet(caseInsensitive bool) *PatternSet {
	return &PatternSet{caseInsensitive: caseInsensitive}
}

// Add validates and normalizes a pattern. Empty text fails with
// ErrEmptyPattern before the pattern can reach a build.
func (ps *PatternSet) Add(id int, text string) error {
	if text == "" {
		return fmt.Errorf("%w (id %d)", ErrEmptyPattern, id)
	}

	runes := []rune(text)
	if ps.caseInsensitive {
		for i, r := range runes {
			runes[i] = unicode.ToLower(r)
		}
	}

	ps.patterns = append(ps.patterns, Pattern{ID: id, Text: text, runes: runes})
	return nil
}

// Len returns the number of patterns in the set.
func (ps *PatternSet) Len() int {
	return len(ps.patterns)
}

// CaseInsensitive reports whether the set was normalized with case folding.
func (ps *PatternSet) CaseInsensitive() bool {
	return ps.caseInsensitive
}

// foldRune applies the scan-time transform matching the set's normalization.
func foldRune(r rune, caseInsensitive bool) rune {
	if caseInsensitive {
		return unicode.ToLower(r)
	}
	return r
}
