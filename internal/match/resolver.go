package match

import (
	"fmt"
	"sort"
	"strings"
)

// RedactMode selects how a merged span is rewritten in the output text.
type RedactMode string

const (
	// ModeMask replaces every covered rune with MaskRune, preserving the
	// text's overall length and the position of all non-matched runes.
	ModeMask RedactMode = "mask"
	// ModeToken replaces each span with the Token placeholder.
	ModeToken RedactMode = "token"
	// ModeDelete removes each span entirely.
	ModeDelete RedactMode = "delete"
	// ModeAnnotate wraps each span in braces, leaving the matched text in
	// place for a downstream rewriter to act on.
	ModeAnnotate RedactMode = "annotate"
)

// Policy configures the Resolver's replacement behavior.
type Policy struct {
	Mode     RedactMode `json:"mode"`
	MaskRune rune       `json:"-"`
	Token    string     `json:"token,omitempty"`
}

// DefaultPolicy masks covered runes with '*'.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeMask, MaskRune: '*'}
}

// Validate rejects contradictory or unknown policies before any scan output
// is rewritten.
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeMask:
		if p.MaskRune == 0 {
			return fmt.Errorf("%w: mask mode requires a mask rune", ErrInvalidPolicy)
		}
	case ModeToken:
		if p.Token == "" {
			return fmt.Errorf("%w: token mode requires a token", ErrInvalidPolicy)
		}
	case ModeDelete, ModeAnnotate:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, p.Mode)
	}
	return nil
}

// Span is a maximal run of rune offsets covered by one or more raw matches,
// with the sorted set of pattern ids that contributed to it.
type Span struct {
	Start      int   `json:"start"`
	End        int   `json:"end"`
	PatternIDs []int `json:"pattern_ids"`
}

// Resolve merges raw matches into minimal disjoint redaction spans and
// produces the rewritten text per policy. Matches are considered sorted by
// start ascending, then end descending, so the longest match anchored at a
// position drives the sweep; any match starting at or before the open
// span's end extends it. The returned spans cover exactly the runes that
// are part of at least one match.
func Resolve(matches []Match, text string, policy Policy) ([]Span, string, error) {
	if err := policy.Validate(); err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, text, nil
	}

	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	spans := []Span{{
		Start:      sorted[0].Start,
		End:        sorted[0].End,
		PatternIDs: []int{sorted[0].PatternID},
	}}
	for _, m := range sorted[1:] {
		last := &spans[len(spans)-1]
		if m.Start <= last.End {
			if m.End > last.End {
				last.End = m.End
			}
			last.PatternIDs = append(last.PatternIDs, m.PatternID)
			continue
		}
		spans = append(spans, Span{Start: m.Start, End: m.End, PatternIDs: []int{m.PatternID}})
	}
	for i := range spans {
		spans[i].PatternIDs = dedupSorted(spans[i].PatternIDs)
	}

	redacted := rewrite([]rune(text), spans, policy)
	return spans, redacted, nil
}

// rewrite applies the policy span by span, walking the original runes once.
func rewrite(runes []rune, spans []Span, policy Policy) string {
	var b strings.Builder
	b.Grow(len(runes))

	prev := 0
	for _, s := range spans {
		b.WriteString(string(runes[prev:s.Start]))
		switch policy.Mode {
		case ModeMask:
			for i := s.Start; i < s.End; i++ {
				b.WriteRune(policy.MaskRune)
			}
		case ModeToken:
			b.WriteString(policy.Token)
		case ModeAnnotate:
			b.WriteRune('{')
			b.WriteString(string(runes[s.Start:s.End]))
			b.WriteRune('}')
		case ModeDelete:
		}
		prev = s.End
	}
	b.WriteString(string(runes[prev:]))
	return b.String()
}

func dedupSorted(ids []int) []int {
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
