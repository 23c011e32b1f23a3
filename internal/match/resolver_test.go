package match

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveMerge(t *testing.T) {
	t.Run("OverlappingMatches", func(t *testing.T) {
		a := buildSet(t, false, "abc", "bcd")
		text := "xabcdx"

		matches, err := a.Scan(text)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}

		spans, redacted, err := Resolve(matches, text, DefaultPolicy())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		wantSpans := []Span{{Start: 1, End: 5, PatternIDs: []int{0, 1}}}
		if !reflect.DeepEqual(spans, wantSpans) {
			t.Errorf("spans = %v, want %v", spans, wantSpans)
		}
		if redacted != "x****x" {
			t.Errorf("redacted = %q, want x****x", redacted)
		}
	})

	t.Run("AdjacentSpansTouchingMerge", func(t *testing.T) {
		// A match starting exactly at the open span's end extends it.
		matches := []Match{
			{PatternID: 0, Start: 0, End: 2},
			{PatternID: 1, Start: 2, End: 4},
		}
		spans, _, err := Resolve(matches, "abcd", DefaultPolicy())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 4 {
			t.Errorf("spans = %v, want single [0,4)", spans)
		}
	})

	t.Run("DisjointSpansStaySeparate", func(t *testing.T) {
		matches := []Match{
			{PatternID: 0, Start: 0, End: 2},
			{PatternID: 1, Start: 3, End: 5},
		}
		spans, redacted, err := Resolve(matches, "abxcd", DefaultPolicy())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if len(spans) != 2 {
			t.Fatalf("spans = %v, want 2", spans)
		}
		if redacted != "**x**" {
			t.Errorf("redacted = %q, want **x**", redacted)
		}
	})

	t.Run("ContainedMatchAbsorbed", func(t *testing.T) {
		// Longest-first tie-break at a shared start: the shorter match is
		// absorbed, both ids reported.
		matches := []Match{
			{PatternID: 1, Start: 0, End: 2},
			{PatternID: 0, Start: 0, End: 5},
		}
		spans, _, err := Resolve(matches, "abcde", DefaultPolicy())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		want := []Span{{Start: 0, End: 5, PatternIDs: []int{0, 1}}}
		if !reflect.DeepEqual(spans, want) {
			t.Errorf("spans = %v, want %v", spans, want)
		}
	})

	t.Run("NoMatches", func(t *testing.T) {
		spans, redacted, err := Resolve(nil, "untouched", DefaultPolicy())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if spans != nil || redacted != "untouched" {
			t.Errorf("got spans=%v redacted=%q", spans, redacted)
		}
	})
}

func TestResolvePolicies(t *testing.T) {
	a := buildSet(t, false, "secret")
	text := "a secret plan"
	matches, err := a.Scan(text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	cases := []struct {
		name   string
		policy Policy
		want   string
	}{
		{"Mask", Policy{Mode: ModeMask, MaskRune: '#'}, "a ###### plan"},
		{"Token", Policy{Mode: ModeToken, Token: "[REDACTED]"}, "a [REDACTED] plan"},
		{"Delete", Policy{Mode: ModeDelete}, "a  plan"},
		{"Annotate", Policy{Mode: ModeAnnotate}, "a {secret} plan"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, redacted, err := Resolve(matches, text, tc.policy)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if redacted != tc.want {
				t.Errorf("redacted = %q, want %q", redacted, tc.want)
			}
		})
	}
}

func TestResolvePolicyValidation(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
	}{
		{"UnknownMode", Policy{Mode: "scramble"}},
		{"MaskWithoutRune", Policy{Mode: ModeMask}},
		{"TokenWithoutToken", Policy{Mode: ModeToken}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Resolve([]Match{{Start: 0, End: 1}}, "x", tc.policy)
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestRedactionIdempotence(t *testing.T) {
	a := buildSet(t, false, "bad", "worse", "adw")
	text := "bad input, worse output, badworse both"

	matches, err := a.Scan(text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	_, redacted, err := Resolve(matches, text, DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	again, err := a.Scan(redacted)
	if err != nil {
		t.Fatalf("Scan(redacted): %v", err)
	}
	if len(again) != 0 {
		t.Errorf("redacted text still matches: %v (text %q)", again, redacted)
	}
}

func TestResolveUnicodeMask(t *testing.T) {
	a := buildSet(t, false, "违禁")
	text := "文本中的违禁词"
	matches, err := a.Scan(text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	_, redacted, err := Resolve(matches, text, DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if redacted != "文本中的**词" {
		t.Errorf("redacted = %q", redacted)
	}
}
