package match

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func buildSet(t *testing.T, caseInsensitive bool, terms ...string) *Automaton {
	t.Helper()
	ps := NewPatternSet(caseInsensitive)
	for i, term := range terms {
		if err := ps.Add(i, term); err != nil {
			t.Fatalf("Add(%q): %v", term, err)
		}
	}
	a, err := Build(ps)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func TestBuild(t *testing.T) {
	t.Run("EmptyPatternRejected", func(t *testing.T) {
		ps := NewPatternSet(false)
		if err := ps.Add(0, ""); !errors.Is(err, ErrEmptyPattern) {
			t.Fatalf("expected ErrEmptyPattern, got %v", err)
		}
	})

	t.Run("EmptyVocabulary", func(t *testing.T) {
		a, err := Build(NewPatternSet(false))
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		matches, err := a.Scan("nothing to find here")
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("empty vocabulary matched: %v", matches)
		}
	})

	t.Run("StateCount", func(t *testing.T) {
		// "he", "her", "his" share the 'h' edge: root + h,e,r,i,s = 6.
		a := buildSet(t, false, "he", "her", "his")
		if a.Size() != 6 {
			t.Errorf("Size() = %d, want 6", a.Size())
		}
	})
}

func TestScanExactness(t *testing.T) {
	terms := []string{"he", "she", "his", "hers"}
	a := buildSet(t, false, terms...)
	text := "ushers"

	matches, err := a.Scan(text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// Every reported match must reproduce its pattern text.
	runes := []rune(text)
	for _, m := range matches {
		got := string(runes[m.Start:m.End])
		if got != terms[m.PatternID] {
			t.Errorf("match %+v covers %q, want %q", m, got, terms[m.PatternID])
		}
	}

	want := []Match{
		{PatternID: 0, Start: 2, End: 4}, // he
		{PatternID: 1, Start: 1, End: 4}, // she
		{PatternID: 3, Start: 2, End: 6}, // hers
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("Scan(%q) = %v, want %v", text, matches, want)
	}
}

func TestScanSuffixProperty(t *testing.T) {
	// "c" is a suffix of "abc"; both must be reported at the same end.
	a := buildSet(t, false, "abc", "c")
	matches, err := a.Scan("xxabcxx")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Match{
		{PatternID: 0, Start: 2, End: 5},
		{PatternID: 1, Start: 4, End: 5},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("Scan = %v, want %v", matches, want)
	}
}

func TestScanOverlap(t *testing.T) {
	a := buildSet(t, false, "abc", "bcd")
	matches, err := a.Scan("xabcdx")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Match{
		{PatternID: 0, Start: 1, End: 4},
		{PatternID: 1, Start: 2, End: 5},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("Scan = %v, want %v", matches, want)
	}
}

func TestScanDuplicateTerms(t *testing.T) {
	// Same text under two ids: both must be reported for every occurrence.
	ps := NewPatternSet(false)
	for _, id := range []int{7, 3} {
		if err := ps.Add(id, "dup"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	a, err := Build(ps)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	matches, err := a.Scan("dup and dup")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Match{
		{PatternID: 3, Start: 0, End: 3},
		{PatternID: 7, Start: 0, End: 3},
		{PatternID: 3, Start: 8, End: 11},
		{PatternID: 7, Start: 8, End: 11},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("Scan = %v, want %v", matches, want)
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	a := buildSet(t, true, "bad")
	text := "This is BAD."

	matches, err := a.Scan(text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Match{{PatternID: 0, Start: 8, End: 11}}
	if !reflect.DeepEqual(matches, want) {
		t.Fatalf("Scan = %v, want %v", matches, want)
	}

	// Offsets refer to the original text with its original casing.
	if got := text[matches[0].Start:matches[0].End]; got != "BAD" {
		t.Errorf("covered text = %q, want BAD", got)
	}
}

func TestScanUnicodeOffsets(t *testing.T) {
	// Offsets are rune indices, not byte indices.
	a := buildSet(t, false, "违禁")
	matches, err := a.Scan("文本中的违禁词")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Match{{PatternID: 0, Start: 4, End: 6}}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("Scan = %v, want %v", matches, want)
	}
}

func TestScanNotBuilt(t *testing.T) {
	var a *Automaton
	if _, err := a.Scan("text"); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("expected ErrNotBuilt, got %v", err)
	}
}

func TestBuildOrderIndependence(t *testing.T) {
	terms := []string{"a", "ab", "abc", "bc", "c", "cab", "ba"}
	texts := []string{"abcabc", "cabba", "", "zzz", "aabbccabc"}

	reference := buildSet(t, false, terms...)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		perm := rng.Perm(len(terms))
		ps := NewPatternSet(false)
		for _, idx := range perm {
			if err := ps.Add(idx, terms[idx]); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
		a, err := Build(ps)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		for _, text := range texts {
			want, _ := reference.Scan(text)
			got, _ := a.Scan(text)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("permutation %v on %q: got %v, want %v", perm, text, got, want)
			}
		}
	}
}

func TestContains(t *testing.T) {
	a := buildSet(t, false, "needle")
	if ok, _ := a.Contains("a haystack with a needle inside"); !ok {
		t.Error("Contains missed the needle")
	}
	if ok, _ := a.Contains("a clean haystack"); ok {
		t.Error("Contains reported a false positive")
	}
}

func TestScanLongSharedPrefix(t *testing.T) {
	// Deep trie with long shared prefixes exercises the BFS link
	// construction without recursion depth concerns.
	prefix := strings.Repeat("a", 200)
	a := buildSet(t, false, prefix, prefix+"b", "ab")

	matches, err := a.Scan(prefix + "b")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// prefix at [0,200), "ab" at [199,201), prefix+"b" at [0,201).
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3: %v", len(matches), matches)
	}
}
