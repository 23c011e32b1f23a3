package match

// Match is a single raw hit: the pattern id plus the [Start, End) rune
// offsets in the original, unnormalized input text.
type Match struct {
	PatternID int `json:"pattern_id"`
	Start     int `json:"start"`
	End       int `json:"end"`
}

// Scan runs text through the automaton in a single left-to-right pass and
// returns every occurrence of every pattern, in increasing end-offset order.
// Matches whose end offsets coincide are ordered by pattern id. Offsets are
// rune indices of the original text even in case-insensitive mode.
//
// Total work is O(len(text) + number of matches): the retreat loop is
// amortized constant per rune because node depth strictly decreases on each
// failure step and increases by at most one per consumed rune.
func (a *Automaton) Scan(text string) ([]Match, error) {
	if a == nil || len(a.nodes) == 0 {
		return nil, ErrNotBuilt
	}

	var matches []Match
	cur := root
	i := 0
	for _, r := range text {
		r = foldRune(r, a.caseInsensitive)

		for cur != root {
			if _, ok := a.nodes[cur].next[r]; ok {
				break
			}
			cur = a.nodes[cur].fail
		}
		if child, ok := a.nodes[cur].next[r]; ok {
			cur = child
		}

		for _, id := range a.nodes[cur].out {
			end := i + 1
			matches = append(matches, Match{
				PatternID: id,
				Start:     end - a.lengths[id],
				End:       end,
			})
		}
		i++
	}

	return matches, nil
}

// Contains reports whether text contains at least one pattern occurrence,
// stopping at the first hit.
func (a *Automaton) Contains(text string) (bool, error) {
	if a == nil || len(a.nodes) == 0 {
		return false, ErrNotBuilt
	}

	cur := root
	for _, r := range text {
		r = foldRune(r, a.caseInsensitive)

		for cur != root {
			if _, ok := a.nodes[cur].next[r]; ok {
				break
			}
			cur = a.nodes[cur].fail
		}
		if child, ok := a.nodes[cur].next[r]; ok {
			cur = child
		}
		if len(a.nodes[cur].out) > 0 {
			return true, nil
		}
	}
	return false, nil
}
