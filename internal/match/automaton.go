package match

import "sort"

// root is the index of the root node in the arena. The zero value of a
// failure link therefore points at the root, which is also the root's own
// failure target.
const root int32 = 0

// node is a single automaton state. Trie edges in next are the only owning
// relationships in the graph; fail is a plain index into the arena, so the
// goto+fail graph stays cycle-free from an ownership point of view.
type node struct {
	next  map[rune]int32
	fail  int32
	depth int32
	out   []int // pattern ids completing at this state, after output merging
}

// Automaton is a compiled multi-pattern matcher. It is immutable once Build
// returns and safe for any number of concurrent Scan calls. Vocabulary
// updates are handled by building a new Automaton and swapping the
// reference, never by mutating an existing one.
type Automaton struct {
	nodes           []node
	lengths         map[int]int    // pattern id -> rune length
	terms           map[int]string // pattern id -> literal text
	caseInsensitive bool
}

// Build compiles a PatternSet into an Automaton. An empty set builds a
// valid automaton that matches nothing. The result is a pure function of
// the set's contents: insertion order never changes scan results.
func Build(ps *PatternSet) (*Automaton, error) {
	a := &Automaton{
		nodes:           []node{{next: make(map[rune]int32)}},
		lengths:         make(map[int]int, ps.Len()),
		terms:           make(map[int]string, ps.Len()),
		caseInsensitive: ps.caseInsensitive,
	}

	// Phase 1: trie construction.
	for _, p := range ps.patterns {
		if len(p.runes) == 0 {
			return nil, ErrEmptyPattern
		}
		cur := root
		for _, r := range p.runes {
			child, ok := a.nodes[cur].next[r]
			if !ok {
				child = int32(len(a.nodes))
				a.nodes = append(a.nodes, node{
					next:  make(map[rune]int32),
					depth: a.nodes[cur].depth + 1,
				})
				a.nodes[cur].next[r] = child
			}
			cur = child
		}
		a.nodes[cur].out = append(a.nodes[cur].out, p.ID)
		a.lengths[p.ID] = len(p.runes)
		a.terms[p.ID] = p.Text
	}

	// Phase 2+3: breadth-first failure links and output merging. BFS order
	// guarantees a node's failure target (strictly shallower) is finalized
	// before the node itself, so the effective output set can be merged in
	// the same pass.
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[root].next {
		a.nodes[child].fail = root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		if f := a.nodes[u].fail; len(a.nodes[f].out) > 0 {
			a.nodes[u].out = append(a.nodes[u].out, a.nodes[f].out...)
		}
		sort.Ints(a.nodes[u].out)

		for r, child := range a.nodes[u].next {
			f := a.nodes[u].fail
			for f != root {
				if _, ok := a.nodes[f].next[r]; ok {
					break
				}
				f = a.nodes[f].fail
			}
			if target, ok := a.nodes[f].next[r]; ok && target != child {
				a.nodes[child].fail = target
			} else {
				a.nodes[child].fail = root
			}
			queue = append(queue, child)
		}
	}

	return a, nil
}

// Size returns the number of automaton states, root included.
func (a *Automaton) Size() int {
	return len(a.nodes)
}

// Patterns returns the number of distinct pattern ids compiled in.
func (a *Automaton) Patterns() int {
	return len(a.lengths)
}

// Term returns the literal text of a compiled pattern id.
func (a *Automaton) Term(id int) (string, bool) {
	t, ok := a.terms[id]
	return t, ok
}
