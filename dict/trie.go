package dict

import (
	"fmt"

	"github.com/npillmayer/ngram/csr"
	"github.com/npillmayer/ngram/vocab"
)

// trieNode is one prefix in the arena. Children are kept as two parallel
// vectors sorted by token id: keys hold the ids, kids the arena indices.
type trieNode struct {
	id    int32
	count uint32
	keys  []int32
	kids  []int32
}

// Trie is the mutable n-gram dictionary.
//
// Nodes live in a growable arena; node 0 is the root. A node at depth d
// represents an n-gram of length d.
type Trie struct {
	order      int
	vocab      *vocab.Vocabulary
	nodes      []trieNode // nil after compaction
	generation uint64
}

var _ Dictionary = (*Trie)(nil)

// NewTrie creates an empty mutable dictionary for n-grams up to length
// order. If v is nil, a growable vocabulary is created.
func NewTrie(order int, v *vocab.Vocabulary) (*Trie, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: %d", ErrOrder, order)
	}
	if v == nil {
		v = vocab.New()
	}
	return &Trie{
		order: order,
		vocab: v,
		nodes: []trieNode{{id: -1}},
	}, nil
}

// MaxOrder is the maximum n-gram length.
func (t *Trie) MaxOrder() int { return t.order }

// Vocabulary returns the token/id mapping of this dictionary.
func (t *Trie) Vocabulary() *vocab.Vocabulary { return t.vocab }

// Generation changes with every successful insertion.
func (t *Trie) Generation() uint64 { return t.generation }

func (t *Trie) compacted() bool { return t.nodes == nil }

// child returns the arena index of the child of n with token id, or -1.
func (t *Trie) child(n int, id int32) int {
	node := &t.nodes[n]
	at := csr.FindIndex(node.keys, id, 0, len(node.keys))
	if at < 0 {
		return -1
	}
	return int(node.kids[at])
}

// Insert increments the count of seq[start:end], creating missing nodes on
// the way down.
func (t *Trie) Insert(seq []string, start, end int) error {
	if t.compacted() {
		return ErrCompacted
	}
	if err := checkRange(seq, start, end); err != nil {
		return err
	}
	if end-start > t.order {
		tracer().Errorf("cannot insert %d-gram into dictionary of order %d", end-start, t.order)
		return fmt.Errorf("%w: %d > %d", ErrTooLong, end-start, t.order)
	}
	if end == start {
		return nil
	}
	n := 0
	for _, token := range seq[start:end] {
		id := int32(t.vocab.IDOf(token))
		next := t.child(n, id)
		if next < 0 {
			next = t.addChild(n, id)
		}
		n = next
	}
	t.nodes[n].count++
	t.generation++
	return nil
}

func (t *Trie) addChild(n int, id int32) int {
	next := len(t.nodes)
	t.nodes = append(t.nodes, trieNode{id: id})
	node := &t.nodes[n] // re-take address, arena may have moved
	at := csr.FindInsert(node.keys, id, 0, len(node.keys))
	node.keys = append(node.keys, 0)
	copy(node.keys[at+1:], node.keys[at:])
	node.keys[at] = id
	node.kids = append(node.kids, 0)
	copy(node.kids[at+1:], node.kids[at:])
	node.kids[at] = int32(next)
	return next
}

// locate walks down seq[start:end] and returns the arena index of the
// final node. The root is returned for an empty range.
func (t *Trie) locate(seq []string, start, end int) (int, bool) {
	if t.compacted() {
		return 0, false
	}
	n := 0
	for _, token := range seq[start:end] {
		id, ok := t.vocab.Lookup(token)
		if !ok {
			return 0, false
		}
		if n = t.child(n, int32(id)); n < 0 {
			return 0, false
		}
	}
	return n, true
}

// Frequency returns the count of seq[start:end], or 0 if unseen.
func (t *Trie) Frequency(seq []string, start, end int) int {
	start, end, ok := narrow(seq, start, end, t.order)
	if !ok {
		return 0
	}
	n, ok := t.locate(seq, start, end)
	if !ok {
		return 0
	}
	return int(t.nodes[n].count)
}

// SiblingCount returns the number of distinct continuations of seq[start:end-1].
func (t *Trie) SiblingCount(seq []string, start, end int) int {
	start, end, ok := narrow(seq, start, end, t.order)
	if !ok {
		return 0
	}
	n, ok := t.locate(seq, start, end-1)
	if !ok {
		return 0
	}
	return len(t.nodes[n].kids)
}

// SiblingCountInRange counts continuations of seq[start:end-1] with a
// count in [minFreq, maxFreq].
func (t *Trie) SiblingCountInRange(seq []string, start, end, minFreq, maxFreq int) int {
	if minFreq < 1 {
		tracer().Debugf("counting siblings with frequency < 1 includes intermediate nodes")
	}
	start, end, ok := narrow(seq, start, end, t.order)
	if !ok {
		return 0
	}
	n, ok := t.locate(seq, start, end-1)
	if !ok {
		return 0
	}
	count := 0
	for _, k := range t.nodes[n].kids {
		if inBand(t.nodes[k].count, minFreq, maxFreq) {
			count++
		}
	}
	return count
}

// SiblingCountSum sums the counts of all continuations of seq[start:end-1].
func (t *Trie) SiblingCountSum(seq []string, start, end int) int {
	start, end, ok := narrow(seq, start, end, t.order)
	if !ok {
		return 0
	}
	n, ok := t.locate(seq, start, end-1)
	if !ok {
		return 0
	}
	sum := 0
	for _, k := range t.nodes[n].kids {
		sum += int(t.nodes[k].count)
	}
	return sum
}

// level returns the arena indices of all nodes at depth, in id order.
func (t *Trie) level(depth int) []int32 {
	if t.compacted() || depth < 1 || depth > t.order {
		return nil
	}
	frontier := []int32{0}
	for d := 0; d < depth; d++ {
		next := make([]int32, 0, len(frontier))
		for _, n := range frontier {
			next = append(next, t.nodes[n].kids...)
		}
		frontier = next
	}
	return frontier
}

// NGramCount returns the number of distinct n-grams of length depth with a
// count in [minFreq, maxFreq].
func (t *Trie) NGramCount(depth, minFreq, maxFreq int) int {
	count := 0
	for _, n := range t.level(depth) {
		if inBand(t.nodes[n].count, minFreq, maxFreq) {
			count++
		}
	}
	return count
}

// NGramCountSum returns the summed counts of all n-grams of length depth.
func (t *Trie) NGramCountSum(depth int) int {
	sum := 0
	for _, n := range t.level(depth) {
		sum += int(t.nodes[n].count)
	}
	return sum
}

// CorpusSize returns the total number of token occurrences.
func (t *Trie) CorpusSize() int {
	return t.NGramCountSum(1)
}

// Siblings returns the continuations of seq[start:end] ordered by token id.
func (t *Trie) Siblings(seq []string, start, end int) ([][]string, bool) {
	start, end, _ = narrow(seq, start, end, t.order)
	if end < start {
		return nil, false
	}
	n, ok := t.locate(seq, start, end)
	if !ok {
		return nil, false
	}
	node := &t.nodes[n]
	result := make([][]string, len(node.keys))
	for i, id := range node.keys {
		result[i] = continuation(t.vocab, seq[start:end], id)
	}
	return result, true
}

// Stats reports the number of nodes per depth.
func (t *Trie) Stats() Stats {
	stats := Stats{
		Backend: "trie",
		Order:   t.order,
		Nodes:   make([]int, t.order),
		Cells:   len(t.nodes),
	}
	for d := 1; d <= t.order; d++ {
		stats.Nodes[d-1] = len(t.level(d))
	}
	return stats
}

func (t *Trie) String() string {
	return fmt.Sprintf("Trie(order=%d,nodes=%d,compacted=%v)", t.order, len(t.nodes), t.compacted())
}

// Compact converts the trie into its compacted array form. The trie is
// consumed: its nodes are released during the traversal, later insertions
// fail with ErrCompacted and queries return zero values. Compacting twice
// is an error.
func (t *Trie) Compact() (*Compacted, error) {
	if t.compacted() {
		return nil, ErrCompacted
	}
	levels := csr.NewLevels(t.order)
	root := &t.nodes[0]
	levels.Pointers[0][1] = int32(len(root.kids))
	type item struct {
		node  int32
		depth int
	}
	stack := make([]item, 0, 64)
	push := func(kids []int32, depth int) {
		for i := len(kids) - 1; i >= 0; i-- { // reversed, so smallest id pops first
			stack = append(stack, item{kids[i], depth})
		}
	}
	push(root.kids, 1)
	root.keys, root.kids = nil, nil
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[top.node]
		d := top.depth
		levels.IDs[d-1] = append(levels.IDs[d-1], node.id)
		levels.Counts[d-1] = append(levels.Counts[d-1], node.count)
		if d < t.order {
			p := levels.Pointers[d]
			levels.Pointers[d] = append(p, p[len(p)-1]+int32(len(node.kids)))
			push(node.kids, d+1)
		} else {
			assert(len(node.kids) == 0, "trie node deeper than maximum order")
		}
		node.keys, node.kids = nil, nil
	}
	c := &Compacted{
		order:      t.order,
		vocab:      t.vocab,
		levels:     levels,
		generation: t.generation,
	}
	tracer().Infof("compacted trie of %d nodes into %d array cells", len(t.nodes), levels.Size())
	t.nodes = nil
	return c, nil
}
