package dict

import (
	"fmt"
	"io"

	"github.com/npillmayer/ngram/csr"
	"github.com/npillmayer/ngram/vocab"
)

// Compacted is the read-optimized n-gram dictionary, produced by
// Trie.Compact. Nodes of every depth are stored in the parallel arrays of a
// csr.Levels structure.
type Compacted struct {
	order      int
	vocab      *vocab.Vocabulary
	levels     *csr.Levels
	generation uint64
}

var _ Dictionary = (*Compacted)(nil)

// MaxOrder is the maximum n-gram length.
func (c *Compacted) MaxOrder() int { return c.order }

// Vocabulary returns the token/id mapping of this dictionary.
func (c *Compacted) Vocabulary() *vocab.Vocabulary { return c.vocab }

// Generation continues the count of the trie this dictionary was built from.
func (c *Compacted) Generation() uint64 { return c.generation }

// Levels exposes the underlying arrays. Clients must not modify them.
func (c *Compacted) Levels() *csr.Levels { return c.levels }

// locate walks down seq[start:end] level by level, searching each token id
// within the span of its parent. It returns the depth and index of the final
// node; the root is (0, 0).
func (c *Compacted) locate(seq []string, start, end int) (int, int, bool) {
	parent := 0
	for k, token := range seq[start:end] {
		id, ok := c.vocab.Lookup(token)
		if !ok {
			return 0, 0, false
		}
		low, high := c.levels.Span(k, parent)
		at := csr.FindIndex(c.levels.IDs[k], int32(id), low, high)
		if at < 0 {
			return 0, 0, false
		}
		parent = at
	}
	return end - start, parent, true
}

// children returns the span of the children of node i at depth d within
// level d+1.
func (c *Compacted) children(d, i int) (int, int) {
	if d >= c.order {
		return 0, 0
	}
	return c.levels.Span(d, i)
}

// Insert increments the count of seq[start:end]. Missing nodes are spliced
// into the arrays, shifting every later child pointer of the parent level.
// Each such insertion costs time proportional to the total size of the
// dictionary; use it for occasional updates only and prefer to build a new
// Trie for bulk data.
func (c *Compacted) Insert(seq []string, start, end int) error {
	if err := checkRange(seq, start, end); err != nil {
		return err
	}
	if end-start > c.order {
		tracer().Errorf("cannot insert %d-gram into dictionary of order %d", end-start, c.order)
		return fmt.Errorf("%w: %d > %d", ErrTooLong, end-start, c.order)
	}
	if end == start {
		return nil
	}
	parent := 0
	for k, token := range seq[start:end] {
		d := k + 1
		id := int32(c.vocab.IDOf(token))
		low, high := c.levels.Span(d-1, parent)
		at := csr.FindIndex(c.levels.IDs[d-1], id, low, high)
		if at < 0 {
			at = csr.FindInsert(c.levels.IDs[d-1], id, low, high)
			tracer().Debugf("splicing token %d into level %d at %d", id, d, at)
			c.levels.Insert(d, parent, at, id)
		}
		parent = at
	}
	c.levels.Counts[end-start-1][parent]++
	c.generation++
	return nil
}

// Frequency returns the count of seq[start:end], or 0 if unseen.
func (c *Compacted) Frequency(seq []string, start, end int) int {
	start, end, ok := narrow(seq, start, end, c.order)
	if !ok {
		return 0
	}
	d, i, ok := c.locate(seq, start, end)
	if !ok {
		return 0
	}
	return int(c.levels.Counts[d-1][i])
}

// siblings returns the level index and span of the continuations of
// seq[start:end-1].
func (c *Compacted) siblings(seq []string, start, end int) (int, int, int, bool) {
	start, end, ok := narrow(seq, start, end, c.order)
	if !ok {
		return 0, 0, 0, false
	}
	d, i, ok := c.locate(seq, start, end-1)
	if !ok {
		return 0, 0, 0, false
	}
	low, high := c.children(d, i)
	return d, low, high, true
}

// SiblingCount returns the number of distinct continuations of seq[start:end-1].
func (c *Compacted) SiblingCount(seq []string, start, end int) int {
	_, low, high, ok := c.siblings(seq, start, end)
	if !ok {
		return 0
	}
	return high - low
}

// SiblingCountInRange counts continuations of seq[start:end-1] with a
// count in [minFreq, maxFreq].
func (c *Compacted) SiblingCountInRange(seq []string, start, end, minFreq, maxFreq int) int {
	d, low, high, ok := c.siblings(seq, start, end)
	if !ok {
		return 0
	}
	count := 0
	for _, n := range c.levels.Counts[d][low:high] {
		if inBand(n, minFreq, maxFreq) {
			count++
		}
	}
	return count
}

// SiblingCountSum sums the counts of all continuations of seq[start:end-1].
func (c *Compacted) SiblingCountSum(seq []string, start, end int) int {
	d, low, high, ok := c.siblings(seq, start, end)
	if !ok {
		return 0
	}
	sum := 0
	for _, n := range c.levels.Counts[d][low:high] {
		sum += int(n)
	}
	return sum
}

// NGramCount returns the number of distinct n-grams of length depth with a
// count in [minFreq, maxFreq].
func (c *Compacted) NGramCount(depth, minFreq, maxFreq int) int {
	if depth < 1 || depth > c.order {
		return 0
	}
	count := 0
	for _, n := range c.levels.Counts[depth-1] {
		if inBand(n, minFreq, maxFreq) {
			count++
		}
	}
	return count
}

// NGramCountSum returns the summed counts of all n-grams of length depth.
func (c *Compacted) NGramCountSum(depth int) int {
	if depth < 1 || depth > c.order {
		return 0
	}
	sum := 0
	for _, n := range c.levels.Counts[depth-1] {
		sum += int(n)
	}
	return sum
}

// CorpusSize returns the total number of token occurrences.
func (c *Compacted) CorpusSize() int {
	return c.NGramCountSum(1)
}

// Siblings returns the continuations of seq[start:end] ordered by token id.
func (c *Compacted) Siblings(seq []string, start, end int) ([][]string, bool) {
	start, end, _ = narrow(seq, start, end, c.order)
	if end < start {
		return nil, false
	}
	d, i, ok := c.locate(seq, start, end)
	if !ok {
		return nil, false
	}
	low, high := c.children(d, i)
	result := make([][]string, 0, high-low)
	if low == high {
		return result, true
	}
	for _, id := range c.levels.IDs[d][low:high] {
		result = append(result, continuation(c.vocab, seq[start:end], id))
	}
	return result, true
}

// Stats reports the number of nodes per depth.
func (c *Compacted) Stats() Stats {
	stats := Stats{
		Backend: "csr",
		Order:   c.order,
		Nodes:   make([]int, c.order),
		Cells:   c.levels.Size(),
	}
	for d := 1; d <= c.order; d++ {
		stats.Nodes[d-1] = c.levels.Width(d)
	}
	return stats
}

// Dump writes the arrays of every level as a table, tokens resolved by the
// vocabulary. The output is meant for debugging only.
func (c *Compacted) Dump(w io.Writer) {
	c.levels.Dump(w, func(id int32) string {
		token, ok := c.vocab.TokenOf(int(id))
		if !ok {
			return "?"
		}
		return token
	})
}

func (c *Compacted) String() string {
	return fmt.Sprintf("Compacted(order=%d,cells=%d)", c.order, c.levels.Size())
}
