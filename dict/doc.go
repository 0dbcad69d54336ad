/*
Package dict implements n-gram frequency dictionaries.

Two storage engines share one capability interface, Dictionary:

  - Trie is the mutable form: an arena of nodes, each owning a count and a
    sorted vector of children. Insertion is cheap.
  - Compacted is the read-optimized form: per depth, parallel arrays of
    token ids, counts and child pointers (see package csr). Queries use
    binary search within a parent's span.

A Trie is turned into a Compacted dictionary by Trie.Compact, which consumes
the trie. Insertion into a Compacted dictionary is possible but splices
arrays and is therefore slow.

Callers are expected to insert every left-anchored prefix of an n-gram,
i.e. when adding "a b c" also add "a b" and "a". Aggregate queries assume
this and produce meaningless (but harmless) results otherwise.
*/
package dict

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/ngram/vocab"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ngram.dict'
func tracer() tracing.Trace {
	return tracing.Select("ngram.dict")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// Unbounded may be used as maxFreq for open frequency bands.
const Unbounded = math.MaxInt

var (
	// ErrTooLong is returned when inserting an n-gram longer than the
	// maximum order of a dictionary.
	ErrTooLong = errors.New("n-gram exceeds maximum order")
	// ErrCompacted is returned by a Trie which has been consumed by Compact.
	ErrCompacted = errors.New("trie has been compacted")
	// ErrRange flags a range not within the bounds of its sequence.
	ErrRange = errors.New("invalid n-gram range")
	// ErrOrder flags a maximum order < 1.
	ErrOrder = errors.New("maximum order must be at least 1")
)

// Dictionary is the storage-independent n-gram contract.
//
// All query operations take a token sequence and a half-open range
// [start, end) denoting the n-gram within it. Ranges longer than MaxOrder
// are narrowed to their trailing MaxOrder tokens. Absent data yields zero
// values, never errors.
type Dictionary interface {
	// Insert increments the count of seq[start:end].
	Insert(seq []string, start, end int) error
	// Frequency returns the count of seq[start:end].
	Frequency(seq []string, start, end int) int
	// SiblingCount returns the number of distinct n-grams sharing the
	// prefix seq[start:end-1]. For unigrams this is the number of distinct
	// tokens at depth 1.
	SiblingCount(seq []string, start, end int) int
	// SiblingCountInRange is SiblingCount restricted to siblings with
	// minFreq <= count <= maxFreq.
	SiblingCountInRange(seq []string, start, end, minFreq, maxFreq int) int
	// SiblingCountSum sums the counts of the siblings of seq[start:end].
	// For unigrams this is the corpus size.
	SiblingCountSum(seq []string, start, end int) int
	// NGramCount returns the number of distinct n-grams of length depth
	// with minFreq <= count <= maxFreq.
	NGramCount(depth, minFreq, maxFreq int) int
	// NGramCountSum returns the summed counts of all n-grams of length depth.
	NGramCountSum(depth int) int
	// CorpusSize returns the summed counts of all unigrams.
	CorpusSize() int
	// Siblings returns all one-token continuations of seq[start:end], as
	// full sequences ordered by token id. It returns false if the prefix
	// itself is unknown.
	Siblings(seq []string, start, end int) ([][]string, bool)
	// MaxOrder is the maximum n-gram length held.
	MaxOrder() int
	// Vocabulary returns the token/id mapping in use.
	Vocabulary() *vocab.Vocabulary
	// Generation changes with every successful insertion.
	Generation() uint64
	// Stats reports size figures of the underlying storage.
	Stats() Stats
}

// Stats reports density metrics of a dictionary.
type Stats struct {
	Backend string // "trie" or "csr"
	Order   int
	Nodes   []int // nodes per depth 1..Order
	Cells   int   // arena nodes or array cells allocated
}

// Total returns the number of n-grams over all depths.
func (s Stats) Total() int {
	total := 0
	for _, n := range s.Nodes {
		total += n
	}
	return total
}

func (s Stats) String() string {
	return fmt.Sprintf("%s(order=%d,ngrams=%d,cells=%d)", s.Backend, s.Order, s.Total(), s.Cells)
}

// narrow clips [start, end) to the bounds of seq and to the trailing order
// tokens. It returns ok=false for empty or inverted ranges.
func narrow(seq []string, start, end, order int) (int, int, bool) {
	if start < 0 {
		start = 0
	}
	if end > len(seq) {
		end = len(seq)
	}
	if end-start > order {
		start = end - order
	}
	return start, end, end > start
}

func checkRange(seq []string, start, end int) error {
	if start < 0 || end > len(seq) || start > end {
		return fmt.Errorf("%w: [%d,%d) of %d tokens", ErrRange, start, end, len(seq))
	}
	return nil
}

func inBand(count uint32, minFreq, maxFreq int) bool {
	c := int(count)
	return minFreq <= c && c <= maxFreq
}

// continuation builds prefix + token as a fresh slice.
func continuation(v *vocab.Vocabulary, prefix []string, id int32) []string {
	gram := make([]string, len(prefix)+1)
	copy(gram, prefix)
	token, ok := v.TokenOf(int(id))
	if !ok {
		token = vocab.OOV
	}
	gram[len(prefix)] = token
	return gram
}
