/*
Package estimate computes n-gram probabilities from the counts of a
dictionary.

Two estimators are available. Maximum likelihood divides the count of an
n-gram by the count of its context and applies no smoothing. Chen–Goodman
discounted backoff subtracts a fixed discount from every observed count and
redistributes the withheld mass to shorter contexts, recursively down to
unigrams. Its discounts are derived from the count-of-counts histogram of
every depth (Chen & Goodman 1999, eq. 17).

Estimators cache aggregates of the dictionary. After the dictionary has been
changed, Update has to be called, or probabilities will silently be computed
from stale statistics.
*/
package estimate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/ngram/dict"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ngram.estimate'
func tracer() tracing.Trace {
	return tracing.Select("ngram.estimate")
}

// ErrUnknownMethod is returned by ParseMethod for unsupported identifiers.
var ErrUnknownMethod = errors.New("unknown smoothing method")

// Method selects an estimation algorithm.
type Method int

const (
	MaximumLikelihood Method = iota
	ChenGoodman
)

func (m Method) String() string {
	switch m {
	case MaximumLikelihood:
		return "maximum-likelihood"
	case ChenGoodman:
		return "chen-goodman"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps a configuration identifier to a Method. Matching is
// case-insensitive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ml", "mle", "maximum-likelihood", "maximum likelihood", "maximumlikelihood":
		return MaximumLikelihood, nil
	case "cg", "chen", "chen-goodman", "chen goodman", "chengoodman":
		return ChenGoodman, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Counter is the read side of a dictionary, as far as estimators need it.
// Both dictionary engines satisfy it.
type Counter interface {
	Frequency(seq []string, start, end int) int
	SiblingCountInRange(seq []string, start, end, minFreq, maxFreq int) int
	SiblingCountSum(seq []string, start, end int) int
	NGramCount(depth, minFreq, maxFreq int) int
	NGramCountSum(depth int) int
	MaxOrder() int
}

var _ Counter = dict.Dictionary(nil)

// Estimator computes the probability of the last token of an n-gram given
// the tokens preceding it.
type Estimator interface {
	// Probability estimates P(tokens[n-1] | tokens[:n-1]). Sequences longer
	// than the maximum order are evaluated on their trailing window.
	Probability(tokens []string) float64
	// Update refreshes cached aggregates after the dictionary has changed.
	Update()
	// Method reports the algorithm in use.
	Method() Method
	// Discounts returns the discount table D[0..3] for n-grams of length
	// depth. Maximum likelihood applies no discounts.
	Discounts(depth int) [4]float64
}

// New creates an estimator over counts.
func New(method Method, counts Counter) (Estimator, error) {
	switch method {
	case MaximumLikelihood:
		e := &mle{counts: counts}
		e.Update()
		return e, nil
	case ChenGoodman:
		e := &chenGoodman{counts: counts}
		e.Update()
		return e, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
}

// window returns the trailing range of tokens not longer than order.
func window(tokens []string, order int) (int, int) {
	start := 0
	if len(tokens) > order {
		start = len(tokens) - order
	}
	return start, len(tokens)
}

// ratio divides, treating a zero denominator as "no contribution".
func ratio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

// --- Maximum likelihood ----------------------------------------------------

type mle struct {
	counts     Counter
	corpusSize int
}

func (e *mle) Method() Method { return MaximumLikelihood }

func (e *mle) Discounts(depth int) [4]float64 { return [4]float64{} }

func (e *mle) Update() {
	e.corpusSize = e.counts.NGramCountSum(1)
}

func (e *mle) Probability(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	start, end := window(tokens, e.counts.MaxOrder())
	c := e.counts.Frequency(tokens, start, end)
	if c == 0 {
		return 0
	}
	if end-start == 1 {
		return ratio(float64(c), float64(e.corpusSize))
	}
	return ratio(float64(c), float64(e.counts.Frequency(tokens, start, end-1)))
}

// --- Chen-Goodman ----------------------------------------------------------

type chenGoodman struct {
	counts     Counter
	discounts  [][4]float64 // per depth-1
	corpusSize int
}

func (e *chenGoodman) Method() Method { return ChenGoodman }

func (e *chenGoodman) Discounts(depth int) [4]float64 {
	if depth < 1 || depth > len(e.discounts) {
		return [4]float64{}
	}
	return e.discounts[depth-1]
}

// Update recomputes the discounts of every depth from the count-of-counts
// n[f], the number of distinct n-grams occurring exactly f times:
//
//	Y    = n[1] / (n[1] + 2·n[2])
//	D[f] = f − (f+1)·Y·n[f+1]/n[f]    for f = 1..3
//
// D[0] is always 0.
func (e *chenGoodman) Update() {
	order := e.counts.MaxOrder()
	e.discounts = make([][4]float64, order)
	for depth := 1; depth <= order; depth++ {
		var n [5]float64
		for f := 1; f <= 4; f++ {
			n[f] = float64(e.counts.NGramCount(depth, f, f))
		}
		y := ratio(n[1], n[1]+2*n[2])
		d := &e.discounts[depth-1]
		for f := 1; f <= 3; f++ {
			if n[f] == 0 {
				continue
			}
			d[f] = float64(f) - float64(f+1)*y*n[f+1]/n[f]
		}
		tracer().Infof("discounts for depth %d: %v", depth, *d)
	}
	e.corpusSize = e.counts.NGramCountSum(1)
}

func (e *chenGoodman) Probability(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	start, end := window(tokens, e.counts.MaxOrder())
	return e.backoff(tokens, start, end)
}

// backoff estimates the probability of tokens[start:end], recursing into
// the context shortened by its first token.
func (e *chenGoodman) backoff(tokens []string, start, end int) float64 {
	n := end - start
	if n < 1 {
		return 0
	}
	d := e.discounts[n-1]
	c := e.counts.Frequency(tokens, start, end)
	bucket := min(c, 3)
	if n == 1 {
		return ratio(max(float64(c)-d[bucket], 0), float64(e.corpusSize))
	}
	norm := float64(e.counts.SiblingCountSum(tokens, start, end))
	if norm == 0 {
		return e.backoff(tokens, start+1, end)
	}
	prob := max(float64(c)-d[bucket], 0) / norm
	gamma := 0.0
	for f := 1; f <= 3; f++ {
		maxFreq := f
		if f == 3 {
			maxFreq = dict.Unbounded
		}
		siblings := e.counts.SiblingCountInRange(tokens, start, end, f, maxFreq)
		gamma += d[f] * float64(siblings) / norm
	}
	return prob + gamma*e.backoff(tokens, start+1, end)
}
