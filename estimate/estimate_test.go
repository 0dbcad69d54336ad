package estimate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/ngram/dict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(s string) []string {
	return strings.Fields(s)
}

func scenario(t *testing.T) *dict.Trie {
	t.Helper()
	trie, err := dict.NewTrie(3, nil)
	require.NoError(t, err)
	insert := func(times int, grams ...string) {
		for i := 0; i < times; i++ {
			for _, g := range grams {
				s := seq(g)
				require.NoError(t, trie.Insert(s, 0, len(s)))
			}
		}
	}
	insert(4, "A B C", "A B", "A")
	insert(3, "B A C", "B A", "B")
	insert(2, "B D C", "B D", "D")
	insert(1, "A B A", "B C", "C")
	return trie
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"ml", "MLE", "maximum-likelihood", "Maximum Likelihood"} {
		m, err := ParseMethod(s)
		require.NoError(t, err, s)
		assert.Equal(t, MaximumLikelihood, m)
	}
	for _, s := range []string{"cg", "chen", "Chen-Goodman"} {
		m, err := ParseMethod(s)
		require.NoError(t, err, s)
		assert.Equal(t, ChenGoodman, m)
	}
	_, err := ParseMethod("kneser-ney")
	assert.True(t, errors.Is(err, ErrUnknownMethod))
	assert.Equal(t, "chen-goodman", ChenGoodman.String())
}

func TestMaximumLikelihood(t *testing.T) {
	e, err := New(MaximumLikelihood, scenario(t))
	require.NoError(t, err)
	assert.Equal(t, MaximumLikelihood, e.Method())
	assert.InDelta(t, 1.0, e.Probability(seq("A B")), 1e-9)
	assert.InDelta(t, 1.0, e.Probability(seq("A B C")), 1e-9)
	assert.InDelta(t, 0.25, e.Probability(seq("A B A")), 1e-9)
	assert.InDelta(t, 0.1, e.Probability(seq("C")), 1e-9)
	assert.InDelta(t, 2.0/3.0, e.Probability(seq("B D")), 1e-9)
	assert.Equal(t, 0.0, e.Probability(seq("A B D")))
	assert.Equal(t, 0.0, e.Probability(seq("Z")))
	assert.Equal(t, 0.0, e.Probability(nil))
	// only the trailing trigram is evaluated
	assert.InDelta(t, e.Probability(seq("A B C")), e.Probability(seq("Z Z A B C")), 1e-12)
}

func TestMaximumLikelihoodNormalization(t *testing.T) {
	trie, err := dict.NewTrie(2, nil)
	require.NoError(t, err)
	// "a" is never sequence-final, so its count equals the sum of its
	// continuations
	text := seq("a b a c a b a b a d a c x")
	for i := range text {
		for n := 2; n >= 1; n-- {
			if i+n <= len(text) {
				require.NoError(t, trie.Insert(text, i, i+n))
			}
		}
	}
	e, err := New(MaximumLikelihood, trie)
	require.NoError(t, err)
	siblings, ok := trie.Siblings(seq("a"), 0, 1)
	require.True(t, ok)
	require.Len(t, siblings, 3)
	sum := 0.0
	for _, s := range siblings {
		sum += e.Probability(s)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestChenGoodmanDiscounts(t *testing.T) {
	e, err := New(ChenGoodman, scenario(t))
	require.NoError(t, err)
	for depth := 1; depth <= 3; depth++ {
		d := e.Discounts(depth)
		assert.Equal(t, 0.0, d[0])
		assert.InDelta(t, 1.0/3.0, d[1], 1e-9)
		assert.InDelta(t, 1.0, d[2], 1e-9)
		assert.InDelta(t, 5.0/3.0, d[3], 1e-9)
	}
	assert.Equal(t, [4]float64{}, e.Discounts(4))
}

func TestChenGoodmanProbability(t *testing.T) {
	trie := scenario(t)
	e, err := New(ChenGoodman, trie)
	require.NoError(t, err)
	cases := []struct {
		ngram string
		want  float64
	}{
		{"A B C", 118.0 / 225.0},
		{"A B A", 121.0 / 450.0},
		{"A B D", 13.0 / 150.0},
		{"B C", 13.0 / 90.0},
		{"C", 1.0 / 15.0},
		{"A", 7.0 / 30.0},
	}
	probs := make([]float64, len(cases))
	for i, c := range cases {
		probs[i] = e.Probability(seq(c.ngram))
		assert.InDelta(t, c.want, probs[i], 1e-9, c.ngram)
	}
	// compaction must not change any estimate
	compacted, err := trie.Compact()
	require.NoError(t, err)
	e, err = New(ChenGoodman, compacted)
	require.NoError(t, err)
	for i, c := range cases {
		assert.InDelta(t, probs[i], e.Probability(seq(c.ngram)), 1e-12, c.ngram)
	}
}

func TestChenGoodmanUnseenContext(t *testing.T) {
	e, err := New(ChenGoodman, scenario(t))
	require.NoError(t, err)
	// context "C A" never occurs, so the estimate is P(A | A). "A A" is unseen
	// as well and receives the mass withheld from the continuations of "A".
	p := e.Probability(seq("C A A"))
	assert.InDelta(t, 5.0/12.0*7.0/30.0, p, 1e-9)
}

func TestEmptyDictionaryIsFinite(t *testing.T) {
	trie, err := dict.NewTrie(3, nil)
	require.NoError(t, err)
	for _, m := range []Method{MaximumLikelihood, ChenGoodman} {
		e, err := New(m, trie)
		require.NoError(t, err)
		for _, s := range []string{"a", "a b", "a b c"} {
			p := e.Probability(seq(s))
			assert.False(t, math.IsNaN(p) || math.IsInf(p, 0), "%v(%s) = %v", m, s, p)
			assert.Equal(t, 0.0, p)
		}
		for depth := 1; depth <= 3; depth++ {
			d := e.Discounts(depth)
			for _, v := range d {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}
	}
}

func TestUpdate(t *testing.T) {
	trie := scenario(t)
	e, err := New(MaximumLikelihood, trie)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, e.Probability(seq("C")), 1e-9)
	for i := 0; i < 10; i++ {
		require.NoError(t, trie.Insert(seq("E"), 0, 1))
	}
	e.Update()
	assert.InDelta(t, 0.05, e.Probability(seq("C")), 1e-9)
}
