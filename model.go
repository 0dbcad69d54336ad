package ngram

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/emirpasic/gods/trees/binaryheap"
	lru "github.com/hashicorp/golang-lru"
	"github.com/npillmayer/ngram/dict"
	"github.com/npillmayer/ngram/estimate"
	"github.com/npillmayer/ngram/vocab"
)

// TokenStream yields tokenized sequences one-by-one.
// It should return io.EOF when the stream is exhausted. Reset rewinds the
// stream to its beginning.
type TokenStream interface {
	Next() ([]string, error)
	Reset() error
}

// Model is a smoothed n-gram language model.
//
// Queries may be issued from multiple goroutines. Adding sequences must not
// overlap with queries.
type Model struct {
	params     Params
	dict       dict.Dictionary
	estimator  estimate.Estimator
	probs      *lru.Cache // key → float64
	preds      *lru.Cache // key → string
	mu         sync.Mutex // guards generation
	generation uint64     // of dict, as seen by estimator and caches
}

// Scored is an n-gram together with its estimated probability.
type Scored struct {
	NGram       []string
	Probability float64
}

// Train builds a model from a token stream. The stream is read twice.
func Train(stream TokenStream, params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	n := 0
	err := forEach(stream, func(tokens []string) error {
		for _, token := range tokens {
			counts[token]++
		}
		n++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus: %w", err)
	}
	tracer().Infof("pass 1: %d sequences, %d distinct tokens", n, len(counts))
	v := vocab.Ranked(counts, params.MinFrequency)
	if err := stream.Reset(); err != nil {
		return nil, fmt.Errorf("cannot rewind corpus: %w", err)
	}
	trie, err := dict.NewTrie(params.Order, v)
	if err != nil {
		return nil, err
	}
	err = forEach(stream, func(tokens []string) error {
		return insertWindows(trie, tokens, params.Order)
	})
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus: %w", err)
	}
	tracer().Infof("pass 2: %v", trie.Stats())
	var d dict.Dictionary = trie
	if params.Compact {
		if d, err = trie.Compact(); err != nil {
			return nil, err
		}
	}
	return NewModel(d, params)
}

// NewModel creates a model over an existing dictionary. The order of the
// dictionary takes precedence over params.Order.
func NewModel(d dict.Dictionary, params Params) (*Model, error) {
	params.Order = d.MaxOrder()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	est, err := estimate.New(params.method(), d)
	if err != nil {
		return nil, err
	}
	m := &Model{
		params:     params,
		dict:       d,
		estimator:  est,
		generation: d.Generation(),
	}
	if m.probs, err = lru.New(params.CacheSize); err != nil {
		return nil, err
	}
	if m.preds, err = lru.New(params.CacheSize); err != nil {
		return nil, err
	}
	tracer().Infof("%s model of order %d over %v", est.Method(), params.Order, d.Stats())
	return m, nil
}

func forEach(stream TokenStream, f func([]string) error) error {
	for {
		tokens, err := stream.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err = f(tokens); err != nil {
			return err
		}
	}
}

// insertWindows counts every window of length order..1 at every position.
func insertWindows(d dict.Dictionary, tokens []string, order int) error {
	for n := order; n > 0; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			if err := d.Insert(tokens, i, i+n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dictionary returns the dictionary backing the model.
func (m *Model) Dictionary() dict.Dictionary { return m.dict }

// Params returns the effective parameters of the model.
func (m *Model) Params() Params { return m.params }

// Add counts every window of tokens, as if tokens had been part of the
// training corpus. Estimates reflect the change with the next query.
// On a compacted dictionary this is slow.
func (m *Model) Add(tokens []string) error {
	return insertWindows(m.dict, tokens, m.params.Order)
}

// refresh brings estimator and caches in line with the dictionary.
func (m *Model) refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g := m.dict.Generation(); g != m.generation {
		tracer().Debugf("dictionary changed, refreshing estimator")
		m.estimator.Update()
		m.probs.Purge()
		m.preds.Purge()
		m.generation = g
	}
}

func cacheKey(tokens []string) string {
	return strings.Join(tokens, "\x00")
}

// trailing returns at most n tokens from the end of tokens.
func trailing(tokens []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(tokens) > n {
		return tokens[len(tokens)-n:]
	}
	return tokens
}

// Probability estimates the probability of the last token given the tokens
// before it. Only the trailing window of the model's order is considered.
// An empty sequence has probability 0.
func (m *Model) Probability(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	m.refresh()
	tokens = trailing(tokens, m.params.Order)
	key := cacheKey(tokens)
	if p, ok := m.probs.Get(key); ok {
		return p.(float64)
	}
	p := m.estimator.Probability(tokens)
	if math.IsNaN(p) || p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	m.probs.Add(key, p)
	return p
}

type candidate struct {
	tokens []string
	count  int
	rank   int // position in sibling enumeration
}

// PredictNext returns the most probable token to follow tokens.
//
// Continuations are looked up for the longest context known to the
// dictionary, dropping leading tokens until one has continuations. If none
// has, the most frequent token is predicted. Of the continuations, the most
// frequent ones are scored; ties in probability go to the smaller token id.
// PredictNext returns false only if the model is empty.
func (m *Model) PredictNext(tokens []string) (string, bool) {
	m.refresh()
	context := trailing(tokens, m.params.Order-1)
	key := cacheKey(context)
	if next, ok := m.preds.Get(key); ok {
		return next.(string), true
	}
	var siblings [][]string
	for start := 0; start < len(context); start++ {
		s, ok := m.dict.Siblings(context, start, len(context))
		if ok && len(s) > 0 {
			tracer().Debugf("predicting from context %v", context[start:])
			siblings = s
			break
		}
	}
	var next string
	if siblings == nil {
		var ok bool
		if next, ok = m.mostFrequent(); !ok {
			return "", false
		}
	} else {
		best := -1.0
		for _, c := range m.topCandidates(siblings) {
			if p := m.Probability(c.tokens); p > best {
				best = p
				next = c.tokens[len(c.tokens)-1]
			}
		}
	}
	m.preds.Add(key, next)
	return next, true
}

// topCandidates selects the continuations with the highest counts, returned
// in enumeration order.
func (m *Model) topCandidates(siblings [][]string) []candidate {
	limit := m.params.Candidates
	if len(siblings) <= limit {
		all := make([]candidate, len(siblings))
		for i, s := range siblings {
			all[i] = candidate{tokens: s, rank: i}
		}
		return all
	}
	// min-heap: the least frequent candidate (latest on ties) is on top
	heap := binaryheap.NewWith(func(a, b interface{}) int {
		x, y := a.(candidate), b.(candidate)
		if x.count != y.count {
			return x.count - y.count
		}
		return y.rank - x.rank
	})
	for i, s := range siblings {
		heap.Push(candidate{tokens: s, count: m.dict.Frequency(s, 0, len(s)), rank: i})
		if heap.Size() > limit {
			heap.Pop()
		}
	}
	top := make([]candidate, 0, limit)
	for !heap.Empty() {
		c, _ := heap.Pop()
		top = append(top, c.(candidate))
	}
	sort.Slice(top, func(i, j int) bool { return top[i].rank < top[j].rank })
	return top
}

// mostFrequent returns the unigram with the highest count, the one with the
// smaller id on ties.
func (m *Model) mostFrequent() (string, bool) {
	unigrams, ok := m.dict.Siblings(nil, 0, 0)
	if !ok || len(unigrams) == 0 {
		return "", false
	}
	best, most := "", 0
	for _, u := range unigrams {
		if c := m.dict.Frequency(u, 0, 1); c > most {
			best, most = u[0], c
		}
	}
	return best, most > 0
}

// Probabilities scores every window of tokens of length min(len(tokens), N).
// Tokens unknown to the vocabulary are replaced by "<OOV>".
func (m *Model) Probabilities(tokens []string) []Scored {
	depth := min(len(tokens), m.params.Order)
	if depth == 0 {
		return nil
	}
	known := m.substitute(tokens)
	result := make([]Scored, 0, len(tokens)-depth+1)
	for i := 0; i+depth <= len(known); i++ {
		gram := known[i : i+depth : i+depth]
		result = append(result, Scored{NGram: gram, Probability: m.Probability(gram)})
	}
	return result
}

func (m *Model) substitute(tokens []string) []string {
	v := m.dict.Vocabulary()
	known := make([]string, len(tokens))
	for i, token := range tokens {
		if v.Contains(token) {
			known[i] = token
		} else {
			known[i] = vocab.OOV
		}
	}
	return known
}

// CrossEntropy returns the average negative log2 probability of every token
// of the sequence given its preceding context. Tokens with probability 0 are
// skipped.
func (m *Model) CrossEntropy(tokens []string) float64 {
	known := m.substitute(tokens)
	total, count := 0.0, 0
	for i := range known {
		start := max(0, i-m.params.Order+1)
		if p := m.Probability(known[start : i+1]); p > 0 {
			total += math.Log2(p)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return -total / float64(count)
}

// Perplexity is 2 to the power of the cross-entropy of tokens.
func (m *Model) Perplexity(tokens []string) float64 {
	return math.Pow(2, m.CrossEntropy(tokens))
}

// ModelStats summarizes a model.
type ModelStats struct {
	Order          int
	Smoothing      string
	VocabularySize int
	CorpusSize     int
	Dictionary     dict.Stats
}

// Stats returns statistics about the model.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		Order:          m.params.Order,
		Smoothing:      m.estimator.Method().String(),
		VocabularySize: m.dict.Vocabulary().Size(),
		CorpusSize:     m.dict.CorpusSize(),
		Dictionary:     m.dict.Stats(),
	}
}
