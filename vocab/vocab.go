/*
Package vocab maps tokens to dense integer identifiers and back.

A vocabulary is either growable, assigning fresh ids to unseen tokens in
encounter order, or static. Static vocabularies are supplied pre-built and
redirect unknown tokens to a reserved out-of-vocabulary id.
*/
package vocab

import (
	"errors"
	"sort"

	"github.com/derekparker/trie"
	"github.com/npillmayer/schuko/tracing"
)

// OOV is the sentinel token standing in for any token absent from a static
// vocabulary.
const OOV = "<OOV>"

// ErrVocabularyExhausted is reported when a static vocabulary without an OOV
// slot receives an unknown token on the insertion path. The vocabulary then
// provisions the OOV slot on the fly.
var ErrVocabularyExhausted = errors.New("static vocabulary has no out-of-vocabulary slot")

// tracer writes to trace with key 'ngram.vocab'
func tracer() tracing.Trace {
	return tracing.Select("ngram.vocab")
}

// Vocabulary is a bidirectional mapping between tokens and ids.
type Vocabulary struct {
	ids      map[string]int
	tokens   []string
	static   bool
	oov      int        // id of the OOV sentinel, -1 if none
	prefixes *trie.Trie // lazily built for prefix search
}

// New creates an empty, growable vocabulary.
func New() *Vocabulary {
	return &Vocabulary{
		ids: make(map[string]int),
		oov: -1,
	}
}

// NewStatic creates a static vocabulary. Token ids are the slice positions;
// duplicates keep their first position. If withOOV is set, the OOV sentinel
// is appended with the highest id.
func NewStatic(tokens []string, withOOV bool) *Vocabulary {
	v := &Vocabulary{
		ids:    make(map[string]int, len(tokens)+1),
		tokens: make([]string, 0, len(tokens)+1),
		static: true,
		oov:    -1,
	}
	for _, t := range tokens {
		if _, ok := v.ids[t]; ok {
			continue
		}
		v.add(t)
	}
	if withOOV {
		v.provisionOOV()
	}
	return v
}

// Ranked creates a static vocabulary from token frequencies. The most frequent
// token receives id 0; ties are ordered by token. Tokens occurring less than
// minFreq times are left out, and the OOV sentinel is always reserved with
// the highest id.
func Ranked(counts map[string]int, minFreq int) *Vocabulary {
	type entry struct {
		token string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for token, count := range counts {
		if count < minFreq || token == OOV {
			continue
		}
		entries = append(entries, entry{token, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].token < entries[j].token
	})
	tokens := make([]string, len(entries))
	for i, e := range entries {
		tokens[i] = e.token
	}
	tracer().Infof("ranked vocabulary: %d of %d tokens with frequency >= %d", len(tokens), len(counts), minFreq)
	return NewStatic(tokens, true)
}

func (v *Vocabulary) add(token string) int {
	id := len(v.tokens)
	v.ids[token] = id
	v.tokens = append(v.tokens, token)
	if v.prefixes != nil {
		v.prefixes.Add(token, id)
	}
	return id
}

func (v *Vocabulary) provisionOOV() int {
	if id, ok := v.ids[OOV]; ok {
		v.oov = id
		return id
	}
	v.oov = v.add(OOV)
	return v.oov
}

// IDOf resolves a token on the insertion path. Growable vocabularies allocate
// the next id for unseen tokens, static ones return the OOV id. A static
// vocabulary lacking an OOV slot provisions one and traces a warning.
func (v *Vocabulary) IDOf(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	if !v.static {
		return v.add(token)
	}
	if v.oov < 0 {
		tracer().Errorf("%v: provisioning %s for token %q", ErrVocabularyExhausted, OOV, token)
		return v.provisionOOV()
	}
	return v.oov
}

// Lookup resolves a token without mutating the vocabulary. Unknown tokens
// resolve to the OOV id of a static vocabulary, if there is one.
func (v *Vocabulary) Lookup(token string) (int, bool) {
	if id, ok := v.ids[token]; ok {
		return id, true
	}
	if v.static && v.oov >= 0 {
		return v.oov, true
	}
	return 0, false
}

// Contains reports whether token is known, not counting OOV redirection.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.ids[token]
	return ok
}

// TokenOf returns the token for id.
func (v *Vocabulary) TokenOf(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Size returns the number of ids in use, including the OOV sentinel.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// IsStatic reports whether unknown tokens are redirected instead of added.
func (v *Vocabulary) IsStatic() bool { return v.static }

// OOV returns the id of the out-of-vocabulary sentinel, if configured.
func (v *Vocabulary) OOV() (int, bool) {
	return v.oov, v.oov >= 0
}

// WithPrefix returns all tokens starting with prefix, sorted.
func (v *Vocabulary) WithPrefix(prefix string) []string {
	if v.prefixes == nil {
		v.prefixes = trie.New()
		for id, token := range v.tokens {
			v.prefixes.Add(token, id)
		}
	}
	if prefix == "" {
		keys := append([]string(nil), v.tokens...)
		sort.Strings(keys)
		return keys
	}
	keys := v.prefixes.PrefixSearch(prefix)
	sort.Strings(keys)
	return keys
}
