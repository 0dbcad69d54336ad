/*
Package ngram is an n-gram language model backed by an in-memory frequency
dictionary.

A model is trained from a stream of tokenized sequences. Training reads the
stream twice: the first pass ranks tokens by frequency and builds a static
vocabulary (rare tokens fold into the out-of-vocabulary token "<OOV>"), the
second pass counts every contiguous window of every order 1..N. The counts
are kept in a mutable trie (package dict), optionally compacted into sorted
per-level arrays afterwards.

Probabilities are estimated either by maximum likelihood or by Chen–Goodman
discounted backoff (package estimate). The model answers two questions, both
cached:

	p := model.Probability([]string{"the", "cat", "sat"})   // P(sat | the cat)
	next, ok := model.PredictNext([]string{"the", "cat"})  // most likely continuation

Further Reading

	S. F. Chen, J. Goodman: An Empirical Study of Smoothing Techniques for
	Language Modeling. Harvard University, TR-10-98, 1998.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package ngram

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ngram'
func tracer() tracing.Trace {
	return tracing.Select("ngram")
}
