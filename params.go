package ngram

import (
	"errors"
	"fmt"
	"io"

	"github.com/npillmayer/ngram/estimate"
	"gopkg.in/yaml.v3"
)

// ErrMissingOrder flags training parameters without a maximum n-gram order.
var ErrMissingOrder = errors.New("n-gram order must be configured and >= 1")

// Defaults for optional parameters.
const (
	DefaultSmoothing  = "chen-goodman"
	DefaultCacheSize  = 1000
	DefaultCandidates = 10
)

// Params configures training and querying of a model.
//
// Params may be loaded from YAML:
//
//	order: 3
//	smoothing: chen-goodman
//	compact: true
//	min_frequency: 2
type Params struct {
	Order        int    `yaml:"order"`         // maximum n-gram length, mandatory
	Smoothing    string `yaml:"smoothing"`     // estimator, see estimate.ParseMethod
	Compact      bool   `yaml:"compact"`       // compact the dictionary after training
	MinFrequency int    `yaml:"min_frequency"` // rarer tokens map to <OOV>
	CacheSize    int    `yaml:"cache_size"`    // entries per query cache
	Candidates   int    `yaml:"candidates"`    // continuations scored by PredictNext
}

// LoadParams reads parameters from YAML. Unknown keys are an error. The
// parameters are not validated, as callers may want to override some of them
// first.
func LoadParams(r io.Reader) (Params, error) {
	var p Params
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return p, fmt.Errorf("cannot read parameters: %w", err)
	}
	return p, nil
}

// Validate checks the parameters and fills in defaults for zero values.
func (p *Params) Validate() error {
	if p.Order < 1 {
		return fmt.Errorf("%w: order is %d", ErrMissingOrder, p.Order)
	}
	if p.Smoothing == "" {
		p.Smoothing = DefaultSmoothing
	}
	if _, err := estimate.ParseMethod(p.Smoothing); err != nil {
		return err
	}
	if p.MinFrequency < 0 {
		return fmt.Errorf("minimum frequency must not be negative: %d", p.MinFrequency)
	}
	if p.CacheSize <= 0 {
		p.CacheSize = DefaultCacheSize
	}
	if p.Candidates <= 0 {
		p.Candidates = DefaultCandidates
	}
	return nil
}

func (p Params) method() estimate.Method {
	m, _ := estimate.ParseMethod(p.Smoothing)
	return m
}
