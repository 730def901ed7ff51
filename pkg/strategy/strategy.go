// Package strategy implements the extraction methods the dispatcher can
// choose from. Each strategy turns a URL into plain text and reports a
// fixed confidence reflecting how reliable the method usually is.
package strategy

import (
	"context"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// Fixed per-strategy confidence scores.
const (
	ConfidenceStaticHTML = 0.9
	ConfidenceDOMBased   = 0.8
	ConfidenceJSRendered = 0.7
	ConfidenceAPIBased   = 0.6
	ConfidenceFallback   = 0.2
)

// Result is the output of one strategy execution.
type Result struct {
	Text       string
	Strategy   models.StrategyName
	Confidence float64
}

// Strategy extracts page text for a URL.
type Strategy interface {
	Name() models.StrategyName
	Execute(ctx context.Context, url string) (Result, error)
}

// Set resolves strategy names to implementations.
type Set struct {
	byName map[models.StrategyName]Strategy
}

// NewSet registers strategies by their Name. Later entries replace
// earlier ones with the same name.
func NewSet(strategies ...Strategy) *Set {
	s := &Set{byName: make(map[models.StrategyName]Strategy, len(strategies))}
	for _, st := range strategies {
		s.byName[st.Name()] = st
	}
	return s
}

// Get returns the strategy for name. Unregistered names resolve to a
// Fallback that explains the problem.
func (s *Set) Get(name models.StrategyName) Strategy {
	if st, ok := s.byName[name]; ok {
		return st
	}
	return Fallback{Reason: "unknown strategy"}
}
