package strategy

import (
	"context"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/record"
)

// APIBased is reserved for sites with a public API. No API clients are
// wired yet, so it yields no text.
type APIBased struct{}

func (APIBased) Name() models.StrategyName {
	return models.StrategyAPIBased
}

func (APIBased) Execute(_ context.Context, _ string) (Result, error) {
	return Result{
		Text:       "",
		Strategy:   models.StrategyAPIBased,
		Confidence: ConfidenceAPIBased,
	}, nil
}

// Fallback returns the fixed placeholder text, never touching the network.
type Fallback struct {
	Reason string
}

func (Fallback) Name() models.StrategyName {
	return models.StrategyFallback
}

func (f Fallback) Execute(_ context.Context, _ string) (Result, error) {
	text := record.FallbackText
	if f.Reason != "" {
		text += " Reason: " + f.Reason
	}
	return Result{
		Text:       text,
		Strategy:   models.StrategyFallback,
		Confidence: ConfidenceFallback,
	}, nil
}
