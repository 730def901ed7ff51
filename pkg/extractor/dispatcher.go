// Package extractor turns URLs into validated records. The Dispatcher
// picks and runs an extraction strategy with one quality-gated retry; the
// Orchestrator chunks the result and builds records, falling back to a
// placeholder record whenever extraction does not succeed.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/detector"
	"github.com/dtnitsch/llm-web-dataset/pkg/strategy"
)

// MinTextLength is the quality gate, in runes of trimmed text.
const MinTextLength = 300

// retryStrategy runs once when the primary strategy is insufficient.
const retryStrategy = models.StrategyDOMBased

var (
	ErrTextTooShort = errors.New("extracted text too short")
	ErrNoChunks     = errors.New("no valid chunks produced")
)

// Outcome describes one dispatch. Err is nil when Text passed the
// quality gate.
type Outcome struct {
	URL        string
	SiteType   models.SiteType
	Text       string
	Strategy   models.StrategyName
	Confidence float64
	Attempts   []models.StrategyName
	Err        error
}

type Dispatcher struct {
	strategies *strategy.Set
	logger     *slog.Logger
}

func NewDispatcher(strategies *strategy.Set, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{strategies: strategies, logger: logger}
}

// Dispatch classifies rawURL, runs its primary strategy and, if that
// errors or yields fewer than MinTextLength runes, retries once with
// dom_based. It never returns a Go error: failures land in Outcome.Err.
func (d *Dispatcher) Dispatch(ctx context.Context, rawURL string) Outcome {
	siteType := detector.ClassifySiteType(rawURL)
	primary := detector.PrimaryStrategy(siteType)
	out := Outcome{URL: rawURL, SiteType: siteType}

	res, err := d.attempt(ctx, &out, primary)
	if err == nil && longEnough(res.Text) {
		out.accept(res)
		return out
	}
	d.logger.Warn("Primary strategy insufficient, retrying",
		"url", rawURL, "strategy", primary, "retry", retryStrategy, "error", err, "text_len", textLen(res.Text))

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.Err = ctxErr
		return out
	}

	res, err = d.attempt(ctx, &out, retryStrategy)
	switch {
	case err != nil:
		out.Err = fmt.Errorf("%s: %w", retryStrategy, err)
	case !longEnough(res.Text):
		out.Err = fmt.Errorf("%w: %d characters after %s", ErrTextTooShort, textLen(res.Text), retryStrategy)
	default:
		out.accept(res)
		return out
	}
	d.logger.Warn("Extraction failed, falling back", "url", rawURL, "error", out.Err)
	return out
}

func (d *Dispatcher) attempt(ctx context.Context, out *Outcome, name models.StrategyName) (res strategy.Result, err error) {
	out.Attempts = append(out.Attempts, name)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", name, r)
		}
	}()
	return d.strategies.Get(name).Execute(ctx, out.URL)
}

func (o *Outcome) accept(res strategy.Result) {
	o.Text = res.Text
	o.Strategy = res.Strategy
	o.Confidence = res.Confidence
	o.Err = nil
}

func textLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

func longEnough(text string) bool {
	return textLen(text) >= MinTextLength
}
