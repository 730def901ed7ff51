package qa

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// MinTextLength is the shortest record text sent to the model, in runes.
const MinTextLength = 80

// DefaultMaxItems caps generation attempts per run.
const DefaultMaxItems = 10

var ErrNoPairs = errors.New("no Q/A records to write")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRecord is one line of the chatbot dataset.
type ChatRecord struct {
	Messages []Message `json:"messages"`
}

// NewChatRecord renders p as a user/assistant exchange.
func NewChatRecord(p Pair) ChatRecord {
	return ChatRecord{Messages: []Message{
		{Role: "user", Content: p.Question},
		{Role: "assistant", Content: p.Answer},
	}}
}

// Options controls BuildDataset. Interval spaces consecutive requests;
// zero disables pacing.
type Options struct {
	MaxItems int
	Interval time.Duration
	Logger   *slog.Logger
}

// Stats summarizes a BuildDataset run.
type Stats struct {
	Attempted int `json:"attempted"`
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// BuildDataset generates one chat record per record text, in order, until
// MaxItems attempts have been made. Short texts are skipped and
// generation failures are counted without stopping the run. Only context
// cancellation is returned as an error.
func BuildDataset(ctx context.Context, gen Generator, records []models.Record, opts Options) ([]ChatRecord, Stats, error) {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	var stats Stats
	out := []ChatRecord{}
	for _, r := range records {
		if stats.Attempted >= opts.MaxItems {
			break
		}
		if utf8.RuneCountInString(r.Text) < MinTextLength {
			stats.Skipped++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return out, stats, fmt.Errorf("qa generation interrupted: %w", err)
		}

		stats.Attempted++
		pair, err := gen.Generate(ctx, r.Text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, stats, fmt.Errorf("qa generation interrupted: %w", ctxErr)
			}
			stats.Failed++
			logger.Warn("Q/A generation failed", "source_url", r.SourceURL, "error", err)
			continue
		}
		stats.Generated++
		out = append(out, NewChatRecord(pair))
	}

	logger.Info("Q/A generation finished",
		"attempted", stats.Attempted, "generated", stats.Generated, "failed", stats.Failed, "skipped", stats.Skipped)
	return out, stats, nil
}

// WriteJSONL (re)creates path with one chat record per line.
func WriteJSONL(path string, records []ChatRecord) error {
	if len(records) == 0 {
		return ErrNoPairs
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create Q/A output: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode Q/A record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush Q/A output: %w", err)
	}
	return f.Close()
}
