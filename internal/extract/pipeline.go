package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/caching"
	"github.com/dtnitsch/llm-web-dataset/pkg/chunker"
	"github.com/dtnitsch/llm-web-dataset/pkg/cleaner"
	"github.com/dtnitsch/llm-web-dataset/pkg/db"
	"github.com/dtnitsch/llm-web-dataset/pkg/export"
	"github.com/dtnitsch/llm-web-dataset/pkg/extractor"
	"github.com/dtnitsch/llm-web-dataset/pkg/fetcher"
	"github.com/dtnitsch/llm-web-dataset/pkg/manifest"
	"github.com/dtnitsch/llm-web-dataset/pkg/qa"
	"github.com/dtnitsch/llm-web-dataset/pkg/strategy"
)

// ErrNothingKept means cleaning removed every record.
var ErrNothingKept = errors.New("no records left after cleaning")

// RejectedReason is the fallback reason for URLs that failed validation.
const RejectedReason = "invalid URL"

// RunOptions carries collaborators that differ between the CLI and tests.
// Rejected URLs are not fetched; each gets a fallback record after the
// records of cfg.URLs.
type RunOptions struct {
	NoClean    bool
	Rejected   []string
	DB         *db.DB
	Strategies *strategy.Set
	Generator  qa.Generator
	Detector   cleaner.LanguageDetector
}

// NewStrategySet wires the network strategies from cfg.
func NewStrategySet(cfg models.Config, logger *slog.Logger) (*strategy.Set, error) {
	var cache *caching.Cache
	if cfg.Fetch.CacheDir != "" {
		var err error
		cache, err = caching.NewCache(cfg.Fetch.CacheDir, cfg.Fetch.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	f := fetcher.NewFetcher(fetcher.Options{
		Timeout:   cfg.Fetch.HTTPTimeout,
		UserAgent: cfg.Fetch.UserAgent,
		Cache:     cache,
		Logger:    logger,
	})

	return strategy.NewSet(
		&strategy.StaticHTML{Fetcher: f},
		&strategy.DOMBased{UserAgent: cfg.Fetch.UserAgent, Timeout: cfg.Fetch.HTTPTimeout},
		strategy.NewJSRendered(cfg.Fetch.UserAgent, cfg.Fetch.RenderTimeout),
		strategy.APIBased{},
		strategy.Fallback{},
	), nil
}

// Run extracts cfg.URLs, cleans and exports the records, writes the
// manifest and, when enabled, the Q/A dataset.
func Run(ctx context.Context, logger *slog.Logger, cfg models.Config, opts RunOptions) (Summary, error) {
	start := time.Now()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	summary := Summary{
		Output:   cfg.Output,
		Profile:  cfg.Profile,
		Manifest: manifest.PathFor(cfg.Output),
		URLs:        len(cfg.URLs) + len(opts.Rejected),
		InvalidURLs: opts.Rejected,
	}

	profile, err := export.ParseProfile(cfg.Profile)
	if err != nil {
		return summary, err
	}

	strategies := opts.Strategies
	if strategies == nil {
		strategies, err = NewStrategySet(cfg, logger)
		if err != nil {
			return summary, err
		}
	}

	orch, err := extractor.NewOrchestrator(extractor.NewDispatcher(strategies, logger), extractor.Options{
		Chunk: chunker.Options{
			MaxChars: cfg.Chunk.MaxChars,
			MinChars: cfg.Chunk.MinChars,
			Overlap:  cfg.Chunk.Overlap,
		},
		Workers: cfg.WorkerCount,
		Logger:  logger,
	})
	if err != nil {
		return summary, err
	}

	runID := startRun(logger, opts.DB, cfg.Output)
	summary.RunID = runID

	logger.Info("Starting extraction", "url_count", summary.URLs, "workers", cfg.WorkerCount, "run_id", runID)
	results := orch.RunBatchDetailed(ctx, cfg.URLs)
	for _, u := range opts.Rejected {
		results = append(results, orch.Reject(u, RejectedReason))
	}

	var records []models.Record
	for _, res := range results {
		records = append(records, res.Records...)
		if res.FellBack() {
			summary.FellBack++
		}
		recordExtraction(logger, opts.DB, runID, res)
	}
	summary.RecordsExtracted = len(records)

	kept := records
	if opts.NoClean {
		summary.Cleaning = cleaner.Stats{Input: len(records), Kept: len(records)}
	} else {
		detector := opts.Detector
		if detector == nil && cfg.Language != "" {
			detector = cleaner.NewLinguaDetector()
		}
		kept, summary.Cleaning = cleaner.Clean(records, cleaner.Options{
			Language: cfg.Language,
			Detector: detector,
			Logger:   logger,
		})
	}

	if len(kept) == 0 {
		finishRun(logger, opts.DB, runID, 0, db.StatusFailed)
		return summary, ErrNothingKept
	}

	written, err := export.WriteFile(cfg.Output, kept, profile)
	if err != nil {
		finishRun(logger, opts.DB, runID, 0, db.StatusFailed)
		return summary, fmt.Errorf("failed to write dataset: %w", err)
	}
	summary.RecordsWritten = written
	logger.Info("Dataset written", "output", cfg.Output, "records", written, "profile", profile)

	m := manifest.Build(results, kept)
	m.RunID = runID
	m.Output = cfg.Output
	m.Profile = string(profile)
	if err := manifest.WriteFile(summary.Manifest, m); err != nil {
		logger.Warn("Failed to write manifest", "path", summary.Manifest, "error", err)
	}

	status := db.StatusSuccess
	if summary.FellBack > 0 {
		status = db.StatusPartial
	}
	finishRun(logger, opts.DB, runID, written, status)

	if cfg.QA.Enabled {
		stats, err := generateQA(ctx, logger, cfg.QA, opts.Generator, kept)
		summary.QA = &stats
		if err != nil {
			return summary, err
		}
		summary.QAOutput = cfg.QA.Output
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// NewGenerator builds the Q/A client from cfg.
func NewGenerator(cfg models.QAConfig) (qa.Generator, error) {
	temperature := cfg.Temperature
	return qa.NewOpenRouterClient(qa.ClientOptions{
		Model:       cfg.Model,
		Temperature: &temperature,
	})
}

func generateQA(ctx context.Context, logger *slog.Logger, cfg models.QAConfig, gen qa.Generator, records []models.Record) (qa.Stats, error) {
	if gen == nil {
		var err error
		gen, err = NewGenerator(cfg)
		if err != nil {
			return qa.Stats{}, err
		}
	}

	pairs, stats, err := qa.BuildDataset(ctx, gen, records, qa.Options{
		MaxItems: cfg.MaxItems,
		Interval: cfg.Interval,
		Logger:   logger,
	})
	if err != nil {
		return stats, err
	}
	if err := qa.WriteJSONL(cfg.Output, pairs); err != nil {
		return stats, fmt.Errorf("failed to write Q/A dataset: %w", err)
	}
	logger.Info("Q/A dataset written", "output", cfg.Output, "pairs", len(pairs))
	return stats, nil
}

func startRun(logger *slog.Logger, database *db.DB, output string) string {
	if database == nil {
		return ""
	}
	runID, err := database.StartRun(db.KindExtract, output)
	if err != nil {
		logger.Warn("Failed to record run start", "error", err)
		return ""
	}
	return runID
}

func recordExtraction(logger *slog.Logger, database *db.DB, runID string, res extractor.URLResult) {
	if database == nil || runID == "" {
		return
	}
	e := db.Extraction{
		URL:            res.URL,
		SiteType:       string(res.Outcome.SiteType),
		Strategy:       string(res.Outcome.Strategy),
		RecordCount:    len(res.Records),
		FallbackReason: res.FallbackReason,
	}
	if res.FellBack() {
		e.Strategy = string(models.StrategyFallback)
	}
	for _, a := range res.Outcome.Attempts {
		e.Attempts = append(e.Attempts, string(a))
	}
	if err := database.RecordExtraction(runID, e); err != nil {
		logger.Warn("Failed to record extraction", "url", res.URL, "error", err)
	}
}

func finishRun(logger *slog.Logger, database *db.DB, runID string, records int, status string) {
	if database == nil || runID == "" {
		return
	}
	if err := database.FinishRun(runID, records, status); err != nil {
		logger.Warn("Failed to record run finish", "run_id", runID, "error", err)
	}
}
