package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/chunker"
	"github.com/dtnitsch/llm-web-dataset/pkg/record"
)

// Options configures an Orchestrator. A zero Chunk uses
// chunker.DefaultOptions; Workers below 1 means sequential.
type Options struct {
	Chunk   chunker.Options
	Workers int
	Logger  *slog.Logger
}

// URLResult is everything produced for one input URL.
type URLResult struct {
	URL            string
	Records        []models.Record
	Outcome        Outcome
	FallbackReason string
}

// FellBack reports whether the URL produced the placeholder record.
func (r URLResult) FellBack() bool {
	return r.FallbackReason != ""
}

type Orchestrator struct {
	dispatcher *Dispatcher
	chunk      chunker.Options
	workers    int
	logger     *slog.Logger
}

func NewOrchestrator(dispatcher *Dispatcher, opts Options) (*Orchestrator, error) {
	if opts.Chunk == (chunker.Options{}) {
		opts.Chunk = chunker.DefaultOptions()
	}
	if err := opts.Chunk.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		dispatcher: dispatcher,
		chunk:      opts.Chunk,
		workers:    opts.Workers,
		logger:     opts.Logger,
	}, nil
}

// Run returns at least one record for url.
func (o *Orchestrator) Run(ctx context.Context, url string) []models.Record {
	return o.process(ctx, url).Records
}

// RunBatch concatenates Run over urls in input order.
func (o *Orchestrator) RunBatch(ctx context.Context, urls []string) []models.Record {
	var records []models.Record
	for _, res := range o.RunBatchDetailed(ctx, urls) {
		records = append(records, res.Records...)
	}
	return records
}

type job struct {
	index int
	url   string
}

// RunBatchDetailed processes urls with the configured worker count.
// Results are indexed by input position.
func (o *Orchestrator) RunBatchDetailed(ctx context.Context, urls []string) []URLResult {
	results := make([]URLResult, len(urls))
	workers := min(o.workers, len(urls))

	if workers <= 1 {
		for i, url := range urls {
			results[i] = o.process(ctx, url)
		}
		return results
	}

	o.logger.Info("Starting concurrent extraction", "url_count", len(urls), "workers", workers)
	var wg sync.WaitGroup
	jobs := make(chan job, len(urls))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go o.worker(ctx, w, &wg, jobs, results)
	}

	for i, url := range urls {
		jobs <- job{index: i, url: url}
	}
	close(jobs)

	wg.Wait()
	o.logger.Info("All extraction workers finished")
	return results
}

func (o *Orchestrator) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan job, results []URLResult) {
	defer wg.Done()
	for j := range jobs {
		o.logger.Debug("Worker started job", "worker_id", id, "url", j.url)
		results[j.index] = o.process(ctx, j.url)
	}
}

func (o *Orchestrator) process(ctx context.Context, url string) URLResult {
	out := o.dispatcher.Dispatch(ctx, url)
	res := URLResult{URL: url, Outcome: out}
	if out.Err != nil {
		return o.fallback(res, out.Err.Error())
	}

	chunks, err := chunker.Chunk(out.Text, o.chunk)
	if err != nil {
		return o.fallback(res, err.Error())
	}
	if len(chunks) == 0 {
		return o.fallback(res, ErrNoChunks.Error())
	}

	records := make([]models.Record, 0, len(chunks))
	for _, c := range chunks {
		rec, err := record.Build(c, url, out.SiteType, out.Strategy, out.Confidence)
		if err != nil {
			return o.fallback(res, fmt.Sprintf("invalid record: %v", err))
		}
		records = append(records, rec)
	}
	res.Records = records
	o.logger.Info("Extracted URL", "url", url, "strategy", out.Strategy, "records", len(records))
	return res
}

// Reject returns the fallback result for a URL that is never dispatched,
// such as one that failed validation.
func (o *Orchestrator) Reject(url, reason string) URLResult {
	res := URLResult{
		URL:     url,
		Outcome: Outcome{URL: url, SiteType: models.SiteUnknown, Strategy: models.StrategyFallback},
	}
	return o.fallback(res, reason)
}

func (o *Orchestrator) fallback(res URLResult, reason string) URLResult {
	o.logger.Warn("Using fallback record", "url", res.URL, "reason", reason)
	res.FallbackReason = reason
	res.Records = []models.Record{record.BuildFallback(res.URL, res.Outcome.SiteType, reason)}
	return res
}
