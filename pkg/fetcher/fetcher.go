package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/llm-web-dataset/pkg/caching"
)

// DefaultTimeout bounds one HTTP fetch.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Cache     *caching.Cache
	Logger    *slog.Logger
}

// Fetcher downloads raw HTML, optionally through an on-disk cache.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cache     *caching.Cache
	logger    *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		cache:     opts.Cache,
		logger:    opts.Logger,
	}
}

// UserAgent returns the User-Agent header sent with requests.
func (f *Fetcher) UserAgent() string {
	return f.userAgent
}

// Timeout returns the per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.client.Timeout
}

// GetHTMLBytes returns the body of url, serving fresh cache hits without
// touching the network.
func (f *Fetcher) GetHTMLBytes(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(url); ok {
			f.logger.Debug("Raw HTML found in cache", "url", url)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if f.cache != nil {
		if err := f.cache.Set(url, bodyBytes); err != nil {
			f.logger.Warn("Failed to cache raw HTML", "url", url, "error", err)
		}
	}
	return bodyBytes, nil
}
