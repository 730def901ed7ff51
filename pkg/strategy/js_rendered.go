package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// RenderFunc returns the fully rendered HTML of a page.
type RenderFunc func(ctx context.Context, url string) (string, error)

// JSRendered loads the page in a headless browser before extracting text.
// Suited to storefronts and listing sites that build content client side.
type JSRendered struct {
	Render RenderFunc
}

// NewJSRendered renders with headless Chrome via chromedp.
func NewJSRendered(userAgent string, timeout time.Duration) *JSRendered {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JSRendered{
		Render: func(ctx context.Context, url string) (string, error) {
			return renderWithChrome(ctx, url, userAgent, timeout)
		},
	}
}

func (j *JSRendered) Name() models.StrategyName {
	return models.StrategyJSRendered
}

func (j *JSRendered) Execute(ctx context.Context, rawURL string) (Result, error) {
	html, err := j.Render(ctx, rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("render failed: %w", err)
	}

	text, err := htmlToText(html)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:       text,
		Strategy:   models.StrategyJSRendered,
		Confidence: ConfidenceJSRendered,
	}, nil
}

func renderWithChrome(ctx context.Context, url, userAgent string, timeout time.Duration) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
