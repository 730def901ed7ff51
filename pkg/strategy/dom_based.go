package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// domSelector lists the elements whose text is collected.
const domSelector = "p, li, h1, h2, h3"

// DOMBased walks the fetched DOM and concatenates paragraph, list item and
// heading text. Suited to forums, job boards and directories.
type DOMBased struct {
	UserAgent string
	Timeout   time.Duration
}

func (d *DOMBased) Name() models.StrategyName {
	return models.StrategyDOMBased
}

func (d *DOMBased) Execute(ctx context.Context, rawURL string) (Result, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	}
	if d.UserAgent != "" {
		opts = append(opts, colly.UserAgent(d.UserAgent))
	}
	c := colly.NewCollector(opts...)

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c.SetRequestTimeout(timeout)

	var parts []string
	c.OnHTML(domSelector, func(e *colly.HTMLElement) {
		if t := strings.TrimSpace(e.Text); t != "" {
			parts = append(parts, t)
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return Result{}, fmt.Errorf("dom extraction failed: %w", err)
	}

	return Result{
		Text:       strings.Join(parts, " "),
		Strategy:   models.StrategyDOMBased,
		Confidence: ConfidenceDOMBased,
	}, nil
}
