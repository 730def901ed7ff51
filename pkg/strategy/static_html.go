package strategy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/fetcher"
)

// StaticHTML fetches the page over HTTP and keeps the main article body
// found by readability. Suited to news, blogs, wikis and papers.
type StaticHTML struct {
	Fetcher *fetcher.Fetcher
}

func (s *StaticHTML) Name() models.StrategyName {
	return models.StrategyStaticHTML
}

func (s *StaticHTML) Execute(ctx context.Context, rawURL string) (Result, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("invalid URL: %w", err)
	}

	body, err := s.Fetcher.GetHTMLBytes(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return Result{}, fmt.Errorf("readability failed: %w", err)
	}

	text, err := htmlToText(article.Content)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:       text,
		Strategy:   models.StrategyStaticHTML,
		Confidence: ConfidenceStaticHTML,
	}, nil
}
