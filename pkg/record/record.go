// Package record builds and validates the canonical JSONL record.
package record

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// FallbackConfidence is the fixed confidence of fallback records.
const FallbackConfidence = 0.2

// FallbackText opens every fallback record.
const FallbackText = "Content could not be reliably extracted from this page."

// SchemaError reports the first field that violates the record schema.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record field %q %s", e.Field, e.Reason)
}

// Build assembles a record stamped with the current UTC time and
// validates it. Confidence is rounded to 2 decimals.
func Build(text, sourceURL string, siteType models.SiteType, strategy models.StrategyName, confidence float64) (models.Record, error) {
	r := models.Record{
		Text:               strings.TrimSpace(text),
		SourceURL:          sourceURL,
		SiteType:           siteType,
		ExtractionStrategy: strategy,
		Confidence:         RoundConfidence(confidence),
		ScrapedAt:          Timestamp(time.Now()),
	}
	if err := Validate(r); err != nil {
		return models.Record{}, err
	}
	return r, nil
}

// BuildFallback returns the placeholder record for a URL that could not be
// extracted. It never fails: an unknown site type becomes "unknown".
func BuildFallback(sourceURL string, siteType models.SiteType, reason string) models.Record {
	if !siteType.Valid() {
		siteType = models.SiteUnknown
	}
	if sourceURL == "" {
		sourceURL = "about:blank"
	}

	text := FallbackText
	if reason = strings.TrimSpace(reason); reason != "" {
		text += " Reason: " + reason
	}

	return models.Record{
		Text:               text,
		SourceURL:          sourceURL,
		SiteType:           siteType,
		ExtractionStrategy: models.StrategyFallback,
		Confidence:         FallbackConfidence,
		ScrapedAt:          Timestamp(time.Now()),
	}
}

// Validate checks every required field of r.
func Validate(r models.Record) error {
	switch {
	case strings.TrimSpace(r.Text) == "":
		return &SchemaError{Field: "text", Reason: "must be a non-empty string"}
	case r.SourceURL == "":
		return &SchemaError{Field: "source_url", Reason: "is required"}
	case !r.SiteType.Valid():
		return &SchemaError{Field: "site_type", Reason: fmt.Sprintf("has unknown value %q", r.SiteType)}
	case !r.ExtractionStrategy.Valid():
		return &SchemaError{Field: "extraction_strategy", Reason: fmt.Sprintf("has unknown value %q", r.ExtractionStrategy)}
	case math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1:
		return &SchemaError{Field: "confidence", Reason: fmt.Sprintf("must be between 0 and 1, got %v", r.Confidence)}
	case r.ScrapedAt == "":
		return &SchemaError{Field: "scraped_at", Reason: "is required"}
	}
	return nil
}

// RoundConfidence rounds to 2 decimal places.
func RoundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}

// Timestamp formats t as ISO-8601 UTC with a trailing Z.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
