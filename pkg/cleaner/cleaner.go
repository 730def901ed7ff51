// Package cleaner filters extracted records, dropping UI boilerplate and
// low-information text before export.
package cleaner

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/textnorm"
)

// DefaultMinLength is the shortest text, in runes, that is kept.
const DefaultMinLength = 120

// minAlphaRatio is the share of letters below which text is treated as
// symbol noise.
const minAlphaRatio = 0.6

var boilerplatePatterns = compile(
	`\bhome\b`,
	`\bsubscribe\b`,
	`\blogin\b`,
	`\bsign up\b`,
	`\ball rights reserved\b`,
	`\bcookie\b`,
	`\bprivacy policy\b`,
	`\bterms of service\b`,
	`\bread more\b`,
	`\bclick here\b`,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// IsBoilerplate reports whether text contains any UI boilerplate phrase.
func IsBoilerplate(text string) bool {
	lowered := strings.ToLower(text)
	for _, re := range boilerplatePatterns {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}

// IsLowQuality reports whether trimmed text is shorter than minLength
// runes or is made of less than 60% letters.
func IsLowQuality(text string, minLength int) bool {
	trimmed := strings.TrimSpace(text)
	total := utf8.RuneCountInString(trimmed)
	if total < minLength {
		return true
	}
	if total == 0 {
		return true
	}

	alpha := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha)/float64(total) < minAlphaRatio
}

// Options configures Clean.
type Options struct {
	MinLength int

	// Language, when set, keeps only records detected as this ISO 639-1 code.
	Language string
	Detector LanguageDetector

	Logger *slog.Logger
}

// Stats counts why records were dropped.
type Stats struct {
	Input       int `json:"input" yaml:"input"`
	Kept        int `json:"kept" yaml:"kept"`
	Empty       int `json:"empty" yaml:"empty"`
	Boilerplate int `json:"boilerplate" yaml:"boilerplate"`
	LowQuality  int `json:"low_quality" yaml:"low_quality"`
	Language    int `json:"language" yaml:"language"`
}

// Clean normalizes each record's text and drops empty, boilerplate,
// low-quality and (optionally) wrong-language records. Metadata of kept
// records is passed through unchanged.
func Clean(records []models.Record, opts Options) ([]models.Record, Stats) {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := Stats{Input: len(records)}
	cleaned := make([]models.Record, 0, len(records))

	for _, r := range records {
		text := textnorm.Normalize(r.Text)
		if text == "" {
			stats.Empty++
			continue
		}
		if IsBoilerplate(text) {
			stats.Boilerplate++
			continue
		}
		if IsLowQuality(text, opts.MinLength) {
			stats.LowQuality++
			continue
		}
		if opts.Language != "" && opts.Detector != nil {
			lang, ok := opts.Detector.Detect(text)
			if !ok || !strings.EqualFold(lang, opts.Language) {
				logger.Debug("Dropping record in other language", "url", r.SourceURL, "language", lang)
				stats.Language++
				continue
			}
		}

		kept := r
		kept.Text = text
		cleaned = append(cleaned, kept)
	}

	stats.Kept = len(cleaned)
	logger.Info("Cleaning finished",
		"input", stats.Input,
		"kept", stats.Kept,
		"boilerplate", stats.Boilerplate,
		"low_quality", stats.LowQuality,
		"language", stats.Language,
	)
	return cleaned, stats
}
