// Package manifest summarizes an extraction run: per-URL outcomes and the
// dominant keywords of the kept records.
package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/analytics"
	"github.com/dtnitsch/llm-web-dataset/pkg/extractor"
)

// TopKeywordCount is how many keywords a manifest lists.
const TopKeywordCount = 25

// Manifest is written next to the dataset as <output>.manifest.yaml.
type Manifest struct {
	RunID                string     `yaml:"run_id,omitempty"`
	GeneratedAt          string     `yaml:"generated_at"`
	Output               string     `yaml:"output"`
	Profile              string     `yaml:"profile"`
	TotalURLs            int        `yaml:"total_urls"`
	Succeeded            int        `yaml:"succeeded"`
	FellBack             int        `yaml:"fell_back"`
	RecordsExtracted     int        `yaml:"records_extracted"`
	RecordsAfterCleaning int        `yaml:"records_after_cleaning"`
	TopKeywords          []string   `yaml:"top_keywords"`
	URLs                 []URLEntry `yaml:"urls"`
}

// URLEntry is the outcome for one input URL.
type URLEntry struct {
	URL            string   `yaml:"url"`
	SiteType       string   `yaml:"site_type"`
	Strategy       string   `yaml:"strategy"`
	Attempts       []string `yaml:"attempts"`
	Records        int      `yaml:"records"`
	FallbackReason string   `yaml:"fallback_reason,omitempty"`
}

// Build summarizes results. kept are the records that survived cleaning.
func Build(results []extractor.URLResult, kept []models.Record) Manifest {
	m := Manifest{
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
		TotalURLs:            len(results),
		RecordsAfterCleaning: len(kept),
		URLs:                 make([]URLEntry, 0, len(results)),
	}

	for _, res := range results {
		entry := URLEntry{
			URL:            res.URL,
			SiteType:       string(res.Outcome.SiteType),
			Strategy:       string(res.Outcome.Strategy),
			Records:        len(res.Records),
			FallbackReason: res.FallbackReason,
		}
		for _, a := range res.Outcome.Attempts {
			entry.Attempts = append(entry.Attempts, string(a))
		}
		if res.FellBack() {
			m.FellBack++
			entry.Strategy = string(models.StrategyFallback)
		} else {
			m.Succeeded++
		}
		m.RecordsExtracted += len(res.Records)
		m.URLs = append(m.URLs, entry)
	}

	texts := make([]string, 0, len(kept))
	for _, r := range kept {
		if r.ExtractionStrategy != models.StrategyFallback {
			texts = append(texts, r.Text)
		}
	}
	m.TopKeywords = analytics.TopKeywords(analytics.CorpusFrequency(texts), TopKeywordCount)
	return m
}

// PathFor returns the manifest path for a dataset file.
func PathFor(output string) string {
	return strings.TrimSuffix(output, ".jsonl") + ".manifest.yaml"
}

// WriteFile marshals m as YAML to path.
func WriteFile(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshalling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}

// ReadFile loads a manifest written by WriteFile.
func ReadFile(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}
