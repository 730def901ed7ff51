package extract

import (
	"github.com/dtnitsch/llm-web-dataset/pkg/cleaner"
	"github.com/dtnitsch/llm-web-dataset/pkg/qa"
)

// Summary is printed to stdout after an extract run.
type Summary struct {
	RunID            string        `json:"run_id,omitempty"`
	Output           string        `json:"output"`
	Profile          string        `json:"profile"`
	Manifest         string        `json:"manifest"`
	URLs             int           `json:"urls"`
	InvalidURLs      []string      `json:"invalid_urls,omitempty"`
	FellBack         int           `json:"fell_back"`
	RecordsExtracted int           `json:"records_extracted"`
	RecordsWritten   int           `json:"records_written"`
	Cleaning         cleaner.Stats `json:"cleaning"`
	QAOutput         string        `json:"qa_output,omitempty"`
	QA               *qa.Stats     `json:"qa,omitempty"`
	DurationMS       int64         `json:"duration_ms"`
}
