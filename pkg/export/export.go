// Package export shapes records for a target training format.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/record"
)

// Profile names an export shape.
type Profile string

const (
	TrainingMinimal    Profile = "training_minimal"
	TrainingWithSource Profile = "training_with_source"
	DebugFull          Profile = "debug_full"
)

var ErrUnknownProfile = errors.New("unknown export profile")

type minimalRow struct {
	Text string `json:"text"`
}

type sourceRow struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// Profiles lists the supported profiles, sorted.
func Profiles() []Profile {
	p := []Profile{TrainingMinimal, TrainingWithSource, DebugFull}
	sort.Slice(p, func(i, j int) bool { return p[i] < p[j] })
	return p
}

// ParseProfile validates a profile name.
func ParseProfile(name string) (Profile, error) {
	p := Profile(name)
	switch p {
	case TrainingMinimal, TrainingWithSource, DebugFull:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnknownProfile, name, Profiles())
}

// Apply projects records onto the fields kept by profile.
func Apply(records []models.Record, profile Profile) ([]any, error) {
	rows := make([]any, 0, len(records))
	switch profile {
	case TrainingMinimal:
		for _, r := range records {
			rows = append(rows, minimalRow{Text: r.Text})
		}
	case TrainingWithSource:
		for _, r := range records {
			rows = append(rows, sourceRow{Text: r.Text, SourceURL: r.SourceURL})
		}
	case DebugFull:
		for _, r := range records {
			rows = append(rows, r)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return rows, nil
}

// WriteFile validates records, applies profile and writes the rows as
// JSONL to path. It returns the number of lines written.
func WriteFile(path string, records []models.Record, profile Profile) (int, error) {
	if len(records) == 0 {
		return 0, record.ErrNoRecords
	}
	if profile == DebugFull {
		if err := record.WriteFile(path, records); err != nil {
			return 0, err
		}
		return len(records), nil
	}

	for i, r := range records {
		if err := record.Validate(r); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}
	rows, err := Apply(records, profile)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return 0, fmt.Errorf("failed to encode row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush output file: %w", err)
	}
	return len(rows), f.Close()
}
