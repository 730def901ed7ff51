package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// RunKind distinguishes ledger entries.
type RunKind string

const (
	KindExtract RunKind = "extract"
	KindMerge   RunKind = "merge"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrRunNotFound = errors.New("run not found")

// Run is one row of the runs table.
type Run struct {
	RunID       string
	Kind        RunKind
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
	OutputPath  string
	RecordCount int
	Status      string
}

// Extraction is the stored outcome of one URL in an extract run.
type Extraction struct {
	URL            string
	SiteType       string
	Strategy       string
	Attempts       []string
	RecordCount    int
	FallbackReason string
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StartRun inserts a running entry and returns its new run ID.
func (db *DB) StartRun(kind RunKind, outputPath string) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO runs (run_id, kind, started_at, output_path, status)
		VALUES (?, ?, ?, ?, ?)
	`, runID, string(kind), formatTime(time.Now()), outputPath, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return runID, nil
}

// FinishRun stamps finished_at and stores the final count and status.
func (db *DB) FinishRun(runID string, recordCount int, status string) error {
	result, err := db.Exec(`
		UPDATE runs SET finished_at = ?, record_count = ?, status = ?
		WHERE run_id = ?
	`, formatTime(time.Now()), recordCount, status, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordExtraction stores the outcome of one URL.
func (db *DB) RecordExtraction(runID string, e Extraction) error {
	_, err := db.Exec(`
		INSERT INTO url_extractions (run_id, url, site_type, strategy, attempts, record_count, fallback_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, e.URL, e.SiteType, e.Strategy, strings.Join(e.Attempts, ","), e.RecordCount, NewNullString(e.FallbackReason))
	if err != nil {
		return fmt.Errorf("failed to record extraction: %w", err)
	}
	return nil
}

// RecordMerge stores merge statistics for runID.
func (db *DB) RecordMerge(runID string, stats models.MergeStats) error {
	_, err := db.Exec(`
		INSERT INTO merge_runs (run_id, input_files, input_lines, written, skipped_duplicates, skipped_invalid, dedup_strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, stats.InputFiles, stats.InputLines, stats.WrittenRecords, stats.SkippedDuplicates, stats.SkippedInvalid, stats.DedupStrategy)
	if err != nil {
		return fmt.Errorf("failed to record merge: %w", err)
	}
	return nil
}

const runColumns = "run_id, kind, started_at, finished_at, output_path, record_count, status"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var kind, started string
	var finished sql.NullString
	if err := row.Scan(&r.RunID, &kind, &started, &finished, &r.OutputPath, &r.RecordCount, &r.Status); err != nil {
		return Run{}, err
	}
	r.Kind = RunKind(kind)
	r.StartedAt = parseTime(started)
	if finished.Valid {
		r.FinishedAt = parseTime(finished.String)
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run.
func (db *DB) GetRun(runID string) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// GetLatestRunID returns the ID of the most recently started run.
func (db *DB) GetLatestRunID() (string, error) {
	var runID string
	err := db.QueryRow(`SELECT run_id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID, nil
}

// GetRunExtractions returns the URL outcomes of an extract run in
// insertion order.
func (db *DB) GetRunExtractions(runID string) ([]Extraction, error) {
	rows, err := db.Query(`
		SELECT url, site_type, strategy, attempts, record_count, fallback_reason
		FROM url_extractions
		WHERE run_id = ?
		ORDER BY extraction_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var e Extraction
		var attempts, reason sql.NullString
		if err := rows.Scan(&e.URL, &e.SiteType, &e.Strategy, &attempts, &e.RecordCount, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		if attempts.Valid && attempts.String != "" {
			e.Attempts = strings.Split(attempts.String, ",")
		}
		e.FallbackReason = reason.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetMergeStats returns the statistics recorded for a merge run.
func (db *DB) GetMergeStats(runID string) (*models.MergeStats, error) {
	var s models.MergeStats
	err := db.QueryRow(`
		SELECT input_files, input_lines, written, skipped_duplicates, skipped_invalid, dedup_strategy
		FROM merge_runs WHERE run_id = ?
	`, runID).Scan(&s.InputFiles, &s.InputLines, &s.WrittenRecords, &s.SkippedDuplicates, &s.SkippedInvalid, &s.DedupStrategy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merge stats: %w", err)
	}
	return &s, nil
}

// NewNullString maps "" to NULL.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
