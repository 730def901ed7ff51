package models

// Dedup strategy labels reported in MergeStats.
const (
	DedupFingerprint    = "fingerprint"
	DedupNormalizedText = "normalized_text"
)

// MergeStats is the complete accounting of one merge run.
// WrittenRecords + SkippedDuplicates + SkippedInvalid == InputLines.
type MergeStats struct {
	WrittenRecords    int    `json:"written_records"`
	SkippedDuplicates int    `json:"skipped_duplicates"`
	SkippedInvalid    int    `json:"skipped_invalid"`
	InputFiles        int    `json:"input_files"`
	InputLines        int    `json:"input_lines"`
	DedupStrategy     string `json:"dedup_strategy"`
}
