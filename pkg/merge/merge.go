// Package merge combines JSONL datasets into one file, dropping invalid
// lines and, optionally, duplicate texts.
package merge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/textnorm"
)

// maxLineBytes bounds one JSONL line.
const maxLineBytes = 16 << 20

// SourceField is the key added to each written object when tagging.
const SourceField = "dataset_source"

// FileMissingError reports an input path that does not exist.
type FileMissingError struct {
	Path string
}

func (e *FileMissingError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *FileMissingError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// Options controls deduplication and source tagging.
type Options struct {
	Deduplicate    bool
	AddSourceTag   bool
	UseFingerprint bool
	Logger         *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Deduplicate:    true,
		AddSourceTag:   false,
		UseFingerprint: true,
	}
}

// Input is one named JSONL stream.
type Input struct {
	Name   string
	Reader io.Reader
}

// Merge reads inputs in order and writes every valid, non-duplicate line
// to output. All inputs must exist before output is created.
func Merge(inputs []string, output string, opts Options) (models.MergeStats, error) {
	for _, path := range inputs {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return models.MergeStats{}, &FileMissingError{Path: path}
			}
			return models.MergeStats{}, fmt.Errorf("failed to stat input %s: %w", path, err)
		}
		if info.IsDir() {
			return models.MergeStats{}, fmt.Errorf("input %s is a directory", path)
		}
	}

	files := make([]*os.File, 0, len(inputs))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	named := make([]Input, 0, len(inputs))
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			return models.MergeStats{}, fmt.Errorf("failed to open input %s: %w", path, err)
		}
		files = append(files, f)
		named = append(named, Input{Name: filepath.Base(path), Reader: f})
	}

	out, err := os.Create(output)
	if err != nil {
		return models.MergeStats{}, fmt.Errorf("failed to create output file: %w", err)
	}

	stats, err := MergeReaders(named, out, opts)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return stats, err
}

// MergeReaders is Merge over in-memory streams. Input.Name is the
// dataset_source value.
func MergeReaders(inputs []Input, w io.Writer, opts Options) (models.MergeStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := models.MergeStats{
		InputFiles:    len(inputs),
		DedupStrategy: dedupStrategy(opts),
	}
	seen := make(map[string]struct{})
	bw := bufio.NewWriter(w)

	var err error
	for _, in := range inputs {
		if err = mergeInput(in, bw, seen, &stats, opts, logger); err != nil {
			break
		}
	}

	// Lines already counted as written must reach w even on error.
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("failed to flush merged output: %w", flushErr)
	}
	return stats, err
}

func mergeInput(in Input, bw *bufio.Writer, seen map[string]struct{}, stats *models.MergeStats, opts Options, logger *slog.Logger) error {
	br := bufio.NewReaderSize(in.Reader, 64*1024)

	lineNo := 0
	for {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", in.Name, err)
		}
		lineNo++

		if tooLong {
			stats.InputLines++
			stats.SkippedInvalid++
			logger.Warn("Skipping oversized line", "input", in.Name, "line", lineNo, "limit_bytes", maxLineBytes)
			continue
		}
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		stats.InputLines++

		fields, text, ok := parseLine(line)
		if !ok {
			stats.SkippedInvalid++
			logger.Debug("Skipping invalid line", "input", in.Name, "line", lineNo)
			continue
		}

		if opts.Deduplicate {
			key := dedupKey(text, opts.UseFingerprint)
			if _, dup := seen[key]; dup {
				stats.SkippedDuplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		encoded, err := encodeLine(line, fields, in.Name, opts.AddSourceTag)
		if err != nil {
			return err
		}
		if _, err := bw.Write(encoded); err != nil {
			return fmt.Errorf("failed to write merged line: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write merged line: %w", err)
		}
		stats.WrittenRecords++
	}
	logger.Info("Merged input", "input", in.Name, "lines", lineNo)
	return nil
}

// readLine returns the next line without its newline. A line longer than
// maxLineBytes is consumed up to its newline and reported as tooLong.
// io.EOF is returned only when no bytes remain.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	tooLong, read := false, false
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		content := bytes.TrimSuffix(chunk, []byte("\n"))
		if !tooLong {
			if len(line)+len(content) > maxLineBytes {
				tooLong = true
				line = nil
			} else {
				line = append(line, content...)
			}
		}

		switch {
		case err == nil:
			return line, tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF:
			if !read {
				return nil, false, io.EOF
			}
			return line, tooLong, nil
		default:
			return nil, false, err
		}
	}
}

func dedupStrategy(opts Options) string {
	if opts.UseFingerprint {
		return models.DedupFingerprint
	}
	return models.DedupNormalizedText
}

func dedupKey(text string, fingerprint bool) string {
	if fingerprint {
		return textnorm.Fingerprint(text)
	}
	return textnorm.DedupNormalize(text)
}

// parseLine accepts a JSON object whose "text" is a non-blank string.
func parseLine(line []byte) (map[string]json.RawMessage, string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil || fields == nil {
		return nil, "", false
	}
	raw, ok := fields["text"]
	if !ok {
		return nil, "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, "", false
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", false
	}
	return fields, text, true
}

// encodeLine compacts the original line, keeping its key order, and
// appends dataset_source when tagging.
func encodeLine(line []byte, fields map[string]json.RawMessage, source string, tag bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, line); err != nil {
		return nil, fmt.Errorf("failed to compact line: %w", err)
	}
	if !tag {
		return buf.Bytes(), nil
	}

	sourceJSON, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source tag: %w", err)
	}

	if _, exists := fields[SourceField]; exists {
		fields[SourceField] = sourceJSON
		out, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tagged line: %w", err)
		}
		return out, nil
	}

	compact := buf.Bytes()
	tagged := make([]byte, 0, len(compact)+len(SourceField)+len(sourceJSON)+4)
	tagged = append(tagged, compact[:len(compact)-1]...)
	if len(fields) > 0 {
		tagged = append(tagged, ',')
	}
	tagged = append(tagged, '"')
	tagged = append(tagged, SourceField...)
	tagged = append(tagged, '"', ':')
	tagged = append(tagged, sourceJSON...)
	tagged = append(tagged, '}')
	return tagged, nil
}
