package record

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/llm-web-dataset/models"
)

// ErrNoRecords is returned when asked to write an empty dataset.
var ErrNoRecords = errors.New("no records provided")

// Writer streams validated records as JSON lines.
type Writer struct {
	bw    *bufio.Writer
	enc   *json.Encoder
	count int
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Writer{bw: bw, enc: enc}
}

// Write validates r and appends it as one line.
func (w *Writer) Write(r models.Record) error {
	if err := Validate(r); err != nil {
		return err
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// WriteFile (re)creates path and writes records to it, one per line.
// Every record is validated before the file is touched.
func WriteFile(path string, records []models.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	for i, r := range records {
		if err := Validate(r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := NewWriter(f)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	return f.Close()
}
