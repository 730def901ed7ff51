// Package chunker splits normalized text into overlapping fixed-size
// windows for record building.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-dataset/pkg/textnorm"
)

// ErrInvalidOptions is returned for window settings that cannot advance.
var ErrInvalidOptions = errors.New("invalid chunk options")

// Options controls the window size. Lengths are counted in runes.
type Options struct {
	MaxChars int
	MinChars int
	Overlap  int
}

// DefaultOptions returns the standard 1200/200/100 window.
func DefaultOptions() Options {
	return Options{
		MaxChars: 1200,
		MinChars: 200,
		Overlap:  100,
	}
}

// Validate checks that the window always moves forward.
func (o Options) Validate() error {
	if o.MaxChars <= 0 {
		return fmt.Errorf("%w: max_chars must be positive, got %d", ErrInvalidOptions, o.MaxChars)
	}
	if o.MinChars < 0 {
		return fmt.Errorf("%w: min_chars must not be negative, got %d", ErrInvalidOptions, o.MinChars)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidOptions, o.Overlap)
	}
	if o.Overlap >= o.MaxChars {
		return fmt.Errorf("%w: overlap (%d) must be less than max_chars (%d)", ErrInvalidOptions, o.Overlap, o.MaxChars)
	}
	return nil
}

// Chunk normalizes text and slides a MaxChars window over it, stepping
// back Overlap runes between windows. Windows shorter than MinChars after
// trimming are dropped. Text shorter than MinChars yields no chunks.
func Chunk(text string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(textnorm.Normalize(text))
	total := len(runes)
	if total < opts.MinChars {
		return []string{}, nil
	}

	chunks := []string{}
	start := 0
	for start < total {
		end := start + opts.MaxChars
		if end > total {
			end = total
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if utf8.RuneCountInString(chunk) >= opts.MinChars {
			chunks = append(chunks, chunk)
		}

		if end == total {
			break
		}
		start = end - opts.Overlap
	}

	return chunks, nil
}
