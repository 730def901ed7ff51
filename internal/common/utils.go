package common

import (
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/pkg/db"
)

var (
	markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)
	urlPattern          = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](:[0-9]+)?(/[^\s]*)?$`)
)

// NewLogger returns the JSON stderr logger used by every command.
// --quiet limits it to errors.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// OpenDB opens the run ledger from --db, or next to the binary. The
// ledger is optional: on failure it logs a warning and returns nil.
func OpenDB(c *cli.Context, logger *slog.Logger) *db.DB {
	var (
		database *db.DB
		err      error
	)
	if path := c.String("db"); path != "" {
		database, err = db.OpenPath(path)
	} else {
		database, err = db.Open()
	}
	if err != nil {
		logger.Warn("Run ledger unavailable, continuing without it", "error", err)
		return nil
	}
	return database
}

// SplitURLList splits a comma or newline separated list, dropping blanks.
func SplitURLList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	cleaned = strings.TrimRight(cleaned, ",.)}]\"'>;")
	cleaned = strings.TrimLeft(cleaned, "([<\"'")

	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateURLs sanitizes all URLs and returns (sanitized URLs, invalid URLs).
// Invalid URLs are those that fail validation even after sanitization.
func SanitizeAndValidateURLs(urls []string) ([]string, []string) {
	sanitized := make([]string, 0, len(urls))
	var invalidURLs []string

	for _, rawURL := range urls {
		cleaned := SanitizeURL(rawURL)
		if !validURL(cleaned) {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}
		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalidURLs
}

func validURL(cleaned string) bool {
	// Literal spaces must be pre-encoded as %20
	if cleaned == "" || strings.Contains(cleaned, " ") {
		return false
	}
	if !urlPattern.MatchString(cleaned) {
		return false
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return false
	}
	return true
}
