package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/internal/common"
	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/export"
)

func ExtractAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := ConfigFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	if len(cfg.URLs) == 0 {
		return cli.Exit(strings.Join([]string{
			"Error: No URLs provided",
			"",
			"Usage:",
			`  lwd extract --urls "https://example.com,https://example.org"`,
			`  lwd extract --config config.yaml`,
			"",
			"Need help? Run: lwd extract --help",
		}, "\n"), 1)
	}

	// Invalid URLs are not fetched but still get a fallback record.
	sanitized, invalid := common.SanitizeAndValidateURLs(cfg.URLs)
	for _, u := range invalid {
		logger.Warn("Invalid URL, using fallback record", "url", u)
	}
	cfg.URLs = sanitized

	opts := RunOptions{NoClean: c.Bool("no-clean"), Rejected: invalid}
	if cfg.QA.Enabled {
		// Fail before any extraction work when the API key is missing.
		gen, err := NewGenerator(cfg.QA)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		opts.Generator = gen
	}

	opts.DB = common.OpenDB(c, logger)
	if opts.DB != nil {
		defer opts.DB.Close()
	}

	summary, err := Run(c.Context, logger, cfg, opts)
	if err != nil {
		logger.Error("Extraction failed", "error", err)
		if errors.Is(err, export.ErrUnknownProfile) {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to encode summary: %v", err), 2)
	}
	fmt.Println(string(out))

	if summary.FellBack == summary.URLs {
		return cli.Exit("Warning: every URL fell back to placeholder content", 1)
	}
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "%d invalid URL(s) got fallback records\n", len(invalid))
	}
	return nil
}

// ConfigFromFlags loads --config when given and applies flag overrides.
func ConfigFromFlags(c *cli.Context) (models.Config, error) {
	cfg := models.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = models.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
	}

	if c.IsSet("urls") {
		cfg.URLs = common.SplitURLList(c.String("urls"))
	}
	if c.Args().Present() {
		cfg.URLs = append(cfg.URLs, c.Args().Slice()...)
	}
	if c.IsSet("output") || cfg.Output == "" {
		cfg.Output = c.String("output")
	}
	if c.IsSet("profile") || cfg.Profile == "" {
		cfg.Profile = c.String("profile")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("language") {
		cfg.Language = c.String("language")
	}
	if c.IsSet("cache-dir") {
		cfg.Fetch.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("max-age") {
		maxAge, err := time.ParseDuration(c.String("max-age"))
		if err != nil {
			return cfg, fmt.Errorf("invalid max-age duration: %w", err)
		}
		cfg.Fetch.MaxAge = maxAge
	}
	if c.IsSet("user-agent") {
		cfg.Fetch.UserAgent = c.String("user-agent")
	}

	if c.Bool("qa") {
		cfg.QA.Enabled = true
	}
	if c.IsSet("qa-output") {
		cfg.QA.Output = c.String("qa-output")
	}
	if c.IsSet("qa-max") {
		cfg.QA.MaxItems = c.Int("qa-max")
	}
	if c.IsSet("qa-model") {
		cfg.QA.Model = c.String("qa-model")
	}

	if _, err := export.ParseProfile(cfg.Profile); err != nil {
		return cfg, err
	}
	return cfg, nil
}
