package extract

import (
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/pkg/export"
)

// Flags returns the flags of the extract command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "urls",
			Usage: "Comma-separated list of URLs to extract",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file; flags override its values",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "dataset.jsonl",
			Usage:   "Path of the JSONL dataset to write",
		},
		&cli.StringFlag{
			Name:  "profile",
			Value: string(export.DebugFull),
			Usage: "Export profile: training_minimal, training_with_source or debug_full",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: 1,
			Usage: "Number of URLs extracted concurrently",
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "Keep only records in this ISO 639-1 language (e.g. en)",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Cache raw HTML in this directory",
		},
		&cli.StringFlag{
			Name:  "max-age",
			Value: "24h",
			Usage: "Reuse cached HTML younger than this duration",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent header for HTTP strategies",
		},
		&cli.BoolFlag{
			Name:  "no-clean",
			Usage: "Skip the boilerplate and quality filter",
		},
		&cli.BoolFlag{
			Name:  "qa",
			Usage: "Also generate a chat-format Q/A dataset (needs OPENROUTER_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "qa-output",
			Value: "chatbot_dataset.jsonl",
			Usage: "Path of the Q/A dataset",
		},
		&cli.IntFlag{
			Name:  "qa-max",
			Value: 10,
			Usage: "Maximum number of Q/A generation attempts",
		},
		&cli.StringFlag{
			Name:  "qa-model",
			Usage: "Model name sent to the chat completions endpoint",
		},
	}
}
