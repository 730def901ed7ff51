package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/internal/extract"
	"github.com/dtnitsch/llm-web-dataset/internal/merge"
	"github.com/dtnitsch/llm-web-dataset/internal/qa"
	"github.com/dtnitsch/llm-web-dataset/internal/runs"
	"github.com/dtnitsch/llm-web-dataset/pkg/help"
)

func main() {
	// A missing .env is fine; the environment may already carry the keys.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lwd",
		Usage: "Turn web pages into clean JSONL training datasets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.StringFlag{
				Name:    "db",
				EnvVars: []string{"LWD_DB"},
				Usage:   "Path of the SQLite run ledger (default: lwd.db next to the binary)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract URLs into a JSONL dataset",
				ArgsUsage: "[url ...]",
				Flags:     extract.Flags(),
				Action:    extract.ExtractAction,
			},
			{
				Name:      "merge",
				Usage:     "Merge JSONL datasets, dropping invalid and duplicate records",
				ArgsUsage: "file1.jsonl file2.jsonl ...",
				Flags:     merge.Flags(),
				Action:    merge.MergeAction,
			},
			{
				Name:   "qa",
				Usage:  "Generate a chat-format Q/A dataset from a JSONL dataset",
				Flags:  qa.Flags(),
				Action: qa.QAAction,
			},
			{
				Name:  "runs",
				Usage: "Inspect the run ledger",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Number of runs to list",
					},
				},
				Action: runs.ListAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show one run (latest if no ID is given)",
						ArgsUsage: "[run_id]",
						Action:    runs.ShowAction,
					},
				},
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick-start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}
