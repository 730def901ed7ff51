package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/internal/common"
	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/db"
	"github.com/dtnitsch/llm-web-dataset/pkg/merge"
)

// Flags returns the flags of the merge command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Required: true,
			Usage:    "Path of the merged JSONL file",
		},
		&cli.BoolFlag{
			Name:  "no-dedup",
			Usage: "Keep duplicate texts",
		},
		&cli.BoolFlag{
			Name:  "source-tag",
			Usage: "Add dataset_source with the input file name to each record",
		},
		&cli.BoolFlag{
			Name:  "exact",
			Usage: "Deduplicate on normalized text instead of its fingerprint",
		},
	}
}

func MergeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		return cli.Exit("Error: at least one input file is required\n\nUsage:\n  lwd merge --output combined.jsonl a.jsonl b.jsonl", 1)
	}
	output := c.String("output")

	opts := merge.Options{
		Deduplicate:    !c.Bool("no-dedup"),
		AddSourceTag:   c.Bool("source-tag"),
		UseFingerprint: !c.Bool("exact"),
		Logger:         logger,
	}

	database := common.OpenDB(c, logger)
	if database != nil {
		defer database.Close()
	}
	runID := startRun(logger, database, output)

	stats, err := merge.Merge(inputs, output, opts)
	if err != nil {
		finishRun(logger, database, runID, stats, db.StatusFailed)
		var missing *merge.FileMissingError
		if errors.As(err, &missing) {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return cli.Exit(fmt.Sprintf("Error: merge failed: %v", err), 2)
	}
	finishRun(logger, database, runID, stats, db.StatusSuccess)

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to encode stats: %v", err), 2)
	}
	fmt.Println(string(out))
	return nil
}

func startRun(logger *slog.Logger, database *db.DB, output string) string {
	if database == nil {
		return ""
	}
	runID, err := database.StartRun(db.KindMerge, output)
	if err != nil {
		logger.Warn("Failed to record run start", "error", err)
		return ""
	}
	return runID
}

func finishRun(logger *slog.Logger, database *db.DB, runID string, stats models.MergeStats, status string) {
	if database == nil || runID == "" {
		return
	}
	if status == db.StatusSuccess {
		if err := database.RecordMerge(runID, stats); err != nil {
			logger.Warn("Failed to record merge stats", "run_id", runID, "error", err)
		}
	}
	if err := database.FinishRun(runID, stats.WrittenRecords, status); err != nil {
		logger.Warn("Failed to record run finish", "run_id", runID, "error", err)
	}
}
