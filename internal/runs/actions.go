package runs

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/internal/common"
	dbpkg "github.com/dtnitsch/llm-web-dataset/pkg/db"
)

func openLedger(c *cli.Context) (*dbpkg.DB, error) {
	database := common.OpenDB(c, common.NewLogger(c))
	if database == nil {
		return nil, cli.Exit("Error: failed to open run ledger", 2)
	}
	return database, nil
}

// ListAction prints the most recent runs.
func ListAction(c *cli.Context) error {
	database, err := openLedger(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to list runs: %v", err), 2)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-36s %-8s %-20s %-8s %-8s %s\n",
		"Run ID", "Kind", "Started", "Status", "Records", "Output")
	fmt.Println(strings.Repeat("-", 110))

	for _, r := range runs {
		fmt.Printf("%-36s %-8s %-20s %-8s %-8d %s\n",
			r.RunID,
			r.Kind,
			formatTime(r.StartedAt),
			r.Status,
			r.RecordCount,
			r.OutputPath,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'lwd runs show <run_id>' to see details\n")

	return nil
}

// ShowAction prints the details of one run, the latest by default.
func ShowAction(c *cli.Context) error {
	database, err := openLedger(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	fmt.Printf("Run %s\n", run.RunID)
	fmt.Printf("  Kind:     %s\n", run.Kind)
	fmt.Printf("  Status:   %s\n", run.Status)
	fmt.Printf("  Started:  %s\n", formatTime(run.StartedAt))
	fmt.Printf("  Finished: %s\n", formatTime(run.FinishedAt))
	fmt.Printf("  Output:   %s\n", run.OutputPath)
	fmt.Printf("  Records:  %d\n", run.RecordCount)

	switch run.Kind {
	case dbpkg.KindMerge:
		stats, err := database.GetMergeStats(runID)
		if err != nil {
			fmt.Println("\n  No merge statistics recorded")
			return nil
		}
		fmt.Printf("\n  Inputs:             %d files, %d lines\n", stats.InputFiles, stats.InputLines)
		fmt.Printf("  Written:            %d\n", stats.WrittenRecords)
		fmt.Printf("  Skipped duplicates: %d (%s)\n", stats.SkippedDuplicates, stats.DedupStrategy)
		fmt.Printf("  Skipped invalid:    %d\n", stats.SkippedInvalid)
	default:
		extractions, err := database.GetRunExtractions(runID)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
		}
		fmt.Printf("\n%-50s %-12s %-12s %-8s %s\n", "URL", "Site Type", "Strategy", "Records", "Fallback Reason")
		fmt.Println(strings.Repeat("-", 110))
		for _, e := range extractions {
			fmt.Printf("%-50s %-12s %-12s %-8d %s\n", truncate(e.URL, 50), e.SiteType, e.Strategy, e.RecordCount, e.FallbackReason)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
