package runs

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/llm-web-dataset/pkg/db"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	runID, err := database.GetLatestRunID()
	if errors.Is(err, dbpkg.ErrRunNotFound) {
		return "", fmt.Errorf("no runs found. Run 'lwd extract --urls \"...\"' first")
	}
	return runID, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
