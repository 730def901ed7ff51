package merge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/pkg/db"
)

func newTestApp(dbPath string) *cli.App {
	return &cli.App{
		Name: "lwd",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet"},
			&cli.StringFlag{Name: "db", Value: dbPath},
		},
		Commands: []*cli.Command{
			{Name: "merge", Flags: Flags(), Action: MergeAction},
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	return coder.ExitCode()
}

func TestMergeAction(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	a := writeFile(t, dir, "a.jsonl", `{"text":"Hello, World!"}`+"\n"+`not json`+"\n")
	b := writeFile(t, dir, "b.jsonl", `{"text":"hello world"}`+"\n"+`{"text":"Another line"}`+"\n")
	out := filepath.Join(dir, "combined.jsonl")

	err := newTestApp(dbPath).RunContext(context.Background(),
		[]string{"lwd", "--quiet", "merge", "--output", out, "--source-tag", a, b})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		`{"text":"Hello, World!","dataset_source":"a.jsonl"}`+"\n"+
			`{"text":"Another line","dataset_source":"b.jsonl"}`+"\n",
		string(data))

	database, err := db.OpenPath(dbPath)
	require.NoError(t, err)
	defer database.Close()

	runID, err := database.GetLatestRunID()
	require.NoError(t, err)
	run, err := database.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, db.KindMerge, run.Kind)
	assert.Equal(t, db.StatusSuccess, run.Status)
	assert.Equal(t, 2, run.RecordCount)

	stats, err := database.GetMergeStats(runID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.InputLines)
	assert.Equal(t, 1, stats.SkippedDuplicates)
	assert.Equal(t, 1, stats.SkippedInvalid)
}

func TestMergeAction_Errors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	out := filepath.Join(dir, "combined.jsonl")

	t.Run("no inputs", func(t *testing.T) {
		err := newTestApp(dbPath).RunContext(context.Background(),
			[]string{"lwd", "--quiet", "merge", "--output", out})
		assert.Equal(t, 1, exitCode(t, err))
	})

	t.Run("missing input", func(t *testing.T) {
		err := newTestApp(dbPath).RunContext(context.Background(),
			[]string{"lwd", "--quiet", "merge", "--output", out, filepath.Join(dir, "nope.jsonl")})
		assert.Equal(t, 1, exitCode(t, err))
		assert.NoFileExists(t, out)
	})
}
