package qa

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-dataset/internal/common"
	"github.com/dtnitsch/llm-web-dataset/pkg/qa"
	"github.com/dtnitsch/llm-web-dataset/pkg/record"
)

// defaultInterval keeps free-tier endpoints under their rate limit.
const defaultInterval = 2 * time.Second

// Flags returns the flags of the qa command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "JSONL dataset to generate questions from",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "chatbot_dataset.jsonl",
			Usage:   "Path of the chat-format Q/A dataset",
		},
		&cli.IntFlag{
			Name:  "max",
			Value: qa.DefaultMaxItems,
			Usage: "Maximum number of generation attempts",
		},
		&cli.StringFlag{
			Name:  "model",
			Value: qa.DefaultModel,
			Usage: "Model name sent to the chat completions endpoint",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Value: qa.DefaultEndpoint,
			Usage: "OpenAI-compatible chat completions URL",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Value: defaultInterval,
			Usage: "Minimum delay between requests",
		},
	}
}

func QAAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	records, err := record.ReadFile(c.String("input"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	gen, err := qa.NewOpenRouterClient(qa.ClientOptions{
		Endpoint: c.String("endpoint"),
		Model:    c.String("model"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	pairs, stats, err := qa.BuildDataset(c.Context, gen, records, qa.Options{
		MaxItems: c.Int("max"),
		Interval: c.Duration("interval"),
		Logger:   logger,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	if err := qa.WriteJSONL(c.String("output"), pairs); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v (attempted %d, failed %d)", err, stats.Attempted, stats.Failed), 2)
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to encode stats: %v", err), 2)
	}
	fmt.Println(string(out))
	return nil
}
