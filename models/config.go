// Package models defines data structures shared across the pipeline.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for an extraction run.
// Values come from an optional YAML file; CLI flags override them.
type Config struct {
	URLs        []string `yaml:"urls"`
	Output      string   `yaml:"output"`
	Profile     string   `yaml:"profile"`
	WorkerCount int      `yaml:"workers"`
	Language    string   `yaml:"language,omitempty"`

	Chunk ChunkConfig `yaml:"chunk"`
	Fetch FetchConfig `yaml:"fetch"`
	QA    QAConfig    `yaml:"qa"`
}

// ChunkConfig mirrors chunker.Options for YAML.
type ChunkConfig struct {
	MaxChars int `yaml:"max_chars"`
	MinChars int `yaml:"min_chars"`
	Overlap  int `yaml:"overlap"`
}

// FetchConfig controls the network strategies.
type FetchConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	RenderTimeout time.Duration `yaml:"render_timeout"`
	CacheDir      string        `yaml:"cache_dir,omitempty"`
	MaxAge        time.Duration `yaml:"max_age"`
}

// QAConfig controls chatbot dataset generation.
type QAConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Output      string        `yaml:"output"`
	Model       string        `yaml:"model"`
	MaxItems    int           `yaml:"max_items"`
	Temperature float64       `yaml:"temperature"`
	Interval    time.Duration `yaml:"interval"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Output:      "dataset.jsonl",
		Profile:     "debug_full",
		WorkerCount: 1,
		Chunk: ChunkConfig{
			MaxChars: 1200,
			MinChars: 200,
			Overlap:  100,
		},
		Fetch: FetchConfig{
			UserAgent:     "Mozilla/5.0 (compatible; llm-web-dataset/1.0)",
			HTTPTimeout:   15 * time.Second,
			RenderTimeout: 30 * time.Second,
			MaxAge:        24 * time.Hour,
		},
		QA: QAConfig{
			Output:      "chatbot_dataset.jsonl",
			Model:       "mistralai/mistral-7b-instruct:free",
			MaxItems:    10,
			Temperature: 0.2,
			Interval:    2 * time.Second,
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
