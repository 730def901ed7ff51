// Package qa generates chat-format question/answer pairs from record text
// using an OpenAI-compatible chat completions endpoint.
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel    = "mistralai/mistral-7b-instruct:free"
	DefaultTimeout  = 30 * time.Second

	DefaultTemperature = 0.2

	// APIKeyEnv holds the bearer token for the endpoint.
	APIKeyEnv = "OPENROUTER_API_KEY"
)

const systemPrompt = "You are a data annotator.\n" +
	"Given a piece of text, generate exactly ONE question and ONE answer.\n" +
	"Respond ONLY in valid JSON in this exact format:\n\n" +
	"{\n" +
	"  \"question\": \"...\",\n" +
	"  \"answer\": \"...\"\n" +
	"}\n\n" +
	"Do not include any extra text."

var (
	ErrMissingAPIKey      = errors.New(APIKeyEnv + " environment variable is not set")
	ErrInvalidTemperature = errors.New("temperature must not be negative")
	ErrInvalidReply       = errors.New("model did not return valid JSON")
	ErrEmptyPair          = errors.New("model returned empty question or answer")
)

// Pair is one generated question and answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generator produces a Pair grounded in text.
type Generator interface {
	Generate(ctx context.Context, text string) (Pair, error)
}

// ClientOptions configures an OpenRouterClient. Zero values use defaults;
// an empty APIKey is read from APIKeyEnv. A nil Temperature means
// DefaultTemperature; zero is a valid setting.
type ClientOptions struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature *float64
	Timeout     time.Duration
	Referer     string
	Title       string
}

// OpenRouterClient calls an OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	httpClient  *http.Client
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	referer     string
	title       string
}

func NewOpenRouterClient(opts ClientOptions) (*OpenRouterClient, error) {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(APIKeyEnv)
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		if *opts.Temperature < 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemperature, *opts.Temperature)
		}
		temperature = *opts.Temperature
	}
	if opts.Referer == "" {
		opts.Referer = "http://localhost"
	}
	if opts.Title == "" {
		opts.Title = "Web-to-JSONL-System"
	}
	return &OpenRouterClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		endpoint:    opts.Endpoint,
		model:       opts.Model,
		apiKey:      opts.APIKey,
		temperature: temperature,
		referer:     opts.Referer,
		title:       opts.Title,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for one question/answer pair about text.
func (c *OpenRouterClient) Generate(ctx context.Context, text string) (Pair, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "TEXT:\n" + text + "\n\nGenerate the JSON now."},
		},
	})
	if err != nil {
		return Pair{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Pair{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Pair{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Pair{}, fmt.Errorf("chat request returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Pair{}, fmt.Errorf("parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Pair{}, fmt.Errorf("no choices in response")
	}
	return ParsePair(parsed.Choices[0].Message.Content)
}

// ParsePair decodes the model reply. Code fences and text around the
// JSON object are tolerated.
func ParsePair(content string) (Pair, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Pair{}, ErrInvalidReply
	}

	var p Pair
	if err := json.Unmarshal([]byte(content[start:end+1]), &p); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	p.Question = strings.TrimSpace(p.Question)
	p.Answer = strings.TrimSpace(p.Answer)
	if p.Question == "" || p.Answer == "" {
		return Pair{}, ErrEmptyPair
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
