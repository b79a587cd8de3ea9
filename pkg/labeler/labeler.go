// Package labeler provides the client for the external naming service:
// an OpenAI-compatible chat completions endpoint that invents process
// names, activity names, departments, and product categories.
//
// The service is optional. Every caller treats a failed request as a
// signal to fall back to locally generated names, so a missing or
// unreachable endpoint degrades output quality but never a run.
package labeler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/logforge/logforge/pkg/errors"
)

// Config holds connection settings for the chat completions endpoint.
type Config struct {
	// Endpoint is the full URL of the chat completions route.
	Endpoint string

	// Model is the model identifier sent with each request. Servers
	// that host a single model ignore it; leave empty to omit.
	Model string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the completion length. -1 means no limit.
	MaxTokens int

	// Timeout bounds a single request including body read.
	Timeout time.Duration
}

// DefaultConfig returns settings for a locally hosted model server.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "http://localhost:1234/v1/chat/completions",
		Temperature: 0.7,
		MaxTokens:   -1,
		Timeout:     120 * time.Second,
	}
}

// ChatClient asks a chat completions endpoint single-prompt questions
// and returns the raw completion text. It is safe for sequential use by
// one worker; workers must not share a client's random state, but the
// client itself holds no mutable state beyond the HTTP connection pool.
type ChatClient struct {
	cfg  Config
	http *http.Client
}

// NewChatClient builds a client from cfg, filling zero fields from
// DefaultConfig.
func NewChatClient(cfg Config) *ChatClient {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &ChatClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Endpoint returns the configured chat completions URL.
func (c *ChatClient) Endpoint() string {
	return c.cfg.Endpoint
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Ask sends prompt as a single user message and returns the first
// choice's completion text. Any transport failure, non-200 status, or
// empty completion is reported as an error; Ask never retries.
func (c *ChatClient) Ask(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      false,
	}

	body, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeRequestFailed, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.RequestFailed(c.cfg.Endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.RequestFailed(c.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", errors.BadStatus(c.cfg.Endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.RequestFailed(c.cfg.Endpoint, err)
	}

	var parsed chatResponse
	if err := jsoniter.ConfigFastest.Unmarshal(data, &parsed); err != nil {
		return "", errors.Wrap(err, errors.CodeRequestFailed, "failed to decode response").
			WithContext("endpoint", c.cfg.Endpoint)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.EmptyCompletion(c.cfg.Endpoint)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.EmptyCompletion(c.cfg.Endpoint)
	}
	return content, nil
}

// SplitList parses a comma-separated completion into trimmed items,
// dropping empties. Used for prompts that request list answers.
func SplitList(answer string) []string {
	parts := strings.Split(answer, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `"'`))
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}
