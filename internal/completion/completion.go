// Package completion proxies prompts to an OpenAI-compatible chat completion API.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hackit/internal/observability"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	RequestTimeout     = 60 * time.Second
)

// ErrMissingPrompt is returned for an empty prompt.
var ErrMissingPrompt = errors.New("Missing prompt")

// UpstreamError is a non-2xx reply from the provider. Status and Message are
// passed through to the caller unchanged.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion upstream %d: %s", e.Status, e.Message)
}

// Config points the client at a provider.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// Client sends single-message chat completions.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client. A nil httpClient gets a 60s timeout client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as one user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (result string, err error) {
	if prompt == "" {
		return "", ErrMissingPrompt
	}

	done := observability.TrackExternalCall("openai", "chat_completion")
	defer func() { done(err) }()
	ctx, span := observability.StartClientSpan(ctx, "openai", "chat_completion")
	defer func() { observability.EndSpan(span, err) }()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Error == nil {
			return "", fmt.Errorf("completion api status %d without error body", resp.StatusCode)
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: out.Error.Message}
	}
	if len(out.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}
