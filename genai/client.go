// Package genai talks to a Gemini-style generateContent endpoint to produce
// song title and artist suggestions.
package genai

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

	"tunesmith/types"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.0-flash"
	DefaultTimeout  = 60 * time.Second

	maxResponseBytes = 1 << 20
)

// ErrInvalidResponse means the model answered with something that is not
// the expected JSON list of songs
var ErrInvalidResponse = errors.New("AI returned invalid JSON")

// Config holds the connection settings for the generation service
type Config struct {
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client generates name suggestions over HTTP
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// APIError is a non-2xx answer from the service
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("generation service returned %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("generation service returned %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the service asked the caller to back off
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// NewClient creates a client, filling unset fields with defaults
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate asks the model for count title/artist pairs
func (c *Client) Generate(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: BuildPrompt(count, stylePrompt)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      1.0,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return ParseSongs(text.String())
}

func parseAPIError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: http.StatusText(statusCode)}

	var parsed errorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Status = parsed.Error.Status
	} else if msg := strings.TrimSpace(string(data)); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
