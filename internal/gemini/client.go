// Package gemini is a minimal client for the Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freema/diffwhisperer/internal/apperror"
)

// Generation parameters tuned for focused commit message output.
const (
	temperature = 0.7
	topP        = 0.8
	topK        = 40
)

// Request describes a single generation call. Immutable once constructed.
type Request struct {
	Model     string
	MaxTokens int
	Prompt    string
}

// Generator produces text for a Request. The pipeline depends on this
// interface so tests can substitute a double for the remote API.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// Options configures a Client.
type Options struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Traced   bool
}

// NewClient creates a Gemini client. With Traced set, the outbound call is
// instrumented through otelhttp.
func NewClient(opts Options) *Client {
	transport := http.DefaultTransport
	if opts.Traced {
		transport = otelhttp.NewTransport(transport)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		apiKey:     opts.APIKey,
	}
}

// Wire types for the generateContent call.
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt to the configured model and returns the
// generated text. No retry logic; a failed call fails the invocation.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", apperror.API("missing API key (set GEMINI_API_KEY)")
	}

	payload := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     temperature,
			TopP:            topP,
			TopK:            topK,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.API("calling gemini: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.API("reading response: %v", err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil && resp.StatusCode < 300 {
		return "", apperror.API("decoding response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return "", apperror.API("gemini returned %d (%s): %s", resp.StatusCode, parsed.Error.Status, parsed.Error.Message)
		}
		return "", apperror.API("gemini returned %d", resp.StatusCode)
	}

	text := extractText(parsed)
	if strings.TrimSpace(text) == "" {
		return "", apperror.EmptyResponse("model %s returned no text", req.Model)
	}

	slog.Debug("generation complete",
		"model", req.Model,
		"duration", time.Since(start),
		"chars", len(text),
	)
	return text, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
