// Package latincy is an HTTP client for the LatinCy analysis sidecar, a
// small service wrapping the la_core_web_lg spaCy pipeline.
package latincy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/verba-app/verba-backend/internal/analyzer"
	"github.com/verba-app/verba-backend/internal/config"
)

// Client fetches analyses from the LatinCy sidecar over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from the analyzer configuration.
func NewClient(cfg config.AnalyzerConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "latincy"),
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze sends the text for analysis and maps the response to the port
// types. Network failures, 5xx responses, and malformed payloads all come
// back as analyzer.ErrUnavailable so ingestion can fail the document whole.
func (c *Client) Analyze(ctx context.Context, text string) (*analyzer.Document, error) {
	payload, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("latincy: marshal request: %w", err)
	}

	c.log.DebugContext(ctx, "latincy request", slog.Int("text_len", len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("latincy: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doWithRetry(ctx, req, payload)
	if err != nil {
		c.log.ErrorContext(ctx, "latincy request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("latincy: request failed: %w", analyzer.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "latincy unexpected status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("latincy: status %d: %w", resp.StatusCode, analyzer.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("latincy: read body: %w", analyzer.ErrUnavailable)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.log.ErrorContext(ctx, "latincy malformed response", slog.String("error", err.Error()))
		return nil, fmt.Errorf("latincy: decode json: %w", analyzer.ErrUnavailable)
	}

	doc := mapAPIResponse(parsed)

	c.log.DebugContext(ctx, "latincy response",
		slog.Int("status", resp.StatusCode),
		slog.Int("sentences", len(doc.Sentences)),
	)

	return doc, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, payload []byte) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "latincy retry", slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	// The request body was consumed by the first attempt.
	retry := req.Clone(ctx)
	retry.Body = io.NopCloser(bytes.NewReader(payload))

	return c.httpClient.Do(retry)
}
