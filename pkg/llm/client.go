package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL of the OpenAI-compatible API (e.g., "https://openrouter.ai/api/v1")
	BaseURL string

	// APIKey sent as a bearer token
	APIKey string

	// Timeout for a single completion. Zero means no client-side timeout.
	Timeout time.Duration

	// Referer and Title are optional OpenRouter attribution headers.
	Referer string
	Title   string
}

// Client sends chat completion requests to an OpenAI-compatible upstream.
type Client struct {
	config     ClientConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient creates a new Client.
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Complete sends a single non-streaming chat completion request.
func (c *Client) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	upstreamURL := c.config.BaseURL + "/chat/completions"
	c.logger.Debug("sending completion request",
		zap.String("url", upstreamURL),
		zap.String("model", req.Model),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if c.config.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.config.Referer)
	}
	if c.config.Title != "" {
		httpReq.Header.Set("X-Title", c.config.Title)
	}

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("received completion response",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("body_size", len(body)),
		zap.Duration("duration", time.Since(startTime)),
	)

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: httpResp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.Error != nil {
		return nil, &StatusError{
			StatusCode: statusFromCode(resp.Error.Code),
			Message:    resp.Error.Message,
		}
	}

	return &resp, nil
}

// errorMessage extracts the message of an error envelope, falling back to
// the raw body.
func errorMessage(body []byte) string {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// statusFromCode maps a numeric error code to an HTTP status. Non-numeric
// codes are reported as 502.
func statusFromCode(code any) int {
	if n, ok := code.(float64); ok && n >= 100 && n < 600 {
		return int(n)
	}
	return http.StatusBadGateway
}
