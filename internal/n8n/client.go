// Package n8n provides the HTTP transport client for the remote n8n API.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshua-mo-143/n8n-mcp/internal/common"
	"github.com/joshua-mo-143/n8n-mcp/internal/config"
)

// maxResponseSize caps the response body to prevent OOM from unexpectedly large responses.
const maxResponseSize = 50 << 20 // 50MB

// apiKeyHeader is the static authentication header n8n expects on every request.
const apiKeyHeader = "X-N8N-API-KEY"

// Request describes one outbound call: verb, path relative to the base URL,
// optional query parameters and optional JSON body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Client performs authenticated HTTP calls against an n8n instance.
// Immutable after construction; safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
	logger     *common.Logger
}

// NewClient creates a client from the n8n connection config. It fails fast
// when the base URL or API key is absent.
func NewClient(cfg config.N8NConfig, logger *common.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("n8n base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("n8n API key is required")
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger: logger,
	}, nil
}

// BaseURL returns the configured n8n base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request to the given path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request to the given path.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do issues a single HTTP request described by req and returns the raw
// response body. Every failure mode (connection errors, non-2xx statuses,
// unreadable bodies) comes back as a plain error; nothing here is fatal.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	c.logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("n8n request")

	var bodyReader io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" && c.password != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("method", req.Method).Str("path", req.Path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("n8n request failed")
		return nil, fmt.Errorf("n8n request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("n8n response")

	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	return body, nil
}

// parseErrorResponse extracts the error message from an n8n error envelope.
// n8n uses {"message": ...}; some proxies return {"error": ...}. Falls back
// to the status code with the raw body.
func parseErrorResponse(status int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return fmt.Errorf("%s", errResp.Message)
		}
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
	}
	return fmt.Errorf("n8n returned %d: %s", status, strings.TrimSpace(string(body)))
}

// PrettyJSON re-indents a raw JSON body for the tool result text. A body
// that is not valid JSON is an error, not a panic: the caller converts it
// into a tool-error result.
func PrettyJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", fmt.Errorf("response body was not valid JSON: %w", err)
	}
	return buf.String(), nil
}
