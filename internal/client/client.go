// Package client calls a running docqa server over its /mcp tool endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	DefaultServerURL = "http://localhost:8090"
	DefaultTimeout   = 90 * time.Second
	maxResponseBytes = 4 << 20
)

// Client posts tool calls to a docqa server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    normalizeBaseURL(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is a non-200 reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docqa server status %d: %s", e.StatusCode, e.Message)
}

// Ask runs the document_qa tool.
func (c *Client) Ask(ctx context.Context, question, docName string, useAPI bool) (string, error) {
	args := map[string]any{"question": question}
	if docName != "" {
		args["doc_name"] = docName
	}
	if useAPI {
		args["use_api"] = true
	}
	return c.Call(ctx, "document_qa", args)
}

// ReadFile runs the read_file tool.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	return c.Call(ctx, "read_file", map[string]any{"path": path})
}

// Call invokes any tool and returns its result string.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{"tool": tool, "args": args})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", tool, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out struct {
		Result *string `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Result == nil {
		return "", fmt.Errorf("decode response: missing result")
	}
	return *out.Result, nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "unhealthy"}
	}
	return nil
}

// ServerURLFromConfig reads mcpServers.filesystem.url from a JSON client
// config file.
func ServerURLFromConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}
	var cfg struct {
		MCPServers map[string]struct {
			URL string `json:"url"`
		} `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("parse config %s: %w", path, err)
	}
	srv, ok := cfg.MCPServers["filesystem"]
	if !ok || srv.URL == "" {
		return "", fmt.Errorf("config %s: mcpServers.filesystem.url is not set", path)
	}
	return srv.URL, nil
}

// normalizeBaseURL accepts either the server root or the full /mcp URL.
func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		u = DefaultServerURL
	}
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, "/mcp")
	return strings.TrimRight(u, "/")
}
