// Package generate asks the Anthropic Messages API to phrase an answer from
// passages the lexical retriever already selected.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultTimeout   = 30 * time.Second
	DefaultMaxTokens = 1024
	// MaxAttempts is one call plus one retry.
	MaxAttempts = 2
)

// ClaudeClient implements qa.Generator on top of the Messages API.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	retryWait  time.Duration
	maxPrompt  int
	sem        chan struct{}
	httpClient *http.Client
	log        *slog.Logger

	Stats *LLMStats
}

// Option configures a ClaudeClient.
type Option func(*ClaudeClient)

func WithBaseURL(u string) Option {
	return func(c *ClaudeClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *ClaudeClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryWait sets the base delay before the retry.
func WithRetryWait(d time.Duration) Option {
	return func(c *ClaudeClient) { c.retryWait = d }
}

func WithMaxTokens(n int) Option {
	return func(c *ClaudeClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithMaxPromptTokens caps the passage text per call; see FitPassages.
func WithMaxPromptTokens(n int) Option {
	return func(c *ClaudeClient) { c.maxPrompt = n }
}

// WithMaxConcurrent limits in-flight calls. Callers over the limit wait
// for a slot or their context.
func WithMaxConcurrent(n int) Option {
	return func(c *ClaudeClient) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *ClaudeClient) { c.log = log }
}

func NewClaudeClient(apiKey, model string, opts ...Option) *ClaudeClient {
	c := &ClaudeClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   DefaultBaseURL,
		maxTokens: DefaultMaxTokens,
		retryWait: 500 * time.Millisecond,
		maxPrompt: DefaultMaxPromptTokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log:   slog.Default(),
		Stats: NewLLMStats(time.Hour),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks the model to answer question from passages. Transport errors,
// 429 and 5xx responses are retried once. A reply that signals the passages
// do not contain the answer is returned as ErrNoAnswer.
func (c *ClaudeClient) Generate(ctx context.Context, question string, passages []string) (string, error) {
	if len(passages) == 0 {
		return "", ErrNoPassages
	}
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
			defer func() { <-c.sem }()
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	prompt := BuildAnswerPrompt(question, FitPassages(passages, c.maxPrompt))

	var lastErr error
	for attempt := range MaxAttempts {
		if attempt > 0 {
			wait := Backoff(attempt-1, c.retryWait)
			c.log.Warn("retrying generator call", "attempt", attempt+1, "wait_ms", wait.Milliseconds(), "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		start := time.Now()
		text, err := c.complete(ctx, prompt)
		c.Stats.Record(time.Since(start).Milliseconds())
		if err == nil {
			return ValidateAnswer(text)
		}
		c.Stats.RecordFailure()
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	return "", lastErr
}

func (c *ClaudeClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude api: %w", ctx.Err())
		}
		return "", &RetryableError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response from claude")
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// RetryableError indicates a transient failure that can be retried.
// StatusCode is zero for transport errors.
type RetryableError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable transport error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Close releases idle connections.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
