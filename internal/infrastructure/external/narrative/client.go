package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the narrative service client.
type ClientConfig struct {
	// BaseURL is the generation API base URL
	BaseURL string

	// APIKey is the API key, passed as a query parameter
	APIKey string

	// Model is the generation model identifier
	Model string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance
	CircuitBreakerConfig CircuitBreakerConfig

	// RetryConfig for retry behavior
	RetryConfig RetryConfig

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:              baseURL,
		APIKey:               apiKey,
		Model:                "gemini-1.5-flash",
		Timeout:              60 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
		RetryConfig:          DefaultRetryConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// Implements record.NarrativeGenerator against a generateContent-style
// HTTP API. The service is best-effort: every failure surfaces as one of
// the shared narrative errors so callers can degrade gracefully.
// ══════════════════════════════════════════════════════════════════════════════

// Client is the narrative generation API client.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreaker
}

var _ record.NarrativeGenerator = (*Client)(nil)

// NewClient creates a new narrative API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateCandidate struct {
	Content generateContent `json:"content"`
}

type generateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// Generate produces a narrative for the record and mode in the request.
func (c *Client) Generate(ctx context.Context, req record.NarrativeRequest) (string, error) {
	if req.Record == nil {
		return "", shared.WrapError("narrative", "Generate", shared.ErrEmptyValue,
			"cannot generate narrative for nil record", nil)
	}
	mode := req.Mode
	if mode == "" {
		mode = record.NarrativeDaily
	}
	if !mode.IsValid() {
		return "", shared.WrapError("narrative", "Generate", shared.ErrInvalidInput,
			fmt.Sprintf("unknown narrative mode %q", req.Mode), nil)
	}

	prompt := BuildPrompt(record.NarrativeRequest{Record: req.Record, Mode: mode})

	body := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	}

	var response generateResponse
	if err := c.doRequest(ctx, &body, &response); err != nil {
		return "", c.classifyError(err)
	}

	text := extractText(&response)
	if text == "" {
		return "", shared.ErrNarrativeInvalidResponse
	}

	if c.config.Debug {
		c.logger.Debug("narrative generated",
			"record_id", req.Record.ID, "mode", string(mode), "chars", len(text))
	}

	return text, nil
}

// extractText pulls the first candidate's text out of the response.
func extractText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// classifyError maps transport-level failures to the shared narrative errors.
func (c *Client) classifyError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return shared.WrapError("narrative", "Generate", shared.ErrTimeout,
			"narrative request timed out", err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, &RateLimitError{}):
		return shared.WrapError("narrative", "Generate", shared.ErrRateLimited,
			"narrative service rate limit exceeded", err)
	case errors.Is(err, ErrCircuitOpen):
		return shared.WrapError("narrative", "Generate", shared.ErrServiceUnavailable,
			"narrative service circuit is open", err)
	default:
		return shared.WrapError("narrative", "Generate", shared.ErrServiceUnavailable,
			"narrative service unavailable", err)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs the generation call with rate limiting, circuit
// breaking, and retries.
func (c *Client) doRequest(ctx context.Context, body, result interface{}) error {
	if err := c.circuitBreaker.Allow(); err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryConfig.CalculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doSingleRequest(ctx, body, result)
		if err == nil {
			c.circuitBreaker.RecordSuccess()
			return nil
		}

		lastErr = err

		if !c.isRetryable(err) {
			c.circuitBreaker.RecordFailure()
			return err
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
		}
	}

	c.circuitBreaker.RecordFailure()
	return fmt.Errorf("request failed after %d retries: %w", c.config.RetryConfig.MaxRetries, lastErr)
}

// doSingleRequest performs a single generateContent call.
func (c *Client) doSingleRequest(ctx context.Context, body, result interface{}) error {
	fullURL := c.endpoint()

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.config.Debug {
		c.logger.Debug("narrative api request", "model", c.config.Model)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		return &apiError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// endpoint builds the generateContent URL with the API key attached.
func (c *Client) endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, c.config.Model)
	if c.config.APIKey != "" {
		u += "?key=" + url.QueryEscape(c.config.APIKey)
	}
	return u
}

// apiError is a non-2xx response from the generation service.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// isRetryable checks if an error is retryable.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	errStr := err.Error()
	for _, sub := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, sub) {
			return true
		}
	}
	return false
}

// truncate shortens s for inclusion in error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// ClientStatus reports the current state of the client's protections.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker CircuitBreakerStatus
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.circuitBreaker.Status(),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.circuitBreaker.Reset()
}
