package aiparser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/foodlog/backend/internal/domain"
	"github.com/foodlog/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxAttempts       = 3
	defaultTimeout    = 60 * time.Second
	defaultPerMinute  = 30
	rateLimiterBurst  = 5
	maxDebugBodyBytes = 2048
)

// Client handles communication with the AI meal parsing service
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
	log         *zap.Logger
}

// NewClient creates a new AI service client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: newLimiter(defaultPerMinute),
		log:         logger.Named("aiparser"),
	}
}

// SetDebug enables logging of request and response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetTimeout sets the per-request HTTP timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// SetRateLimit caps outbound requests per minute
func (c *Client) SetRateLimit(perMinute int) {
	c.rateLimiter = newLimiter(perMinute)
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), rateLimiterBurst)
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// ParseMeals sends a free-text food description to the AI service
func (c *Client) ParseMeals(ctx context.Context, text string) (*domain.LogResponse, error) {
	payload, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/parse", c.baseURL)
	c.log.Debug("ParseMeals called", zap.String("text", text))

	// Retry transient failures (transport errors, 429, 5xx)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, exponentialBackoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrServiceFailure, err)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			c.log.Warn("rate limiter error", zap.Error(err))
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrServiceFailure, err)
		}

		resp, err := c.doRequest(ctx, endpoint, payload)
		if err != nil {
			c.log.Warn("request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %v", domain.ErrServiceFailure, err)
			continue
		}

		if c.debug {
			c.log.Debug("response received",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", truncate(body, maxDebugBodyBytes)))
		}

		if resp.StatusCode != http.StatusOK {
			svcErr := newServiceError(resp.StatusCode, body)
			c.log.Warn("AI service error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.String("message", svcErr.Message))
			if !isRetryable(resp.StatusCode) {
				return nil, svcErr
			}
			lastErr = svcErr
			continue
		}

		result, err := decodeLogResponse(body)
		if err != nil {
			c.log.Warn("failed to decode AI response", zap.Error(err))
			return nil, err
		}

		c.log.Debug("meals parsed", zap.Int("meals", len(result.LoggedMeals)))
		return result, nil
	}

	c.log.Warn("all retries failed", zap.String("text", text))
	return nil, lastErr
}

// doRequest executes an HTTP POST request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "FoodLog/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.debug {
		c.log.Debug("sending request", zap.String("url", endpoint), zap.ByteString("body", payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceFailure, err)
	}

	return resp, nil
}

func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
