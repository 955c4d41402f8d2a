// Package gw2 provides rate-limited access to the official Guild Wars 2 API
// (api.guildwars2.com/v2). It batches bulk ID lookups under the API's
// 200-ID ceiling and reports every non-success response as an UpstreamError.
package gw2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.guildwars2.com"
	DefaultUserAgent = "GW2Style/1.0"
	DefaultRateLimit = 5  // requests per second
	DefaultBurst     = 10 // allow bursts

	// MaxIDsPerRequest is the largest ids= list the API accepts.
	MaxIDsPerRequest = 200

	maxRetries = 3
)

// Client is a rate-limited HTTP client for the GW2 API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

// NewClient creates a new rate-limited GW2 API client.
func NewClient(baseURL string, rateLimit float64, burst int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		baseURL:     baseURL,
		userAgent:   DefaultUserAgent,
	}
}

// apiError is the error body the GW2 API returns on failure.
type apiError struct {
	Text string `json:"text"`
}

// getJSON performs a rate-limited GET and decodes the response into out.
// apiKey is forwarded as a bearer token when non-empty.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, apiKey string, out any) error {
	return c.getWithRetry(ctx, path, query, apiKey, out, 0)
}

func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values, apiKey string, out any, attempt int) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: path, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB limit
	if err != nil {
		return &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: "reading response", Err: err}
	}

	// Handle rate limiting (429 Too Many Requests)
	if resp.StatusCode == http.StatusTooManyRequests {
		if attempt >= maxRetries {
			return &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: fmt.Sprintf("rate limited after %d retries", maxRetries)}
		}
		wait := 2 * time.Second
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				wait = time.Duration(seconds) * time.Second
			}
		}
		log.Warn().Str("path", path).Dur("wait", wait).Int("attempt", attempt+1).Msg("gw2 api rate limited")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.getWithRetry(ctx, path, query, apiKey, out, attempt+1)
	}

	// 206 is returned for ids= lookups where only some IDs exist.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		msg := truncate(string(body), 200)
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Text != "" {
			msg = ae.Text
		}
		return &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: "decoding response", Err: err}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
