package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"golfwear-extractor/internal/types"
)

// HTTPClient fetches static pages with request pacing and retries
type HTTPClient struct {
	client  *http.Client
	config  *types.Config
	logger  types.Logger
	limiter *rate.Limiter
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// one batch of MaxConcurrentPages passes at once; the extractor already
	// pauses RequestDelay between batches, so only traffic beyond that waits
	burst := max(config.MaxConcurrentPages, 1)
	limit := rate.Inf
	if config.RequestDelay > 0 {
		limit = rate.Every(config.RequestDelay / time.Duration(burst))
	}

	return &HTTPClient{
		client:  client,
		config:  config,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get performs a GET request with pacing and retries
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if err := h.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		body, err := h.do(ctx, url)
		if err == nil {
			h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		h.logger.Warnf("Request to %s failed (attempt %d/%d): %v", url, attempt+1, h.config.MaxRetries+1, err)
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}

func (h *HTTPClient) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Fetch implements PageFetcher. Static pages have nothing to wait for or
// click, so opts is ignored.
func (h *HTTPClient) Fetch(ctx context.Context, url string, _ FetchOptions) (string, error) {
	body, err := h.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}
