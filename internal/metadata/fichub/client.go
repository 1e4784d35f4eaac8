// Package fichub provides access to the FicHub metadata API for story
// lookups.
package fichub

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Meta is the subset of FicHub story metadata we care about.
type Meta struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Client provides access to the FicHub metadata API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new FicHub client.
// Rate limited to one request per second; FicHub is a volunteer-run
// service and we are a guest on it.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:      logger,
	}
}

// GetMeta fetches metadata for the story at storyURL. A story FicHub does
// not know is reported as (nil, nil), not an error.
func (c *Client) GetMeta(ctx context.Context, storyURL string) (*Meta, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", storyURL)
	metaURL := c.baseURL + "/api/v0/meta?" + params.Encode()

	c.logger.Debug("fetching story metadata",
		"story_url", storyURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta request failed: status %d", resp.StatusCode)
	}

	var meta Meta
	if err := json.UnmarshalRead(resp.Body, &meta); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &meta, nil
}
