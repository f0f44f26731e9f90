package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Resolver turns captured coordinates into a human-readable place name.
// Lookups are best-effort: on any failure the punch proceeds with raw
// coordinates only.
type Resolver interface {
	ReverseLookup(ctx context.Context, lat, lon float64) *string
}

// Client calls a Nominatim-compatible reverse geocoding endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseLookup returns the place name for (lat, lon), or nil when the
// collaborator is unavailable or answers with garbage. Never returns an
// error: geocoding must not block or fail punch recording.
func (c *Client) ReverseLookup(ctx context.Context, lat, lon float64) *string {
	if c.baseURL == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%.6f", lat)),
		url.QueryEscape(fmt.Sprintf("%.6f", lon)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Debug("geocode: building request failed", "error", err)
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("geocode: reverse lookup failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("geocode: reverse lookup non-200", "status", resp.StatusCode)
		return nil
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Debug("geocode: decoding response failed", "error", err)
		return nil
	}
	if body.DisplayName == "" {
		return nil
	}
	return &body.DisplayName
}

// Noop is a Resolver that always misses. Used when no geocoding collaborator
// is configured and in tests.
type Noop struct{}

func (Noop) ReverseLookup(ctx context.Context, lat, lon float64) *string {
	return nil
}
