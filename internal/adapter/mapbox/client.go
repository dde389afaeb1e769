// Package mapbox provides a Mapbox Styles basemap for rendered maps.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/spending-maps/internal/observability"
	"github.com/couchcryptid/spending-maps/internal/render"
)

const (
	defaultBaseURL = "https://api.mapbox.com/styles/v1"
	attribution    = `&copy; <a href="https://www.mapbox.com/about/maps/">Mapbox</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`
)

// Client talks to the Mapbox Styles API.
type Client struct {
	token      string
	style      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for one style ("mapbox/light-v11").
func NewClient(token, style string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		style: style,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Basemap returns the raster tile layer for the configured style. Mapbox
// serves 512px tiles, hence the zoom offset.
func (c *Client) Basemap() render.Basemap {
	return render.Basemap{
		Name:        "mapbox/" + c.style,
		URL:         fmt.Sprintf("%s/%s/tiles/{z}/{x}/{y}?access_token=%s", c.baseURL, c.style, url.QueryEscape(c.token)),
		Attribution: attribution,
		TileSize:    512,
		ZoomOffset:  -1,
	}
}

// CheckStyle fetches the style document to confirm the token and style id
// are usable.
func (c *Client) CheckStyle(ctx context.Context) error {
	err := c.checkStyle(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.BasemapChecks.WithLabelValues(outcome).Inc()
	return err
}

func (c *Client) checkStyle(ctx context.Context) error {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, c.style, url.Values{"access_token": {c.token}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("style request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var s styleResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return fmt.Errorf("decode style: %w", err)
	}
	c.logger.Debug("mapbox style available", "style", c.style, "name", s.Name, "owner", s.Owner)
	return nil
}

// Mapbox API response types.

type styleResponse struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}
