//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/spending-maps/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, "mapbox/light-v11", 10*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_CheckStyle(t *testing.T) {
	require.NoError(t, smokeClient(t).CheckStyle(context.Background()))
}

func TestSmoke_FetchTile(t *testing.T) {
	b := smokeClient(t).Basemap()

	// Zoom 4 tile covering most of the central US.
	u := strings.NewReplacer("{z}", "4", "{x}", "3", "{y}", "6").Replace(b.URL)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "image/"))
}

func TestSmoke_UnknownStyle(t *testing.T) {
	c := smokeClient(t)
	c.style = "mapbox/does-not-exist-v0"

	require.Error(t, c.CheckStyle(context.Background()))
}
