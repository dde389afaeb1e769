package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/spending-maps/internal/observability"
)

const (
	testToken         = "test-token"
	testStyle         = "mapbox/light-v11"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:      testToken,
		style:      testStyle,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Basemap(t *testing.T) {
	c := NewClient("pk.abc+def", testStyle, time.Second, observability.NewMetricsForTesting(), slog.Default())

	b := c.Basemap()
	assert.Equal(t, "https://api.mapbox.com/styles/v1/mapbox/light-v11/tiles/{z}/{x}/{y}?access_token=pk.abc%2Bdef", b.URL)
	assert.Equal(t, 512, b.TileSize)
	assert.Equal(t, -1, b.ZoomOffset)
	assert.Contains(t, b.Attribution, "Mapbox")
}

func TestClient_CheckStyle_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testStyle, r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(styleResponse{Name: "Mapbox Light", Owner: "mapbox"}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	require.NoError(t, c.CheckStyle(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.BasemapChecks.WithLabelValues("ok")), 0)
}

func TestClient_CheckStyle_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	err := c.CheckStyle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid Token")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.BasemapChecks.WithLabelValues("error")), 0)
}

func TestClient_CheckStyle_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	err := testClient(srv.URL, 5*time.Second).CheckStyle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode style")
}

func TestClient_CheckStyle_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := testClient(srv.URL, 50*time.Millisecond).CheckStyle(context.Background())
	require.Error(t, err)
}
