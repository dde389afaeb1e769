package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/spending-maps/internal/adapter/http"
	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/render"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockBuilder struct {
	err   error
	built []string
}

func (m *mockBuilder) Build(_ context.Context, job config.Job) (*spendingmap.Result, error) {
	m.built = append(m.built, job.Name)
	if m.err != nil {
		return nil, m.err
	}
	return &spendingmap.Result{Map: &render.Artifact{
		Title:    job.Title,
		Features: geojson.NewFeatureCollection(),
		Legend:   domain.NewSteppedScale().Legend(job.Title),
	}}, nil
}

var testJobs = []config.Job{
	{Name: "science-states", Title: "Science by State", Level: domain.LevelState},
	{Name: "science-districts", Title: "Science by District", Level: domain.LevelDistrict},
}

func newTestServer(readyErr error, builder *mockBuilder) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, builder, testJobs, slog.Default())
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, &mockBuilder{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, &mockBuilder{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("not ready yet"), &mockBuilder{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, &mockBuilder{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListMaps(t *testing.T) {
	rec := get(newTestServer(nil, &mockBuilder{}), "/maps")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"maps": [
		{"name": "science-districts", "title": "Science by District", "level": "district", "path": "/maps/science-districts"},
		{"name": "science-states", "title": "Science by State", "level": "state", "path": "/maps/science-states"}
	]}`, rec.Body.String())
}

func TestMapRendersHTML(t *testing.T) {
	builder := &mockBuilder{}
	rec := get(newTestServer(nil, builder), "/maps/science-states")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"science-states"}, builder.built)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "Science by State", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find(".legend").Length())
}

func TestMapUnknownReturns404(t *testing.T) {
	builder := &mockBuilder{}
	rec := get(newTestServer(nil, builder), "/maps/defense")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown map: defense")
	assert.Empty(t, builder.built)
}

func TestMapBuildFailureReturns500(t *testing.T) {
	rec := get(newTestServer(nil, &mockBuilder{err: errors.New("extract: open csv: missing")}), "/maps/science-states")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "extract: open csv: missing", body["error"])
}
