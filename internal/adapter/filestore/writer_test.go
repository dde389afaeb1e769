package filestore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/render"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

func testResult() *spendingmap.Result {
	return &spendingmap.Result{
		Map: &render.Artifact{
			Title:    "Science",
			Features: geojson.NewFeatureCollection(),
			Legend:   domain.NewSteppedScale().Legend("Science"),
		},
	}
}

func TestWriter_Load(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	job := config.Job{Name: "science", Output: "states/science.html"}

	require.NoError(t, w.Load(context.Background(), job, testResult()))

	path := filepath.Join(dir, "states", "science.html")
	assert.Equal(t, path, w.Path(job))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<title>Science</title>"))
}

func TestWriter_Load_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Load(ctx, config.Job{Name: "x", Output: "x.html"}, testResult())
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "x.html"))
	assert.True(t, os.IsNotExist(statErr))
}
