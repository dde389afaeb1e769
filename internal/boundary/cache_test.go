package boundary

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/spending-maps/internal/observability"
)

type countingLoader struct {
	calls map[string]int
	fail  map[string]error
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: map[string]int{}, fail: map[string]error{}}
}

func (l *countingLoader) load(path string) (*Collection, error) {
	l.calls[path]++
	if err := l.fail[path]; err != nil {
		return nil, err
	}
	return &Collection{Path: path}, nil
}

func TestCache_HitAndMiss(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	loader := newCountingLoader()
	c, err := newCache(2, loader.load, metrics)
	require.NoError(t, err)

	first, err := c.Get("districts.geojson")
	require.NoError(t, err)
	second, err := c.Get("districts.geojson")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls["districts.geojson"])
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("miss")), 0)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	loader := newCountingLoader()
	c, err := newCache(2, loader.load, observability.NewMetricsForTesting())
	require.NoError(t, err)

	for _, p := range []string{"a", "b", "a", "c"} {
		_, err := c.Get(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	// "b" was least recently used when "c" arrived.
	_, err = c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls["b"])
	assert.Equal(t, 1, loader.calls["a"])
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	loader := newCountingLoader()
	loader.fail["broken"] = errors.New("boom")
	c, err := newCache(4, loader.load, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = c.Get("broken")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	delete(loader.fail, "broken")
	col, err := c.Get("broken")
	require.NoError(t, err)
	assert.Equal(t, "broken", col.Path)
	assert.Equal(t, 2, loader.calls["broken"])
}

func TestNewCache_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewCache(0, observability.NewMetricsForTesting())
	require.Error(t, err)
}

func TestNewCache_LoadsFromDisk(t *testing.T) {
	c, err := NewCache(1, observability.NewMetricsForTesting())
	require.NoError(t, err)

	col, err := c.Get(testDistricts)
	require.NoError(t, err)
	assert.Equal(t, 3, col.Len())
}
