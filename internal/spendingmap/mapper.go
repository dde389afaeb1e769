// Package spendingmap joins prepared spending values to boundary features
// and assembles the styled choropleth.
package spendingmap

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/render"
)

// ErrNoBoundaries is returned by BuildMap when the mapper has no boundary data.
var ErrNoBoundaries = errors.New("no boundary data loaded")

// NoDataHover is the tooltip of a region without a hover entry.
const NoDataHover = "No data available"

// Mapper builds choropleth maps over one boundary file.
type Mapper struct {
	boundaries *boundary.Collection
	basemap    render.Basemap
	logger     *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithBasemap overrides the default CartoDB tiles.
func WithBasemap(b render.Basemap) Option {
	return func(m *Mapper) { m.basemap = b }
}

// New loads the boundary file at path. A file that cannot be loaded is logged
// and leaves the mapper without boundaries; BuildMap then fails with
// ErrNoBoundaries.
func New(path string, logger *slog.Logger, opts ...Option) *Mapper {
	col, err := boundary.Load(path)
	if err != nil {
		logger.Warn("boundary data unavailable", "path", path, "error", err)
		col = nil
	}
	return NewWithBoundaries(col, logger, opts...)
}

// NewWithBoundaries creates a mapper over an already loaded collection, which
// may be shared with other mappers.
func NewWithBoundaries(col *boundary.Collection, logger *slog.Logger, opts ...Option) *Mapper {
	m := &Mapper{
		boundaries: col,
		basemap:    render.DefaultBasemap(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Boundaries returns the loaded collection, or nil.
func (m *Mapper) Boundaries() *boundary.Collection {
	return m.boundaries
}

// PrepareData keys and aggregates t. Duplicate join keys are logged.
func (m *Mapper) PrepareData(t domain.Table, opts domain.PrepareOptions) (domain.Prepared, error) {
	p, err := domain.PrepareData(t, opts)
	if err != nil {
		return domain.Prepared{}, err
	}
	if len(p.Duplicates) > 0 {
		m.logger.Warn("duplicate join keys, later rows win", "keys", p.Duplicates)
	}
	if p.Dropped > 0 {
		m.logger.Debug("rows without a usable identifier dropped", "count", p.Dropped, "column", opts.GeoCol)
	}
	return p, nil
}

// MapOptions controls a single BuildMap call.
type MapOptions struct {
	Title   string
	Stepped bool
	Linear  bool              // continuous only; default is log scaling
	Hover   map[string]string // join key -> tooltip HTML
}

// Scale returns the colour scale BuildMap uses for the given range.
func Scale(lo, hi float64, opts MapOptions) domain.ColorScale {
	if opts.Stepped {
		return domain.NewSteppedScale()
	}
	return domain.ContinuousScale{Min: lo, Max: hi, Linear: opts.Linear}
}

// BuildMap styles a deep copy of the boundary features. Regions without a
// value render as no data. Tooltips are attached only when at least one
// region has a hover entry; the rest get NoDataHover.
func (m *Mapper) BuildMap(values map[string]float64, lo, hi float64, opts MapOptions) (*render.Artifact, error) {
	if m.boundaries == nil {
		return nil, ErrNoBoundaries
	}

	fc := m.boundaries.Clone()
	scale := Scale(lo, hi, opts)
	hoverAdded := false

	for _, f := range fc.Features {
		key, hasKey := boundary.JoinKey(f)

		obs := domain.Missing
		if v, ok := values[key]; hasKey && ok {
			obs = domain.Observed(v)
		}
		f.Properties[render.StyleProperty] = render.NewStyle(scale.Color(obs))

		if opts.Hover == nil {
			continue
		}
		if text, ok := opts.Hover[key]; hasKey && ok {
			f.Properties[render.HoverProperty] = text
			hoverAdded = true
		} else {
			f.Properties[render.HoverProperty] = NoDataHover
		}
	}

	tooltips := hoverAdded
	if tooltips {
		if err := checkTooltips(fc); err != nil {
			m.logger.Warn("could not add hover tooltips", "error", err)
			tooltips = false
		}
	}

	return &render.Artifact{
		Title:       opts.Title,
		Features:    fc,
		Legend:      scale.Legend(opts.Title),
		Tooltips:    tooltips,
		Basemap:     m.basemap,
		View:        render.ContiguousUS,
		GeneratedAt: domain.Now(),
	}, nil
}

func checkTooltips(fc *geojson.FeatureCollection) error {
	for i, f := range fc.Features {
		text, _ := f.Properties[render.HoverProperty].(string)
		if !utf8.ValidString(text) {
			return fmt.Errorf("feature %d: hover text is not valid UTF-8", i)
		}
	}
	return nil
}
