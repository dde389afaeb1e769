// Package render turns a styled feature collection and its legend into a
// self-contained Leaflet HTML document.
package render

import (
	"bufio"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/domain"
)

//go:embed templates/map.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html.tmpl"))

// Artifact is a finished map: styled regions, exactly one legend, and the
// viewport and basemap it is drawn on.
type Artifact struct {
	Title       string
	Features    *geojson.FeatureCollection
	Legend      domain.Legend
	Tooltips    bool
	Basemap     Basemap
	View        View
	GeneratedAt time.Time
}

type page struct {
	Title       string
	GeneratedAt string
	Legend      domain.Legend
	LegendMin   string
	LegendMax   string
	Tooltips    bool
	Basemap     Basemap
	View        View
	GeoJSON     template.JS
}

// Render writes the HTML document to w.
func (a *Artifact) Render(w io.Writer) error {
	data, err := a.Features.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	basemap := a.Basemap
	if basemap.URL == "" {
		basemap = DefaultBasemap()
	}
	view := a.View
	if view.MaxZoom == 0 {
		view = ContiguousUS
	}

	p := page{
		Title:       a.Title,
		GeneratedAt: a.GeneratedAt.UTC().Format(time.RFC3339),
		Legend:      a.Legend,
		LegendMin:   domain.FormatAmountShort(max(a.Legend.Min, 0)),
		LegendMax:   domain.FormatAmountShort(max(a.Legend.Max, 0)),
		Tooltips:    a.Tooltips,
		Basemap:     basemap,
		View:        view,
		GeoJSON:     template.JS(data), //nolint:gosec // json.Marshal escapes <, > and &
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// Save renders to path, creating parent directories. The file is written to
// a temporary sibling and renamed so readers never see a partial document.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".map-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	bw := bufio.NewWriter(tmp)
	if err := a.Render(bw); err != nil {
		tmp.Close() //nolint:errcheck // render error takes precedence
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close() //nolint:errcheck // flush error takes precedence
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Styles returns each region's style keyed by join key.
func (a *Artifact) Styles() map[string]Style {
	out := make(map[string]Style, len(a.Features.Features))
	for _, f := range a.Features.Features {
		key, ok := boundary.JoinKey(f)
		if !ok {
			continue
		}
		if s, ok := f.Properties[StyleProperty].(Style); ok {
			out[key] = s
		}
	}
	return out
}

// Hover returns each region's tooltip text keyed by join key.
func (a *Artifact) Hover() map[string]string {
	out := make(map[string]string, len(a.Features.Features))
	for _, f := range a.Features.Features {
		key, ok := boundary.JoinKey(f)
		if !ok {
			continue
		}
		if s, ok := f.Properties[HoverProperty].(string); ok {
			out[key] = s
		}
	}
	return out
}
