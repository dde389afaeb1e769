package spendingmap

import (
	"fmt"
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/render"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Spending Map"

var yearPattern = regexp.MustCompile(`(\d{4})`)

// Options describes one end-to-end map build.
type Options struct {
	GeoCol    string
	ValueCols []string
	Agg       domain.AggFunc
	Level     domain.Level
	Title     string
	Stepped   bool
	Linear    bool
}

// Stats summarises the mapped values.
type Stats struct {
	Min   float64
	Max   float64
	Count int
}

// Result is the output of CreateSpendingMap.
type Result struct {
	Map      *render.Artifact
	Data     map[string]float64 // keyed the way the boundary features are
	Prepared domain.Prepared
	Table    domain.Table
	Stats    Stats
}

// CreateSpendingMap prepares t, builds per-row hover text and renders the map.
// For state maps over a boundary file keyed by two-letter abbreviations the
// FIPS keys are translated back to abbreviations before the join.
func (m *Mapper) CreateSpendingMap(t domain.Table, opts Options) (*Result, error) {
	agg, err := domain.ParseAggFunc(string(opts.Agg))
	if err != nil {
		return nil, err
	}
	opts.Agg = agg
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	p, err := m.PrepareData(t, domain.PrepareOptions{
		GeoCol:    opts.GeoCol,
		ValueCols: opts.ValueCols,
		Agg:       opts.Agg,
		Level:     opts.Level,
	})
	if err != nil {
		return nil, err
	}

	abbreviated := opts.Level == domain.LevelState && m.boundaries != nil && m.boundaries.UsesStateAbbreviations()

	hover, err := HoverText(t, opts, abbreviated)
	if err != nil {
		return nil, err
	}

	data := p.Values
	if abbreviated {
		data = toAbbreviations(p.Values)
	}

	art, err := m.BuildMap(data, p.Min, p.Max, MapOptions{
		Title:   opts.Title,
		Stepped: opts.Stepped,
		Linear:  opts.Linear,
		Hover:   hover,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Map:      art,
		Data:     data,
		Prepared: p,
		Table:    t,
		Stats:    Stats{Min: p.Min, Max: p.Max, Count: len(data)},
	}, nil
}

// HoverText builds the tooltip of every row with a usable identifier:
//
//	<b>District: CA-01</b><br>Annual Spending: $1.2 million<br>(Average from FY 2022 to FY 2024)
//
// With abbreviated set, state rows are keyed by the upper-cased identifier
// instead of FIPS.
func HoverText(t domain.Table, opts Options, abbreviated bool) (map[string]string, error) {
	geoIdx, err := t.Column(opts.GeoCol)
	if err != nil {
		return nil, err
	}
	valueIdx := make([]int, len(opts.ValueCols))
	for i, name := range opts.ValueCols {
		if valueIdx[i], err = t.Column(name); err != nil {
			return nil, err
		}
	}

	agg, err := domain.ParseAggFunc(string(opts.Agg))
	if err != nil {
		return nil, err
	}
	opts.Agg = agg
	label := opts.Level.Label()
	summary := hoverContext(opts.Agg, opts.ValueCols)
	out := make(map[string]string, len(t.Rows))

	for row := range t.Rows {
		geo := t.Cell(row, geoIdx)

		var key string
		if abbreviated {
			key = strings.ToUpper(geo)
		} else {
			var ok bool
			if key, ok = domain.JoinKey(opts.Level, geo); !ok {
				continue
			}
		}
		if key == "" {
			continue
		}

		v := domain.RowValues(t, row, valueIdx, opts.Agg)
		out[key] = fmt.Sprintf("<b>%s: %s</b><br>Annual Spending: %s<br>%s",
			label, html.EscapeString(geo), domain.FormatAmount(v, false, 1), summary)
	}
	return out, nil
}

// hoverContext describes the aggregation. When the value columns carry fiscal
// years it names the covered range.
func hoverContext(agg domain.AggFunc, cols []string) string {
	var years []int
	for _, c := range cols {
		if m := yearPattern.FindStringSubmatch(c); m != nil {
			y, _ := strconv.Atoi(m[1])
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		name := string(agg)
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("(%s from FY %d to FY %d)", agg.Label(), slices.Min(years), slices.Max(years))
}

// toAbbreviations rekeys state FIPS codes as abbreviations. Keys that are not
// state FIPS codes are kept.
func toAbbreviations(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if abbr, ok := domain.StateAbbreviation(k); ok {
			out[abbr] = v
		} else {
			out[k] = v
		}
	}
	return out
}
