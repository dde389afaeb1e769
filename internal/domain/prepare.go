package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Table is a rectangular source table: a header row plus data rows of string
// cells. Column names are configuration, not schema.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column.
func (t Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Cell returns the trimmed cell at (row, col), or "" for short rows.
func (t Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// AggFunc collapses a row's value columns into one number.
type AggFunc string

const (
	AggMean   AggFunc = "mean"
	AggSum    AggFunc = "sum"
	AggMedian AggFunc = "median"
)

// ParseAggFunc validates an aggregation name. An empty name means mean.
func ParseAggFunc(s string) (AggFunc, error) {
	switch AggFunc(strings.ToLower(strings.TrimSpace(s))) {
	case "", AggMean:
		return AggMean, nil
	case AggSum:
		return AggSum, nil
	case AggMedian:
		return AggMedian, nil
	default:
		return "", fmt.Errorf("%w: %q (want mean, sum or median)", ErrInvalidAggFunc, s)
	}
}

// Apply aggregates vals. An empty slice yields 0.
func (a AggFunc) Apply(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	switch a {
	case AggSum:
		return sum(vals)
	case AggMedian:
		sorted := slices.Clone(vals)
		slices.Sort(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	default:
		return sum(vals) / float64(len(vals))
	}
}

// Label is the capitalized name used in tooltips ("Average" for mean).
func (a AggFunc) Label() string {
	switch a {
	case AggSum:
		return "Sum"
	case AggMedian:
		return "Median"
	default:
		return "Average"
	}
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// PrepareOptions selects the columns and semantics for PrepareData.
type PrepareOptions struct {
	GeoCol    string
	ValueCols []string
	Agg       AggFunc
	Level     Level
}

// Prepared is a join-key → value mapping plus the observed range.
type Prepared struct {
	Values map[string]float64
	Min    float64
	Max    float64

	Rows       int      // data rows read
	Dropped    int      // rows with no usable join key
	Duplicates []string // join keys seen more than once (last row wins)
}

// PrepareData coerces, aggregates and keys every row of t.
//
// Rows whose identifier does not convert are dropped. When two rows map to the
// same join key the later row wins and the key is recorded in Duplicates.
// With no surviving rows Min/Max default to 0/1 so scales stay well defined.
func PrepareData(t Table, opts PrepareOptions) (Prepared, error) {
	if _, err := ParseLevel(string(opts.Level)); err != nil {
		return Prepared{}, err
	}
	agg, err := ParseAggFunc(string(opts.Agg))
	if err != nil {
		return Prepared{}, err
	}
	if len(opts.ValueCols) == 0 {
		return Prepared{}, ErrNoValueColumns
	}

	geoIdx, err := t.Column(opts.GeoCol)
	if err != nil {
		return Prepared{}, err
	}
	valueIdx := make([]int, len(opts.ValueCols))
	for i, name := range opts.ValueCols {
		if valueIdx[i], err = t.Column(name); err != nil {
			return Prepared{}, err
		}
	}

	p := Prepared{
		Values: make(map[string]float64, len(t.Rows)),
		Rows:   len(t.Rows),
	}
	seen := make(map[string]bool, len(t.Rows))
	vals := make([]float64, len(valueIdx))

	for row := range t.Rows {
		key, ok := JoinKey(opts.Level, t.Cell(row, geoIdx))
		if !ok {
			p.Dropped++
			continue
		}
		for i, col := range valueIdx {
			vals[i] = parseFloatOrZero(t.Cell(row, col))
		}
		if seen[key] {
			p.Duplicates = append(p.Duplicates, key)
		}
		seen[key] = true
		p.Values[key] = agg.Apply(vals)
	}

	p.Min, p.Max = valueRange(p.Values)
	return p, nil
}

// RowValues aggregates the value columns of a single row without keying it.
func RowValues(t Table, row int, valueIdx []int, agg AggFunc) float64 {
	vals := make([]float64, len(valueIdx))
	for i, col := range valueIdx {
		vals[i] = parseFloatOrZero(t.Cell(row, col))
	}
	return agg.Apply(vals)
}

func valueRange(values map[string]float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}
	first := true
	for _, v := range values {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// parseFloatOrZero parses a numeric cell, returning 0 for blanks, text, and
// non-finite values.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
