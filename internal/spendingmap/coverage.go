package spendingmap

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/domain"
)

// CoverageReport compares a prepared table with a boundary file.
type CoverageReport struct {
	Rows       int      `json:"rows"`
	Dropped    int      `json:"dropped"`
	Duplicates []string `json:"duplicates"`
	Features   int      `json:"features"`
	Matched    int      `json:"matched"`
	Unmatched  []string `json:"unmatched"` // join keys with no boundary feature
	NoData     []string `json:"no_data"`   // boundary features with no value
}

// OK reports whether every row produced a key that matched a feature.
func (r CoverageReport) OK() bool {
	return r.Dropped == 0 && len(r.Unmatched) == 0
}

// Coverage matches p's join keys against col's features. Abbreviation-keyed
// state files are compared after translating FIPS keys.
func Coverage(p domain.Prepared, col *boundary.Collection) CoverageReport {
	values := p.Values
	if col.UsesStateAbbreviations() {
		values = toAbbreviations(values)
	}

	features := col.Keys()
	inFile := make(map[string]bool, len(features))
	r := CoverageReport{
		Rows:       p.Rows,
		Dropped:    p.Dropped,
		Duplicates: slices.Compact(slices.Sorted(slices.Values(p.Duplicates))),
		Features:   col.Len(),
	}

	for _, k := range features {
		inFile[k] = true
		if _, ok := values[k]; ok {
			r.Matched++
		} else {
			r.NoData = append(r.NoData, k)
		}
	}
	for k := range values {
		if !inFile[k] {
			r.Unmatched = append(r.Unmatched, k)
		}
	}
	slices.Sort(r.Unmatched)
	slices.Sort(r.NoData)
	return r
}

// WriteText writes a plain-text summary, one field per line.
func (r CoverageReport) WriteText(w io.Writer) error {
	status := "ok"
	if !r.OK() {
		status = "incomplete"
	}
	lines := []struct {
		label string
		value any
	}{
		{"rows read", r.Rows},
		{"rows dropped", r.Dropped},
		{"duplicate keys", list(r.Duplicates)},
		{"boundary features", r.Features},
		{"matched regions", r.Matched},
		{"unmatched keys", list(r.Unmatched)},
		{"regions w/o data", list(r.NoData)},
		{"status", status},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-18s %v\n", l.label, l.value); err != nil {
			return err
		}
	}
	return nil
}

func list(keys []string) string {
	if len(keys) == 0 {
		return "-"
	}
	return strings.Join(keys, ", ")
}
