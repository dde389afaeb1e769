package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/spending-maps/internal/domain"
)

// Job is one map to build: a CSV source, the columns to read from it, and
// how to colour and save the result.
type Job struct {
	Name      string         `yaml:"name"`
	CSV       string         `yaml:"csv"`
	GeoJSON   string         `yaml:"geojson,omitempty"`
	GeoCol    string         `yaml:"geo_col"`
	ValueCols []string       `yaml:"value_cols"`
	Agg       domain.AggFunc `yaml:"agg,omitempty"`
	Level     domain.Level   `yaml:"level"`
	Stepped   bool           `yaml:"stepped,omitempty"`
	Linear    bool           `yaml:"linear,omitempty"`
	Title     string         `yaml:"title,omitempty"`
	Output    string         `yaml:"output,omitempty"`
}

type manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads a YAML job manifest. Relative csv and geojson paths are
// resolved against the manifest's directory; jobs without a geojson path use
// defaultGeoJSON.
func LoadJobs(path, defaultGeoJSON string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse jobs file %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s: no jobs defined", path)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(m.Jobs))
	for i := range m.Jobs {
		j := &m.Jobs[i]
		if j.GeoJSON == "" {
			j.GeoJSON = defaultGeoJSON
		} else {
			j.GeoJSON = resolve(base, j.GeoJSON)
		}
		j.CSV = resolve(base, j.CSV)

		if err := j.Normalize(); err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i, j.Name, err)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("job %d: duplicate name %q", i, j.Name)
		}
		seen[j.Name] = true
	}
	return m.Jobs, nil
}

// Normalize validates j and fills defaults: mean aggregation, the job name
// as title, and "<name>.html" as output.
func (j *Job) Normalize() error {
	j.Name = strings.TrimSpace(j.Name)
	switch {
	case j.Name == "":
		return errors.New("name is required")
	case strings.ContainsAny(j.Name, `/\`):
		return fmt.Errorf("name %q must not contain path separators", j.Name)
	case j.CSV == "":
		return errors.New("csv is required")
	case j.GeoJSON == "":
		return errors.New("geojson is required")
	case j.GeoCol == "":
		return errors.New("geo_col is required")
	case len(j.ValueCols) == 0:
		return domain.ErrNoValueColumns
	}

	level, err := domain.ParseLevel(string(j.Level))
	if err != nil {
		return err
	}
	agg, err := domain.ParseAggFunc(string(j.Agg))
	if err != nil {
		return err
	}
	j.Level, j.Agg = level, agg

	if j.Title == "" {
		j.Title = j.Name
	}
	if j.Output == "" {
		j.Output = j.Name + ".html"
	}
	if filepath.IsAbs(j.Output) || strings.HasPrefix(filepath.Clean(j.Output), "..") {
		return fmt.Errorf("output %q must be relative to the output directory", j.Output)
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
