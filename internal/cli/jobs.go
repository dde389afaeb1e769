package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
)

// jobFlags describes a single job on the command line. When --csv is unset
// the command falls back to the job manifest.
type jobFlags struct {
	jobsFile  string
	name      string
	csv       string
	geoJSON   string
	geoCol    string
	valueCols []string
	agg       string
	level     string
	stepped   bool
	linear    bool
	title     string
	output    string
}

func (f *jobFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.jobsFile, "jobs", "", "job manifest (default $JOBS_FILE)")
	fs.StringVar(&f.name, "name", "", "job name (default: CSV file name)")
	fs.StringVar(&f.csv, "csv", "", "CSV source; builds a single map instead of the manifest")
	fs.StringVar(&f.geoJSON, "geojson", "", "boundary GeoJSON (default $GEOJSON_PATH)")
	fs.StringVar(&f.geoCol, "geo-col", "", "column holding the district or state identifier")
	fs.StringArrayVar(&f.valueCols, "value-col", nil, "value column (repeatable)")
	fs.StringVar(&f.agg, "agg", "mean", "aggregation across value columns (mean|sum|median)")
	fs.StringVar(&f.level, "level", string(domain.LevelDistrict), "geographic level (district|state)")
	fs.BoolVar(&f.stepped, "stepped", false, "use the fixed spending bands instead of a continuous scale")
	fs.BoolVar(&f.linear, "linear", false, "use a linear continuous scale instead of logarithmic")
	fs.StringVar(&f.title, "title", "", "map title (default: job name)")
	fs.StringVar(&f.output, "output", "", "output file name relative to the output directory")
}

func (f *jobFlags) single() bool {
	return f.csv != ""
}

// jobs returns the flag-defined job, or every job in the manifest.
func (f *jobFlags) jobs(cfg *config.Config) ([]config.Job, error) {
	if !f.single() {
		path := f.jobsFile
		if path == "" {
			path = cfg.JobsFile
		}
		return config.LoadJobs(path, cfg.GeoJSONPath)
	}

	j := config.Job{
		Name:      f.name,
		CSV:       f.csv,
		GeoJSON:   f.geoJSON,
		GeoCol:    f.geoCol,
		ValueCols: f.valueCols,
		Agg:       domain.AggFunc(f.agg),
		Level:     domain.Level(f.level),
		Stepped:   f.stepped,
		Linear:    f.linear,
		Title:     f.title,
		Output:    f.output,
	}
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(f.csv), filepath.Ext(f.csv))
	}
	if j.GeoJSON == "" {
		j.GeoJSON = cfg.GeoJSONPath
	}
	if err := j.Normalize(); err != nil {
		return nil, err
	}
	return []config.Job{j}, nil
}
