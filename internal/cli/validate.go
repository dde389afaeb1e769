package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/spending-maps/internal/adapter/csvfile"
	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// ErrIncompleteCoverage is returned when a job drops rows or produces join
// keys that no boundary feature carries.
var ErrIncompleteCoverage = errors.New("incomplete coverage")

// ValidFormats defines the allowed validate output formats.
var ValidFormats = []string{"text", "json"}

type validateOptions struct {
	job    jobFlags
	format string
}

// JobCoverage is one job's entry in the validate output.
type JobCoverage struct {
	Job    string                     `json:"job"`
	OK     bool                       `json:"ok"`
	Report spendingmap.CoverageReport `json:"report"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check how well CSV data joins to the boundary file",
		Long: `Prepare each job's data without rendering and compare its join keys
with the boundary file: rows dropped, duplicate keys, keys without a
feature and features without data.

Exits non-zero when any job drops rows or has unmatched keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.format, ValidFormats)
			}
			return runValidate(rootOpts, opts, cmd)
		},
	}

	opts.job.bind(cmd.Flags())
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (json|text)")

	return cmd
}

func runValidate(root *RootOptions, opts *validateOptions, cmd *cobra.Command) error {
	cfg, logger := root.Config, root.Logger

	jobs, err := opts.job.jobs(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reader := csvfile.NewReader(logger)
	results := make([]JobCoverage, 0, len(jobs))
	for _, job := range jobs {
		t, err := reader.Extract(ctx, job)
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
		col, err := boundary.Load(job.GeoJSON)
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}

		m := spendingmap.NewWithBoundaries(col, logger.With("job", job.Name))
		p, err := m.PrepareData(t, domain.PrepareOptions{
			GeoCol:    job.GeoCol,
			ValueCols: job.ValueCols,
			Agg:       job.Agg,
			Level:     job.Level,
		})
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}

		report := spendingmap.Coverage(p, col)
		results = append(results, JobCoverage{Job: job.Name, OK: report.OK(), Report: report})
	}

	if err := writeCoverage(cmd.OutOrStdout(), opts.format, results); err != nil {
		return err
	}
	for _, r := range results {
		if !r.OK {
			return fmt.Errorf("%w: job %s", ErrIncompleteCoverage, r.Job)
		}
	}
	return nil
}

func writeCoverage(w io.Writer, format string, results []JobCoverage) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", r.Job)
		if err := r.Report.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}
