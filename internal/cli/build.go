package cli

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/spending-maps/internal/adapter/filestore"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/observability"
)

type buildOptions struct {
	job         jobFlags
	outDir      string
	generatedAt string
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build maps from the job manifest or a single CSV",
		Long: `Build every map in the job manifest, or one map described by flags
when --csv is given. Each map is written as a standalone HTML file under
the output directory and, when Kafka is enabled, its regions are published
to the region topic.`,
		Example: `  spendingmap build --jobs jobs.yaml
  spendingmap build --csv spending.csv --geo-col district \
    --value-col fy_2023 --value-col fy_2024 --stepped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(rootOpts, opts, cmd)
		},
	}

	opts.job.bind(cmd.Flags())
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "output directory (default $OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.generatedAt, "generated-at", "", "RFC 3339 timestamp to stamp on maps for reproducible output")

	return cmd
}

func runBuild(root *RootOptions, opts *buildOptions, cmd *cobra.Command) error {
	cfg, logger := root.Config, root.Logger

	jobs, err := opts.job.jobs(cfg)
	if err != nil {
		return err
	}

	if opts.generatedAt != "" {
		ts, err := time.Parse(time.RFC3339, opts.generatedAt)
		if err != nil {
			return fmt.Errorf("invalid --generated-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	// One-shot builds expose no /metrics endpoint, so nothing is registered.
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, outDir, observability.NewMetricsForTesting(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close", "error", err)
		}
	}()

	logger.Info("building maps", "jobs", len(jobs), "out_dir", outDir)
	if err := a.pipeline.Run(ctx, jobs); err != nil {
		return err
	}

	files := filestore.NewWriter(outDir, logger)
	for _, j := range jobs {
		fmt.Fprintln(cmd.OutOrStdout(), files.Path(j))
	}
	return nil
}
