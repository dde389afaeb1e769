package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/spending-maps/internal/adapter/http"
	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/observability"
)

type serveOptions struct {
	jobsFile string
	addr     string
	outDir   string
	noBuild  bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve maps over HTTP",
		Long: `Serve every map in the job manifest at /maps/{name}, rendered on
request, alongside /healthz, /readyz and /metrics.

Unless --no-build is set, all jobs are built once at startup (writing files
and publishing regions like the build command) and /readyz reports ready
when that first build has finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.jobsFile, "jobs", "", "job manifest (default $JOBS_FILE)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default $HTTP_ADDR)")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "output directory for the startup build (default $OUTPUT_DIR)")
	cmd.Flags().BoolVar(&opts.noBuild, "no-build", false, "skip the startup build and report ready immediately")

	return cmd
}

func runServe(root *RootOptions, opts *serveOptions, cmd *cobra.Command) error {
	cfg := root.Config
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	jobsFile := opts.jobsFile
	if jobsFile == "" {
		jobsFile = cfg.JobsFile
	}
	jobs, err := config.LoadJobs(jobsFile, cfg.GeoJSONPath)
	if err != nil {
		return err
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	a, err := newApp(ctx, cfg, outDir, metrics, logger)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(addr, a.pipeline, a.pipeline, jobs, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Startup build.
	if opts.noBuild {
		a.pipeline.MarkReady()
	} else {
		go func() {
			if err := a.pipeline.Run(ctx, jobs); err != nil {
				logger.Error("startup build error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
