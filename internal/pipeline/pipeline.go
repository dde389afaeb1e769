package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/observability"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// Extractor reads a job's source table.
type Extractor interface {
	Extract(ctx context.Context, job config.Job) (domain.Table, error)
}

// Mapper turns a source table into a rendered map.
type Mapper interface {
	Map(ctx context.Context, job config.Job, t domain.Table) (*spendingmap.Result, error)
}

// Loader writes a finished map to a destination.
type Loader interface {
	Load(ctx context.Context, job config.Job, res *spendingmap.Result) error
}

// Pipeline runs extract, map and load for each job.
type Pipeline struct {
	extractor   Extractor
	mapper      Mapper
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	concurrency int

	loadAttempts   int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLoadRetry sets how many times a failing loader is attempted and the
// first delay between attempts. The delay doubles up to 5s.
func WithLoadRetry(attempts int, initial time.Duration) Option {
	return func(p *Pipeline) {
		p.loadAttempts = max(attempts, 1)
		p.initialBackoff = initial
	}
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, m Mapper, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, concurrency int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		mapper:         m,
		loaders:        loaders,
		logger:         logger,
		metrics:        metrics,
		concurrency:    max(concurrency, 1),
		loadAttempts:   3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once at least one map has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no map has been built yet")
	}
	return nil
}

// Ready reports whether a map has been built.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// MarkReady reports ready without building, for servers that render
// maps only on request.
func (p *Pipeline) MarkReady() {
	p.ready.Store(true)
}

// Run builds every job, at most concurrency at a time. A failing job does not
// stop the others; the first failure is returned once all jobs finish.
func (p *Pipeline) Run(ctx context.Context, jobs []config.Job) error {
	p.logger.Info("pipeline started", "jobs", len(jobs), "concurrency", p.concurrency)

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	var failed atomic.Int64
	for _, job := range jobs {
		g.Go(func() error {
			if _, err := p.RunJob(ctx, job); err != nil {
				failed.Add(1)
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()

	p.logger.Info("pipeline finished", "jobs", len(jobs), "failed", failed.Load())
	return err
}

// RunJob builds one job and hands the result to every loader.
func (p *Pipeline) RunJob(ctx context.Context, job config.Job) (*spendingmap.Result, error) {
	start := time.Now()
	p.metrics.JobsRunning.Inc()
	defer p.metrics.JobsRunning.Dec()

	res, err := p.Build(ctx, job)
	if err != nil {
		return nil, err
	}

	var loadErrs []error
	for _, l := range p.loaders {
		if err := p.loadWithRetry(ctx, l, job, res); err != nil {
			p.logger.Error("load failed", "job", job.Name, "error", err)
			p.metrics.BuildErrors.WithLabelValues("load").Inc()
			loadErrs = append(loadErrs, err)
		}
	}
	if err := errors.Join(loadErrs...); err != nil {
		return nil, err
	}

	p.metrics.MapsBuilt.Inc()
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("map built", "job", job.Name, "regions", res.Stats.Count,
		"min", res.Stats.Min, "max", res.Stats.Max, "duration", time.Since(start))
	return res, nil
}

// Build extracts and maps job without loading it anywhere.
func (p *Pipeline) Build(ctx context.Context, job config.Job) (*spendingmap.Result, error) {
	table, err := p.extractor.Extract(ctx, job)
	if err != nil {
		p.metrics.BuildErrors.WithLabelValues("extract").Inc()
		p.logger.Error("extract failed", "job", job.Name, "error", err)
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(table.Rows)))

	res, err := p.mapper.Map(ctx, job, table)
	if err != nil {
		p.metrics.BuildErrors.WithLabelValues("map").Inc()
		p.logger.Error("map failed", "job", job.Name, "error", err)
		return nil, fmt.Errorf("map: %w", err)
	}
	p.metrics.RowsDropped.Add(float64(res.Prepared.Dropped))
	p.metrics.DuplicateKeys.Add(float64(len(res.Prepared.Duplicates)))
	return res, nil
}

// loadWithRetry retries l with exponential backoff until it succeeds, the
// attempts run out, or ctx is cancelled.
func (p *Pipeline) loadWithRetry(ctx context.Context, l Loader, job config.Job, res *spendingmap.Result) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.loadAttempts; attempt++ {
		if err = l.Load(ctx, job, res); err == nil {
			return nil
		}
		if attempt == p.loadAttempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("load attempt failed, retrying", "job", job.Name, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}
