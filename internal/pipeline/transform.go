package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// SpendingMapper implements Mapper over cached boundary files.
type SpendingMapper struct {
	cache  *boundary.Cache
	opts   []spendingmap.Option
	logger *slog.Logger
}

// NewMapper creates a SpendingMapper. opts apply to every map it builds.
func NewMapper(cache *boundary.Cache, logger *slog.Logger, opts ...spendingmap.Option) *SpendingMapper {
	return &SpendingMapper{cache: cache, opts: opts, logger: logger}
}

func (m *SpendingMapper) Map(ctx context.Context, job config.Job, t domain.Table) (*spendingmap.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	col, err := m.cache.Get(job.GeoJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", spendingmap.ErrNoBoundaries, err)
	}

	mapper := spendingmap.NewWithBoundaries(col, m.logger.With("job", job.Name), m.opts...)
	return mapper.CreateSpendingMap(t, JobOptions(job))
}

// JobOptions converts a job definition to map options.
func JobOptions(job config.Job) spendingmap.Options {
	return spendingmap.Options{
		GeoCol:    job.GeoCol,
		ValueCols: job.ValueCols,
		Agg:       job.Agg,
		Level:     job.Level,
		Title:     job.Title,
		Stepped:   job.Stepped,
		Linear:    job.Linear,
	}
}
