// Package filestore saves rendered maps under an output directory.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// Writer saves each job's map as <dir>/<job.Output>.
// It implements pipeline.Loader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Path is where job's map is written.
func (w *Writer) Path(job config.Job) string {
	return filepath.Join(w.dir, job.Output)
}

// Load writes the rendered HTML document.
func (w *Writer) Load(ctx context.Context, job config.Job, res *spendingmap.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := w.Path(job)
	if err := res.Map.Save(path); err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	w.logger.Info("map written", "job", job.Name, "path", path, "regions", res.Stats.Count)
	return nil
}
