// Package csvfile reads spending tables from CSV files on disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
)

// ErrNoHeader is returned for an empty CSV file.
var ErrNoHeader = errors.New("csv has no header row")

// Reader loads a job's CSV into a domain.Table.
// It implements pipeline.Extractor.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Extract reads job.CSV.
func (r *Reader) Extract(ctx context.Context, job config.Job) (domain.Table, error) {
	f, err := os.Open(job.CSV)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := Read(ctx, f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%s: %w", job.CSV, err)
	}
	r.logger.Debug("csv loaded", "job", job.Name, "path", job.CSV, "rows", len(t.Rows), "columns", len(t.Header))
	return t, nil
}

// Read parses CSV from src. The first record is the header; header names are
// trimmed and a leading byte-order mark is dropped. Rows may be ragged.
func Read(ctx context.Context, src io.Reader) (domain.Table, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, ErrNoHeader
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	t := domain.Table{Header: header}
	for {
		if len(t.Rows)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
