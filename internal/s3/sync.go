package s3

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/export"
	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/report"
)

// Source supplies the current projected tickets and their reference time.
type Source interface {
	Current(ctx context.Context) ([]model.Projection, time.Time, error)
}

// Archiver periodically uploads a snapshot workbook of the live view.
type Archiver struct {
	client *Client
	source Source
	loc    *time.Location
	filter report.Filter
	logger *slog.Logger
}

// NewArchiver creates an Archiver that renders source into client. File
// names use local time in loc.
func NewArchiver(client *Client, source Source, loc *time.Location, logger *slog.Logger) *Archiver {
	if loc == nil {
		loc = time.UTC
	}
	return &Archiver{client: client, source: source, loc: loc, logger: logger}
}

// SnapshotKey returns the object key of a snapshot generated at t.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + export.Filename(t)
}

// Run archives every interval until ctx is cancelled. The first upload
// waits one interval so it does not race the first tracker sync on a fresh
// database.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("stopping")
			return
		case <-ticker.C:
			a.archive(ctx)
		}
	}
}

func (a *Archiver) archive(ctx context.Context) {
	key, err := a.ArchiveOnce(ctx)
	if err != nil {
		a.logger.Error("archive snapshot", "error", err)
		return
	}
	a.logger.Info("archived snapshot", "bucket", a.client.Bucket(), "key", key)
}

// ArchiveOnce renders the live view and uploads it. It returns the key
// written.
func (a *Archiver) ArchiveOnce(ctx context.Context) (string, error) {
	projections, at, err := a.source.Current(ctx)
	if err != nil {
		return "", err
	}
	view := a.filter.Apply(projections)
	local := at.In(a.loc)

	data, err := export.Workbook(view, report.Summarize(view), local)
	if err != nil {
		return "", fmt.Errorf("render workbook: %w", err)
	}
	key := SnapshotKey(local)
	if err := a.client.PutObject(ctx, key, data, export.ContentType); err != nil {
		return "", err
	}
	return key, nil
}
