package ado

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

// Store is the subset of the database layer needed by the syncer.
type Store interface {
	UpsertTicket(ctx context.Context, t *model.Ticket) error
	DeleteTicketsNotIn(ctx context.Context, keep []int) (int64, error)
}

// Notifier delivers alerts for a freshly projected batch and returns how
// many were sent.
type Notifier interface {
	Notify(ctx context.Context, projections []model.Projection) (int, error)
}

// Recorder publishes aggregate state of a projected batch.
type Recorder interface {
	Record(projections []model.Projection)
	AlertsPosted(n int)
}

// Syncer orchestrates periodic ticket synchronisation into a Store.
type Syncer struct {
	client    *Client
	store     Store
	projector *sla.Projector
	notifier  Notifier
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewSyncer creates a Syncer that uses client to fetch tickets and store to
// persist them.
func NewSyncer(client *Client, store Store, projector *sla.Projector, logger *slog.Logger) *Syncer {
	return &Syncer{
		client:    client,
		store:     store,
		projector: projector,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNotifier sets the notifier run after each successful sync.
func (s *Syncer) WithNotifier(n Notifier) *Syncer {
	s.notifier = n
	return s
}

// WithRecorder sets the recorder updated after each successful sync.
func (s *Syncer) WithRecorder(r Recorder) *Syncer {
	s.recorder = r
	return s
}

// Run performs an immediate sync and then repeats every interval until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	_, _ = s.SyncOnce(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping")
			return
		case <-ticker.C:
			_, _ = s.SyncOnce(ctx)
		}
	}
}

// SyncOnce fetches every ticket, mirrors it into the store and projects the
// batch against a single reference time. Store failures for individual
// tickets are logged; the stored rows of those tickets are kept.
func (s *Syncer) SyncOnce(ctx context.Context) ([]model.Projection, error) {
	logger := s.logger.With("run_id", uuid.NewString())
	start := s.now()

	tickets, err := s.client.FetchTickets(ctx)
	if err != nil {
		logger.Error("fetch tickets", "error", err)
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}

	// Every fetched ID is kept, so a failed upsert leaves the stored row in
	// place instead of pruning it.
	keep := make([]int, 0, len(tickets))
	for i := range tickets {
		keep = append(keep, tickets[i].ID)
		if err := s.store.UpsertTicket(ctx, &tickets[i]); err != nil {
			logger.Error("upsert ticket", "id", tickets[i].ID, "error", err)
		}
	}

	removed, err := s.store.DeleteTicketsNotIn(ctx, keep)
	if err != nil {
		logger.Error("cleanup tickets", "error", err)
	}

	projections := s.projector.ProjectBatch(tickets, start)
	if s.recorder != nil {
		s.recorder.Record(projections)
	}
	if s.notifier != nil {
		sent, err := s.notifier.Notify(ctx, projections)
		if err != nil {
			logger.Error("notify", "error", err)
		}
		if sent > 0 {
			logger.Info("posted SLA alerts", "count", sent)
			if s.recorder != nil {
				s.recorder.AlertsPosted(sent)
			}
		}
	}

	logger.Info("synced tickets", "count", len(tickets), "removed", removed, "duration", s.now().Sub(start).Round(time.Millisecond))
	return projections, nil
}
