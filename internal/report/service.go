package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

// TicketStore is the subset of the database layer needed to build views.
type TicketStore interface {
	ListTickets(ctx context.Context) ([]model.Ticket, error)
}

// Service projects the stored tickets on demand. Every call uses a single
// reference time for the whole batch.
type Service struct {
	store     TicketStore
	projector *sla.Projector
	now       func() time.Time
}

func NewService(store TicketStore, projector *sla.Projector) *Service {
	return &Service{store: store, projector: projector, now: time.Now}
}

// Current returns every stored ticket projected as of now, together with
// the reference time used.
func (s *Service) Current(ctx context.Context) ([]model.Projection, time.Time, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list tickets: %w", err)
	}
	now := s.now()
	return s.projector.ProjectBatch(tickets, now), now, nil
}

// Project projects a single ticket as of now.
func (s *Service) Project(t model.Ticket) (model.Projection, bool) {
	return s.projector.Project(t, s.now())
}

// Location is the zone submission days are reported in.
func (s *Service) Location() *time.Location {
	return s.projector.Location
}
