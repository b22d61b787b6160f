// Package notify posts one-time SLA alert comments on at-risk tickets.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/ado"
	"github.com/cm-sla/sla-dashboard/internal/model"
)

// AlertMarker identifies alert comments already present on a ticket.
const AlertMarker = "SLA Alert"

// Tracker is the subset of the tracker client used to deliver alerts.
type Tracker interface {
	ListComments(ctx context.Context, id int) ([]ado.Comment, error)
	AddComment(ctx context.Context, id int, text string) error
}

// Store remembers which tickets were alerted.
type Store interface {
	IsNotified(ctx context.Context, ticketID int) (bool, error)
	MarkNotified(ctx context.Context, ticketID int, at time.Time) error
}

// Notifier alerts each at-risk ticket at most once.
type Notifier struct {
	tracker Tracker
	store   Store
	logger  *slog.Logger
	now     func() time.Time
}

func New(tracker Tracker, store Store, logger *slog.Logger) *Notifier {
	return &Notifier{tracker: tracker, store: store, logger: logger, now: time.Now}
}

// Notify alerts every At Risk projection not yet recorded in the store and
// returns the number of comments posted. A ticket that already carries an
// alert comment is recorded without posting. Per-ticket failures are logged
// and retried next cycle; an authentication failure aborts the batch.
func (n *Notifier) Notify(ctx context.Context, projections []model.Projection) (int, error) {
	sent := 0
	for _, p := range projections {
		if p.Status != model.StatusAtRisk {
			continue
		}
		done, err := n.store.IsNotified(ctx, p.ID)
		if err != nil {
			return sent, fmt.Errorf("check notified %d: %w", p.ID, err)
		}
		if done {
			continue
		}

		exists, err := n.hasAlert(ctx, p.ID)
		if err != nil {
			if errors.Is(err, ado.ErrUnauthorized) {
				return sent, err
			}
			n.logger.Warn("check existing alert", "id", p.ID, "error", err)
			continue
		}
		if exists {
			if err := n.store.MarkNotified(ctx, p.ID, n.now()); err != nil {
				n.logger.Error("mark notified", "id", p.ID, "error", err)
			}
			continue
		}

		if err := n.tracker.AddComment(ctx, p.ID, AlertHTML(p)); err != nil {
			if errors.Is(err, ado.ErrUnauthorized) {
				return sent, err
			}
			n.logger.Warn("post alert", "id", p.ID, "error", err)
			continue
		}
		if err := n.store.MarkNotified(ctx, p.ID, n.now()); err != nil {
			n.logger.Error("mark notified", "id", p.ID, "error", err)
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) hasAlert(ctx context.Context, id int) (bool, error) {
	comments, err := n.tracker.ListComments(ctx, id)
	if err != nil {
		return false, err
	}
	for _, c := range comments {
		if strings.Contains(c.Text, AlertMarker) {
			return true, nil
		}
	}
	return false, nil
}

// AlertHTML renders the alert comment for p, mentioning the assignee when
// their tracker identity is known.
func AlertHTML(p model.Projection) string {
	name := p.Assignee.DisplayName
	if name == "" {
		name = model.Unassigned
	}
	mention := html.EscapeString(name)
	if p.Assignee.ID != "" {
		mention = fmt.Sprintf(`<a href="#" data-vss-mention="version:2.0,%s">@%s</a>`,
			html.EscapeString(p.Assignee.ID), html.EscapeString(name))
	}
	target := p.SLADisplay
	if target == "" {
		target = "N/A"
	}

	var b strings.Builder
	b.WriteString("\U0001F514 <b>SLA Alert — At Risk</b><br>")
	b.WriteString("This ticket is approaching its SLA deadline.<br><br>")
	fmt.Fprintf(&b, "<b>SLA Target:</b> %s<br>", html.EscapeString(target))
	fmt.Fprintf(&b, "<b>Remaining:</b> %d business day(s)<br>", p.Remaining)
	fmt.Fprintf(&b, "<b>Status:</b> %s<br><br>", p.Status)
	b.WriteString("<i>Please prioritise this ticket to meet the SLA commitment.</i><br>")
	fmt.Fprintf(&b, "cc: %s — Change Management SLA App", mention)
	return b.String()
}
