package db

import (
	"context"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// IsNotified reports whether an SLA alert was already recorded for ticketID.
func (d *DB) IsNotified(ctx context.Context, ticketID int) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE ticket_id = ?`, ticketID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkNotified records an alert for ticketID. Marking twice keeps the first
// timestamp.
func (d *DB) MarkNotified(ctx context.Context, ticketID int, at time.Time) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO notifications (ticket_id, notified_at) VALUES (?, ?)
		ON CONFLICT(ticket_id) DO NOTHING`,
		ticketID, formatTime(at))
	return err
}

func (d *DB) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := d.QueryContext(ctx, `SELECT ticket_id, notified_at FROM notifications ORDER BY notified_at DESC, ticket_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var ts string
		if err := rows.Scan(&n.TicketID, &ts); err != nil {
			return nil, err
		}
		n.NotifiedAt = parseTime(ts)
		out = append(out, n)
	}
	return out, rows.Err()
}
