package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

const ticketColumns = `id, title, state, priority, created_at, closed_at, end_date, start_date,
	state_change_at, assignee_name, assignee_id, area_path, raw_category, raw_sub_type,
	request_type, requester_name, link`

// UpsertTicket inserts or replaces the raw tracker fields of t.
func (d *DB) UpsertTicket(ctx context.Context, t *model.Ticket) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO tickets (`+ticketColumns+`, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			priority = excluded.priority,
			created_at = excluded.created_at,
			closed_at = excluded.closed_at,
			end_date = excluded.end_date,
			start_date = excluded.start_date,
			state_change_at = excluded.state_change_at,
			assignee_name = excluded.assignee_name,
			assignee_id = excluded.assignee_id,
			area_path = excluded.area_path,
			raw_category = excluded.raw_category,
			raw_sub_type = excluded.raw_sub_type,
			request_type = excluded.request_type,
			requester_name = excluded.requester_name,
			link = excluded.link,
			synced_at = excluded.synced_at`,
		t.ID, t.Title, t.State, t.Priority, formatTime(t.CreatedAt),
		formatOptionalTime(t.ClosedAt), formatOptionalTime(t.EndDate),
		formatOptionalTime(t.StartDate), formatOptionalTime(t.StateChangeAt),
		t.Assignee.DisplayName, t.Assignee.ID, t.AreaPath, t.RawCategory, t.RawSubType,
		t.RequestType, t.RequesterName, t.Link)
	return err
}

// DeleteTicketsNotIn removes tickets whose IDs are not in keep. It returns
// the number of rows removed. An empty keep clears the table.
func (d *DB) DeleteTicketsNotIn(ctx context.Context, keep []int) (int64, error) {
	query := `DELETE FROM tickets`
	args := make([]interface{}, len(keep))
	if len(keep) > 0 {
		placeholders := make([]string, len(keep))
		for i, id := range keep {
			placeholders[i] = "?"
			args[i] = id
		}
		query += ` WHERE id NOT IN (` + strings.Join(placeholders, ",") + `)`
	}

	res, err := d.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTickets returns every stored ticket, newest first.
func (d *DB) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := d.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (d *DB) GetTicket(ctx context.Context, id int) (*model.Ticket, error) {
	row := d.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(s scanner) (*model.Ticket, error) {
	var t model.Ticket
	var created, closed, end, start, stateChange string
	if err := s.Scan(&t.ID, &t.Title, &t.State, &t.Priority, &created, &closed, &end, &start,
		&stateChange, &t.Assignee.DisplayName, &t.Assignee.ID, &t.AreaPath, &t.RawCategory,
		&t.RawSubType, &t.RequestType, &t.RequesterName, &t.Link); err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(created)
	t.ClosedAt = parseOptionalTime(closed)
	t.EndDate = parseOptionalTime(end)
	t.StartDate = parseOptionalTime(start)
	t.StateChangeAt = parseOptionalTime(stateChange)
	return &t, nil
}
