package db

import "fmt"

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
    id              INTEGER PRIMARY KEY,
    title           TEXT NOT NULL DEFAULT '',
    state           TEXT NOT NULL DEFAULT '',
    priority        INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL,
    closed_at       TEXT NOT NULL DEFAULT '',
    end_date        TEXT NOT NULL DEFAULT '',
    start_date      TEXT NOT NULL DEFAULT '',
    state_change_at TEXT NOT NULL DEFAULT '',
    assignee_name   TEXT NOT NULL DEFAULT '',
    assignee_id     TEXT NOT NULL DEFAULT '',
    area_path       TEXT NOT NULL DEFAULT '',
    raw_category    TEXT NOT NULL DEFAULT '',
    raw_sub_type    TEXT NOT NULL DEFAULT '',
    request_type    TEXT NOT NULL DEFAULT '',
    requester_name  TEXT NOT NULL DEFAULT '',
    link            TEXT NOT NULL DEFAULT '',
    synced_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_tickets_created ON tickets(created_at DESC);

CREATE TABLE IF NOT EXISTS notifications (
    ticket_id   INTEGER PRIMARY KEY,
    notified_at TEXT NOT NULL
);
`

func (d *DB) migrate() error {
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}
