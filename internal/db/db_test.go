package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func testTicket(id int, created time.Time) *model.Ticket {
	return &model.Ticket{
		ID:            id,
		Title:         "Ticket",
		State:         "Active",
		Priority:      2,
		CreatedAt:     created,
		Assignee:      model.Assignee{DisplayName: "James Libby", ID: "guid-1"},
		AreaPath:      `Sales\Change Management`,
		RawCategory:   "PS",
		RawSubType:    "Quota Move",
		RequestType:   "Change",
		RequesterName: "Pat",
		Link:          "https://example.test/1",
	}
}

func TestUpsertAndGetTicket(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, 10, 19, 9, 30, 15, 500, time.UTC)
	end := time.Date(2026, 10, 22, 17, 0, 0, 0, time.UTC)
	tk := testTicket(42, created)
	tk.EndDate = &end
	if err := d.UpsertTicket(ctx, tk); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := d.GetTicket(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, created)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("end_date: got %v, want %v", got.EndDate, end)
	}
	if got.ClosedAt != nil {
		t.Errorf("closed_at: got %v, want nil", got.ClosedAt)
	}
	if got.Assignee.ID != "guid-1" {
		t.Errorf("assignee id: got %q, want %q", got.Assignee.ID, "guid-1")
	}
	if got.AreaPath != `Sales\Change Management` {
		t.Errorf("area path: got %q", got.AreaPath)
	}

	tk.State = "Completed"
	tk.EndDate = nil
	if err := d.UpsertTicket(ctx, tk); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = d.GetTicket(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != "Completed" {
		t.Errorf("state: got %q, want %q", got.State, "Completed")
	}
	if got.EndDate != nil {
		t.Errorf("end_date: got %v, want nil after update", got.EndDate)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	d := openTestDB(t)
	_, err := d.GetTicket(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListAndDeleteTickets(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		if err := d.UpsertTicket(ctx, testTicket(i, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	tickets, err := d.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 4 {
		t.Fatalf("got %d tickets, want 4", len(tickets))
	}
	if tickets[0].ID != 4 || tickets[3].ID != 1 {
		t.Errorf("order: got first %d last %d, want newest first", tickets[0].ID, tickets[3].ID)
	}

	n, err := d.DeleteTicketsNotIn(ctx, []int{2, 3})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}

	n, err = d.DeleteTicketsNotIn(ctx, nil)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	tickets, _ = d.ListTickets(ctx)
	if len(tickets) != 0 {
		t.Errorf("got %d tickets after clearing, want 0", len(tickets))
	}
}

func TestNotifications(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	ok, err := d.IsNotified(ctx, 9)
	if err != nil {
		t.Fatalf("is notified: %v", err)
	}
	if ok {
		t.Error("fresh ticket reported as notified")
	}

	first := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	if err := d.MarkNotified(ctx, 9, first); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := d.MarkNotified(ctx, 9, first.Add(time.Hour)); err != nil {
		t.Fatalf("mark again: %v", err)
	}

	ok, _ = d.IsNotified(ctx, 9)
	if !ok {
		t.Error("ticket not reported as notified")
	}

	list, err := d.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}
	if !list[0].NotifiedAt.Equal(first) {
		t.Errorf("notified_at: got %v, want first mark %v", list[0].NotifiedAt, first)
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode: got %q, want %q", mode, "wal")
	}

	var timeout int
	if err := d.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout: got %d, want 5000", timeout)
	}
}
