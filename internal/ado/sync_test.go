package ado

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

type memStore struct {
	tickets map[int]model.Ticket
	failID  int
}

func (m *memStore) UpsertTicket(_ context.Context, t *model.Ticket) error {
	if t.ID == m.failID {
		return errors.New("disk full")
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTicketsNotIn(_ context.Context, keep []int) (int64, error) {
	set := make(map[int]bool, len(keep))
	for _, id := range keep {
		set[id] = true
	}
	var n int64
	for id := range m.tickets {
		if !set[id] {
			delete(m.tickets, id)
			n++
		}
	}
	return n, nil
}

type countingNotifier struct{ seen int }

func (c *countingNotifier) Notify(_ context.Context, p []model.Projection) (int, error) {
	c.seen = len(p)
	return 1, nil
}

type lastRecorder struct {
	last   []model.Projection
	alerts int
}

func (r *lastRecorder) Record(p []model.Projection) { r.last = p }

func (r *lastRecorder) AlertsPosted(n int) { r.alerts += n }

func trackerHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /CM/_apis/wit/wiql", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"workItems":[{"id":1},{"id":2},{"id":3}]}`)
	})
	mux.HandleFunc("GET /_apis/wit/workitems", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "1,2,3" {
			t.Errorf("ids: got %q, want 1,2,3", got)
		}
		_, _ = io.WriteString(w, `{"count":3,"value":[
			{"id":1,"fields":{"System.State":"Active","System.CreatedDate":"2026-10-19T09:30:00Z","Custom.Category":"PS","Custom.State1":"Quota Move"}},
			{"id":2,"fields":{"System.State":"Active"}},
			{"id":3,"fields":{"System.State":"Completed","System.CreatedDate":"2026-10-12T09:30:00Z","Custom.EndDate":"2026-10-13T09:00:00Z"}}
		]}`)
	})
	return mux
}

func newTestSyncer(t *testing.T, store Store) *Syncer {
	c := newTestClient(t, trackerHandler(t))
	c.project = "CM"
	s := NewSyncer(c, store, sla.NewProjector(nil), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSyncOnce(t *testing.T) {
	store := &memStore{tickets: map[int]model.Ticket{99: {ID: 99}}}
	notifier := &countingNotifier{}
	recorder := &lastRecorder{}
	s := newTestSyncer(t, store).WithNotifier(notifier).WithRecorder(recorder)

	projections, err := s.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}

	ids := make([]int, 0, len(store.tickets))
	for id := range store.tickets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("stored ids: got %v, want [1 3]", ids)
	}
	if !strings.HasSuffix(store.tickets[1].Link, "/CM/_workitems/edit/1") {
		t.Errorf("link: got %q", store.tickets[1].Link)
	}

	if len(projections) != 2 {
		t.Fatalf("projections: got %d, want 2", len(projections))
	}
	if projections[0].Status != model.StatusAtRisk {
		t.Errorf("ticket 1 status: got %q, want %q", projections[0].Status, model.StatusAtRisk)
	}
	if projections[1].Status != model.StatusCompleted {
		t.Errorf("ticket 3 status: got %q, want %q", projections[1].Status, model.StatusCompleted)
	}
	if notifier.seen != 2 {
		t.Errorf("notifier saw %d projections, want 2", notifier.seen)
	}
	if len(recorder.last) != 2 {
		t.Errorf("recorder saw %d projections, want 2", len(recorder.last))
	}
	if recorder.alerts != 1 {
		t.Errorf("alerts recorded: got %d, want 1", recorder.alerts)
	}
}

func TestSyncOnceKeepsRowsWhoseUpsertFailed(t *testing.T) {
	stale := model.Ticket{ID: 3, Title: "stale copy"}
	store := &memStore{tickets: map[int]model.Ticket{3: stale, 99: {ID: 99}}, failID: 3}
	s := newTestSyncer(t, store)

	projections, err := s.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}
	if _, ok := store.tickets[1]; !ok {
		t.Error("ticket 1 not stored")
	}
	got, ok := store.tickets[3]
	if !ok {
		t.Fatal("ticket 3 was pruned although the tracker still returns it")
	}
	if got.Title != stale.Title {
		t.Errorf("ticket 3: got title %q, want the stored row %q", got.Title, stale.Title)
	}
	if _, ok := store.tickets[99]; ok {
		t.Error("ticket 99 is gone from the tracker but was not pruned")
	}
	if len(projections) != 2 {
		t.Errorf("projections: got %d, want 2", len(projections))
	}
}

func TestSyncOnceFetchError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	store := &memStore{tickets: map[int]model.Ticket{5: {ID: 5}}}
	s := NewSyncer(c, store, sla.NewProjector(nil), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := s.SyncOnce(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
	if len(store.tickets) != 1 {
		t.Error("store was modified after a failed fetch")
	}
}
