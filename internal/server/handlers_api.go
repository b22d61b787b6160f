package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/db"
	"github.com/cm-sla/sla-dashboard/internal/export"
	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/report"
	s3client "github.com/cm-sla/sla-dashboard/internal/s3"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

var errArchiveDisabled = errors.New("snapshot archive is not configured")

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracker_url":       s.cfg.TrackerURL,
		"report_zone":       s.views.Location().String(),
		"sync_interval_sec": int(s.cfg.SyncInterval.Seconds()),
		"teams":             sla.Teams,
		"sections":          report.AlwaysShown,
		"archive_enabled":   s.s3 != nil,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sla.Rules())
}

// --- Tickets & views ---

// filtered loads the current projections and applies the query filter.
func (s *Server) filtered(r *http.Request) ([]model.Projection, time.Time, int, error) {
	f, err := parseFilter(r.URL.Query(), s.views.Location())
	if err != nil {
		return nil, time.Time{}, http.StatusBadRequest, err
	}
	projections, at, err := s.views.Current(r.Context())
	if err != nil {
		return nil, time.Time{}, http.StatusInternalServerError, err
	}
	return f.Apply(projections), at, http.StatusOK, nil
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	view, _, status, err := s.filtered(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	report.SortBySubmitted(view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid ticket id %q", r.PathValue("id")))
		return
	}
	t, err := s.db.GetTicket(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Errorf("ticket %d not found", id))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	p, ok := s.views.Project(*t)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("ticket %d has no creation date", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, _, status, err := s.filtered(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(view))
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	view, _, status, err := s.filtered(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Sections(view))
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	projections, _, err := s.views.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	scenarios, assignees := report.Facets(projections)
	writeJSON(w, http.StatusOK, map[string][]string{
		"teams":     sla.Teams,
		"scenarios": nonNil(scenarios),
		"assignees": nonNil(assignees),
	})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.alerts.ListNotifications(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// --- Export & archive ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, at, status, err := s.filtered(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	local := at.In(s.views.Location())
	data, err := export.Workbook(view, report.Summarize(view), local)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeFile(w, export.Filename(local), data)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.s3 == nil {
		writeError(w, http.StatusNotFound, errArchiveDisabled)
		return
	}
	objects, err := s.s3.ListSnapshots(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if objects == nil {
		objects = []s3client.Object{}
	}
	writeJSON(w, http.StatusOK, objects)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.s3 == nil {
		writeError(w, http.StatusNotFound, errArchiveDisabled)
		return
	}
	name := r.PathValue("name")
	if !strings.HasSuffix(name, ".xlsx") || strings.ContainsAny(name, "/\\") {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot name %q", name))
		return
	}
	data, err := s.s3.GetObject(r.Context(), s3client.SnapshotPrefix+name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeFile(w, name, data)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.metrics.ServeHTTP(w, r)
}

// --- Helpers ---

// parseFilter reads repeated team, scenario and assignee parameters and an
// optional from/to date range (YYYY-MM-DD, in the reporting zone).
func parseFilter(q url.Values, loc *time.Location) (report.Filter, error) {
	f := report.Filter{
		Teams:     q["team"],
		Scenarios: q["scenario"],
		Assignees: q["assignee"],
	}
	for _, b := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(b.key)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(sla.DeadlineLayout, v, loc)
		if err != nil {
			return report.Filter{}, fmt.Errorf("invalid %s date %q: want YYYY-MM-DD", b.key, v)
		}
		*b.dst = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return report.Filter{}, fmt.Errorf("date range ends before it starts")
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", "max-age=30")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write file", "name", name, "error", err)
	}
}
