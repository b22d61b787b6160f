package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/report"
	"github.com/cm-sla/sla-dashboard/web"
)

var templates map[string]*template.Template

func init() {
	layout := template.Must(template.New("layout").ParseFS(web.TemplateFS, "templates/layout.html"))

	pages := []string{
		"templates/dashboard.html",
	}

	templates = make(map[string]*template.Template)
	for _, p := range pages {
		t := template.Must(template.Must(layout.Clone()).ParseFS(web.TemplateFS, p))
		templates[p] = t
	}
}

type pageData struct {
	Live           bool
	GeneratedAt    time.Time
	ExportURL      string
	RefreshSeconds int
	Summary        model.Summary
	Sections       []model.Section
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query(), s.views.Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	projections, at, err := s.views.Current(r.Context())
	if err != nil {
		s.logger.Error("dashboard", "error", err)
		http.Error(w, "error loading tickets", http.StatusInternalServerError)
		return
	}

	view := f.Apply(projections)
	exportURL := "/api/v1/export.xlsx"
	if r.URL.RawQuery != "" {
		exportURL += "?" + r.URL.RawQuery
	}
	refresh := int(s.cfg.SyncInterval.Seconds())
	if refresh <= 0 {
		refresh = 300
	}
	s.renderPage(w, "templates/dashboard.html", pageData{
		Live:           f.Live(),
		GeneratedAt:    at.In(s.views.Location()),
		ExportURL:      exportURL,
		RefreshSeconds: refresh,
		Summary:        report.Summarize(view),
		Sections:       report.Sections(view),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, page string, data interface{}) {
	t, ok := templates[page]
	if !ok {
		s.logger.Error("template not found", "page", page)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("template error", "page", page, "error", err)
	}
}
