package server

import "net/http"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health & Config
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/config", s.handleConfig)
	mux.HandleFunc("GET /api/v1/rules", s.handleRules)

	// Tickets & views
	mux.HandleFunc("GET /api/v1/tickets", s.handleListTickets)
	mux.HandleFunc("GET /api/v1/tickets/{id}", s.handleGetTicket)
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/sections", s.handleSections)
	mux.HandleFunc("GET /api/v1/facets", s.handleFacets)
	mux.HandleFunc("GET /api/v1/notifications", s.handleListNotifications)

	// Export & archive
	mux.HandleFunc("GET /api/v1/export.xlsx", s.handleExport)
	mux.HandleFunc("GET /api/v1/snapshots", s.handleListSnapshots)
	mux.HandleFunc("GET /api/v1/snapshots/{name}", s.handleGetSnapshot)

	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Server-rendered dashboard
	mux.HandleFunc("GET /{$}", s.handleDashboardPage)
}
