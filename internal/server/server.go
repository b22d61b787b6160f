package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/db"
	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/report"
	s3client "github.com/cm-sla/sla-dashboard/internal/s3"
)

// Config holds the listener address and the settings exposed to clients.
type Config struct {
	Addr         string
	TrackerURL   string // base URL of the project in the work item tracker
	SyncInterval time.Duration
}

// NotificationLister reads the alert dedup records.
type NotificationLister interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
}

type Server struct {
	db      *db.DB
	alerts  NotificationLister
	views   *report.Service
	s3      *s3client.Client
	metrics http.Handler
	cfg     Config
	http    *http.Server
	logger  *slog.Logger
}

// New builds the dashboard server. s3c and metrics may be nil, in which case
// the snapshot archive and /metrics routes report the feature as disabled.
func New(database *db.DB, views *report.Service, s3c *s3client.Client, metrics http.Handler, cfg Config, logger *slog.Logger) *Server {
	s := &Server{db: database, alerts: database, views: views, s3: s3c, metrics: metrics, cfg: cfg, logger: logger}
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      withMiddleware(logger, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// WithNotifications serves the notifications route from l instead of the
// database, for deployments that keep the dedup set in Redis.
func (s *Server) WithNotifications(l NotificationLister) *Server {
	s.alerts = l
	return s
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
