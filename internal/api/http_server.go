// Package api exposes the HTTP surface of the service: the booking
// reconciliation trigger, the scheduler-job updater and the push
// notification endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ridesync/internal/config"
	"ridesync/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type bookingReconciler interface {
	Reconcile(ctx context.Context, bookingID string) error
}

type notificationSender interface {
	Send(ctx context.Context, req models.NotificationRequest) (*models.NotificationResult, error)
}

type jobScheduler interface {
	UpdateJob(ctx context.Context, bookingID, schedule string) error
	DeleteJob(ctx context.Context, bookingID string) error
}

// HTTPServer hosts the trigger endpoints invoked by Cloud Scheduler
// and by the mobile backend.
type HTTPServer struct {
	cfg        config.ServerConfig
	reconciler bookingReconciler
	notifier   notificationSender
	jobs       jobScheduler
	server     *http.Server
	logger     *zerolog.Logger
}

func NewHTTPServer(cfg config.ServerConfig, monitoring config.MonitoringConfig, reconciler bookingReconciler, notifier notificationSender, jobs jobScheduler, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:        cfg,
		reconciler: reconciler,
		notifier:   notifier,
		jobs:       jobs,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/mainFunction", srv.handleMainFunction)
	mux.HandleFunc("/updateSchedulerJob", srv.handleUpdateSchedulerJob)
	mux.HandleFunc("/sendNotificationFunction", srv.handleSendNotification)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	if monitoring.PrometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
