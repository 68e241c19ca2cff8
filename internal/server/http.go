package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avichaydahan/brandlight-reports/auth"
	conf "github.com/avichaydahan/brandlight-reports/config"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	handler "github.com/avichaydahan/brandlight-reports/internal/handler/http"
	"github.com/avichaydahan/brandlight-reports/registry"
	"github.com/avichaydahan/brandlight-reports/registry/consul"
)

type Server struct {
	httpServer *http.Server
	exitChan   chan error
	registry   registry.ServiceRegistrator
}

// BuildServer constructs the HTTP server with routes and middleware. When a
// consul address is configured the service is registered on Start.
func BuildServer(cfg *conf.AppConfig, h *handler.ReportHandler, exitChan chan error) (*Server, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(auth.Middleware)

	router.Post("/generateReport", h.GenerateReport)
	router.Get("/brandlightHealthCheck", h.BrandlightHealthCheck)
	router.Get("/downloadHistory", h.DownloadHistory)

	srv := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute, // report generation runs inside the request
			IdleTimeout:  120 * time.Second,
		},
		exitChan: exitChan,
	}

	if cfg.Consul.Address != "" {
		reg, err := consul.NewConsulRegistry(cfg.Consul)
		if err != nil {
			return nil, errors.Internal(
				err.Error(),
				errors.WithID("server.build.consul_registry.error"),
			)
		}
		srv.registry = reg
	}

	return srv, nil
}

// Start registers and starts the HTTP server
func (s *Server) Start() {
	if s.registry != nil {
		if err := s.registry.Register(); err != nil {
			s.exitChan <- err
			return
		}
	}
	slog.Info("brandlight_reports.server.listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.exitChan <- errors.Internal(
			err.Error(),
			errors.WithID("server.start.serve.error"),
		)
	}
}

// Stop deregisters the service and gracefully stops the HTTP server
func (s *Server) Stop() {
	if s.registry != nil {
		if err := s.registry.Deregister(); err != nil {
			s.exitChan <- err
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("brandlight_reports.server.shutdown_error", slog.String("error", err.Error()))
	}
}
