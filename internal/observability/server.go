package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/ecosentinel-go/internal/logging"
)

// Server exposes the metrics registry over HTTP.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer creates a metrics server listening on addr.
func NewServer(addr string, metrics *Metrics) *Server {
	log := logging.ForService("observability")
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start serves until Shutdown is called. It returns nil on graceful close.
func (s *Server) Start() error {
	s.log.Info("metrics endpoint listening", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight scrapes up to the context
// deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
