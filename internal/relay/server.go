package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dabini-lab/line-bot/internal/domain"
)

// WebhookParser verifies and decodes one webhook delivery. Implemented
// by the platform client; substituted in tests.
type WebhookParser interface {
	Parse(r *http.Request) ([]domain.InboundEvent, error)
}

// Server is the inbound HTTP surface: the webhook callback plus health
// and optional metrics endpoints.
type Server struct {
	port       int
	path       string
	parser     WebhookParser
	dispatcher *Dispatcher
	metrics    http.Handler // nil when disabled
	logger     *slog.Logger
	server     *http.Server
}

type ServerConfig struct {
	Port       int
	Path       string // webhook path (default: /callback)
	Parser     WebhookParser
	Dispatcher *Dispatcher
	Metrics    http.Handler
	Logger     *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Path == "" {
		cfg.Path = "/callback"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return &Server{
		port:       cfg.Port,
		path:       cfg.Path,
		parser:     cfg.Parser,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("webhook server starting", "port", s.port, "path", s.path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	events, err := s.parser.Parse(r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			s.logger.Warn("webhook signature rejected")
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		s.logger.Error("webhook parse failed", "err", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	results := s.dispatcher.HandleDelivery(r.Context(), events)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(results); err != nil {
		s.logger.Error("write response failed", "err", err)
	}
}
