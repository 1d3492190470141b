package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Server is the liveness HTTP endpoint probed by uptime monitoring. It
// runs independently of the bot session and shares no mutable state
// with it.
type Server struct {
	server *http.Server
	port   int
	logger *slog.Logger
}

// NewServer creates a liveness server on the given port
func NewServer(port int, logger *slog.Logger) *Server {
	return &Server{
		port:   port,
		logger: logger.With("component", "api"),
	}
}

// Handler returns the route handler, exposed for tests
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Web server is alive!"))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server and blocks until Stop
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	s.logger.Info("starting HTTP server", "port", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}
