package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/pkg/log"
)

// Server serves the stored ranking over HTTP
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	Store  RankingStore
	server *http.Server
	port   int
}

func NewServer(logger log.Logger, config *cfg.Config, store RankingStore, port int) (*Server, error) {
	if store == nil {
		return nil, errors.New("ui server needs a ranking store")
	}
	return &Server{
		Logger: logger,
		Config: config,
		Store:  store,
		port:   port,
	}, nil
}

// Routes returns the mux with every UI route registered.
func (s *Server) Routes() (*http.ServeMux, error) {
	handler, err := NewHandler(s.Logger, s.Config, s.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create UI handler: %w", err)
	}
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, nil
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	mux, err := s.Routes()
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting UI server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down UI server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
