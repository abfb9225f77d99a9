package cinemaapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server serves an App on a TCP listener.
type Server struct {
	// URL is the root URL of the listener, e.g. http://127.0.0.1:43121
	URL string

	listener net.Listener
	server   *http.Server
	logger   *slog.Logger
}

// Listen binds addr. Use "127.0.0.1:0" for a random free port.
func Listen(addr string, handler http.Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &Server{
		URL:      "http://" + l.Addr().String(),
		listener: l,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Serve blocks until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Info("Serving cinema application", slog.String("url", s.URL))
	err := s.server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
