package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServer runs the API handler on an http.Server.
type HTTPServer struct {
	server *http.Server
	logger *slog.Logger
}

// Timeouts for the underlying http.Server.
type Timeouts struct {
	Read, Write, Idle time.Duration
}

func NewHTTPServer(addr string, handler http.Handler, t Timeouts, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  t.Read,
			WriteTimeout: t.Write,
			IdleTimeout:  t.Idle,
		},
		logger: logger,
	}
}

// Start serves in the background. Listener errors are sent on the returned
// channel.
func (hs *HTTPServer) Start() <-chan error {
	errc := make(chan error, 1)
	go func() {
		hs.logger.Info("http_listen", "addr", hs.server.Addr)
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.logger.Error("http_server_error", "error", err)
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Stop shuts down gracefully within timeout.
func (hs *HTTPServer) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := hs.server.Shutdown(ctx); err != nil {
		hs.logger.Error("http_shutdown_error", "error", err)
		return err
	}
	hs.logger.Info("http_stopped")
	return nil
}
