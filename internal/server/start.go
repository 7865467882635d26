package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server and the activity subscriber until an interrupt
// or termination signal arrives, then shuts everything down gracefully.
func (s *Server) Start() {
	subCtx, cancelSub := context.WithCancel(context.Background())
	s.activitySub.Start(subCtx)
	s.presence.Start(subCtx)

	go func() {
		slog.Info("Starting server", "addr", s.Cfg.BindAddr)
		if err := s.E.Start(s.Cfg.BindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.E.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	cancelSub()
	if err := s.bridge.Close(); err != nil {
		slog.Error("Message bridge close failed", "error", err)
	}

	if err := s.DB.Close(ctx); err != nil {
		slog.Error("Database close failed", "error", err)
	}

	slog.Info("Server stopped")
}
