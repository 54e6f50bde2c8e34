package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

type uGame interface {
	GetState(ctx context.Context, sessionID string) (*entity.GameState, error)
	ListRooms(ctx context.Context) ([]entity.RoomInfo, error)
}

// NewRouter wires the read-only HTTP API.
func NewRouter(logger *slog.Logger, uGame uGame) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	ping := NewPingHandler()
	rooms := newRoomHandler(logger, uGame)

	r.Get("/ping", ping.PingHandler)
	r.Get("/rooms", rooms.list)
	r.Get("/games/{id}", rooms.state)

	return r
}

// Start - starts the HTTP server and stops it when ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
