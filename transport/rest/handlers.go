package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
)

type roomHandler struct {
	logger *slog.Logger
	uGame  uGame
}

func newRoomHandler(logger *slog.Logger, uGame uGame) *roomHandler {
	return &roomHandler{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
	}
}

func (that *roomHandler) list(w http.ResponseWriter, r *http.Request) {
	rooms, err := that.uGame.ListRooms(r.Context())
	if err != nil {
		that.fail(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (that *roomHandler) state(w http.ResponseWriter, r *http.Request) {
	state, err := that.uGame.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.fail(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"game": state})
}

func (that *roomHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.writeJSON(w, http.StatusNotFound, map[string]string{"error": apperror.ErrSessionNotFound.Error()})
		return
	}

	that.logger.Error("request failed", "path", r.URL.Path, "requestID", middleware.GetReqID(r.Context()), "error", err)
	that.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func (that *roomHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
