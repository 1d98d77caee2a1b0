package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sessionUseCase interface {
	CreateSession(ctx context.Context, size int) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	SubmitMove(ctx context.Context, id string, row, col int) (*entity.Session, entity.Outcome, error)
	StartNewRound(ctx context.Context, id string) (*entity.Session, error)
	ResetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type createSessionRequest struct {
	Size int `json:"size"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func newHandlers(logger *slog.Logger, sessions sessionUseCase) *handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	session, err := that.sessions.CreateSession(r.Context(), req.Size)
	if err != nil {
		that.writeError(w, "CreateSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, session)
}

func (that *handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

// GetBoardText - plain-text rendering of the board for scenario checks.
func (that *handlers) GetBoardText(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetBoardText", err)
		return
	}

	board, err := entity.BoardFromCells(session.Board)
	if err != nil {
		that.writeError(w, "GetBoardText", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write([]byte(board.String())); err != nil {
		that.logger.Error("failed to write response", "method", "GetBoardText", "error", err)
	}
}

func (that *handlers) SubmitMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	session, _, err := that.sessions.SubmitMove(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Col)
	if err != nil {
		that.writeError(w, "SubmitMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) StartNewRound(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.StartNewRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "StartNewRound", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.ResetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "ResetSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "DeleteSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statusFor - maps an error to its HTTP status. Out of range is checked before
// illegal move because an out-of-range move wraps both.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrOutOfRange), errors.Is(err, apperror.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrIllegalMove):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
