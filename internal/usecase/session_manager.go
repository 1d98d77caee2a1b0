package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionManager hosts engines between requests. The engine assumes exclusive
// access, so every load, engine call and save runs under one lock.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	boardSize   int

	mu sync.Mutex
}

// NewSessionManager - boardSize is used for sessions created without an explicit size.
func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, boardSize int) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session_manager"),
		sessionRepo: sessionRepo,
		boardSize:   boardSize,
	}
}

// CreateSession - starts a session with zero scores. A size of 0 picks the configured default.
func (that *SessionManager) CreateSession(ctx context.Context, size int) (*entity.Session, error) {
	log := that.logger.With("method", "CreateSession")

	if size == 0 {
		size = that.boardSize
	}

	engine, err := tictactoe.NewEngine(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.saveSession(ctx, uuid.NewString(), engine)
	if err != nil {
		return nil, err
	}

	log.Info("session created", "session_id", session.ID, "size", size)

	return session, nil
}

// GetSession - returns the session as the engine sees it. A stored state the engine refuses is an error here too.
func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.loadEngine(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.Session{ID: id, Snapshot: engine.Snapshot()}, nil
}

// SubmitMove - plays the current player's mark. An illegal move is returned as is and nothing is saved.
func (that *SessionManager) SubmitMove(ctx context.Context, id string, row, col int) (*entity.Session, entity.Outcome, error) {
	log := that.logger.With("method", "SubmitMove", "session_id", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.loadEngine(ctx, id)
	if err != nil {
		return nil, entity.InProgress, err
	}

	mover := engine.CurrentPlayer()

	outcome, err := engine.SubmitMove(row, col)
	if errors.Is(err, apperror.ErrIllegalMove) {
		log.Debug("move rejected", "player", mover, "mark", mover.Mark(), "row", row, "col", col, "error", err)

		return nil, outcome, err
	}

	if err != nil {
		return nil, outcome, fmt.Errorf("failed to submit move: %w", err)
	}

	session, err := that.saveSession(ctx, id, engine)
	if err != nil {
		return nil, outcome, err
	}

	if outcome.IsTerminal() {
		log.Info("round finished", "outcome", outcome, "scores", session.Scores)
	}

	return session, outcome, nil
}

// StartNewRound - clears the board, keeping scores.
func (that *SessionManager) StartNewRound(ctx context.Context, id string) (*entity.Session, error) {
	return that.update(ctx, id, "StartNewRound", (*tictactoe.Engine).StartNewRound)
}

// ResetSession - zeroes the scores and clears the board.
func (that *SessionManager) ResetSession(ctx context.Context, id string) (*entity.Session, error) {
	return that.update(ctx, id, "ResetSession", (*tictactoe.Engine).ResetSession)
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	log := that.logger.With("method", "DeleteSession")

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Info("session deleted", "session_id", id)

	return nil
}

func (that *SessionManager) update(ctx context.Context, id, method string, apply func(*tictactoe.Engine)) (*entity.Session, error) {
	log := that.logger.With("method", method, "session_id", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.loadEngine(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(engine)

	session, err := that.saveSession(ctx, id, engine)
	if err != nil {
		return nil, err
	}

	log.Debug("session updated")

	return session, nil
}

func (that *SessionManager) loadEngine(ctx context.Context, id string) (*tictactoe.Engine, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	engine, err := tictactoe.Restore(session.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	return engine, nil
}

func (that *SessionManager) saveSession(ctx context.Context, id string, engine *tictactoe.Engine) (*entity.Session, error) {
	session := &entity.Session{
		ID:       id,
		Snapshot: engine.Snapshot(),
	}

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}
