package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var errRedisDown = errors.New("redis down")

type mockSessionRepo struct {
	mock.Mock
}

func (that *mockSessionRepo) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	args := that.Called(ctx, session)
	return args.Error(0)
}

func (that *mockSessionRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

// memorySessionRepo keeps sessions in a map; callers serialize access.
type memorySessionRepo struct {
	sessions map[string]entity.Session
}

func (that *memorySessionRepo) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.sessions[session.ID] = *session
	return nil
}

func (that *memorySessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	session, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}
	return &session, nil
}

func (that *memorySessionRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.sessions[id]; !ok {
		return apperror.ErrSessionNotFound
	}
	delete(that.sessions, id)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storedSession - builds a session after the given moves, the way the repository would return it.
func storedSession(t *testing.T, id string, moves ...entity.Coord) *entity.Session {
	t.Helper()

	engine, err := tictactoe.NewEngine(3)
	require.NoError(t, err)

	for _, m := range moves {
		_, err = engine.SubmitMove(m.Row, m.Col)
		require.NoError(t, err)
	}

	return &entity.Session{ID: id, Snapshot: engine.Snapshot()}
}

func TestSessionManager_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses the configured size when none is given", func(t *testing.T) {
		// Given: a manager configured for 4x4 boards
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 4)

		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		// When: a session is created without a size
		session, err := manager.CreateSession(ctx, 0)

		// Then: it gets a fresh 4x4 engine and an id
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, 4, session.Size)
		assert.Equal(t, entity.TurnState{Player: entity.Player1, Move: 1}, session.Turn)
		assert.Equal(t, entity.ScoreBoard{entity.Player1: 0, entity.Player2: 0}, session.Scores)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects an invalid size without touching storage", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		session, err := manager.CreateSession(ctx, 2)

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.Nil(t, session)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(errRedisDown).Once()

		session, err := manager.CreateSession(ctx, 3)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})
}

func TestSessionManager_SubmitMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves a legal move", func(t *testing.T) {
		// Given: a stored session with one move played
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "s1").Return(storedSession(t, "s1", entity.Coord{Row: 0, Col: 0}), nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.MatchedBy(func(session *entity.Session) bool {
			return session.ID == "s1" && session.Board[1][1] == entity.CellPlayer2
		})).Return(nil).Once()

		// When: Player2 marks the centre
		session, outcome, err := manager.SubmitMove(ctx, "s1", 1, 1)

		// Then: the updated session is saved and returned
		require.NoError(t, err)
		assert.Equal(t, entity.InProgress, outcome)
		assert.Equal(t, entity.Player1, session.Turn.Player)
		assert.Equal(t, 3, session.Turn.Move)
		repo.AssertExpectations(t)
	})

	t.Run("Illegal move is returned and nothing is saved", func(t *testing.T) {
		// Given: a session where (0,0) is taken
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "s1").Return(storedSession(t, "s1", entity.Coord{Row: 0, Col: 0}), nil).Once()

		// When: Player2 plays (0,0)
		session, _, err := manager.SubmitMove(ctx, "s1", 0, 0)

		// Then: ErrIllegalMove is returned and the repository is not written
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Nil(t, session)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Winning move updates the score", func(t *testing.T) {
		// Given: Player1 needs (0,2) to complete row 0
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		stored := storedSession(t, "s1",
			entity.Coord{Row: 0, Col: 0}, entity.Coord{Row: 1, Col: 0},
			entity.Coord{Row: 0, Col: 1}, entity.Coord{Row: 1, Col: 1},
		)
		repo.On("GetByID", ctx, "s1").Return(stored, nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		// When: Player1 plays it
		session, outcome, err := manager.SubmitMove(ctx, "s1", 0, 2)

		// Then: the round is won and scored
		require.NoError(t, err)
		assert.Equal(t, entity.Player1Wins, outcome)
		assert.True(t, session.IsFinished())
		assert.Equal(t, entity.ScoreBoard{entity.Player1: 1, entity.Player2: 0}, session.Scores)
	})

	t.Run("Unknown session", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrSessionNotFound).Once()

		_, _, err := manager.SubmitMove(ctx, "missing", 0, 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Oversized board is refused", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		session, err := manager.CreateSession(ctx, 3037000500)

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.Nil(t, session)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Corrupted session is refused", func(t *testing.T) {
		// Given: a stored session whose turn was tampered with
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		stored := storedSession(t, "s1", entity.Coord{Row: 0, Col: 0})
		stored.Turn.Player = entity.Player1
		repo.On("GetByID", ctx, "s1").Return(stored, nil).Once()

		// When: a move is submitted
		_, _, err := manager.SubmitMove(ctx, "s1", 1, 1)

		// Then: the restore fails and nothing is saved
		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestSessionManager_GetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored session", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		stored := storedSession(t, "s1", entity.Coord{Row: 0, Col: 0})
		repo.On("GetByID", ctx, "s1").Return(stored, nil).Once()

		session, err := manager.GetSession(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, stored, session)
	})

	t.Run("Corrupted session is refused on read", func(t *testing.T) {
		// Given: a stored session whose turn was tampered with
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		stored := storedSession(t, "s1", entity.Coord{Row: 0, Col: 0})
		stored.Turn.Player = entity.Player1
		repo.On("GetByID", ctx, "s1").Return(stored, nil).Once()

		// When: it is read
		session, err := manager.GetSession(ctx, "s1")

		// Then: it is refused the same way a move on it would be
		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.Nil(t, session)
	})

	t.Run("Unknown session", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrSessionNotFound).Once()

		_, err := manager.GetSession(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionManager_RoundLifecycle(t *testing.T) {
	ctx := context.Background()

	won := func(t *testing.T) *entity.Session {
		return storedSession(t, "s1",
			entity.Coord{Row: 0, Col: 0}, entity.Coord{Row: 1, Col: 0},
			entity.Coord{Row: 0, Col: 1}, entity.Coord{Row: 1, Col: 1},
			entity.Coord{Row: 0, Col: 2},
		)
	}

	t.Run("StartNewRound keeps scores", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "s1").Return(won(t), nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		session, err := manager.StartNewRound(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, entity.StateAwaitingMove, session.State)
		assert.Equal(t, 1, session.Scores.Of(entity.Player1))
		assert.Equal(t, entity.TurnState{Player: entity.Player1, Move: 1}, session.Turn)
	})

	t.Run("ResetSession clears scores", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("GetByID", ctx, "s1").Return(won(t), nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		session, err := manager.ResetSession(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, entity.ScoreBoard{entity.Player1: 0, entity.Player2: 0}, session.Scores)
		assert.Equal(t, entity.InProgress, session.Outcome)
	})

	t.Run("DeleteSession", func(t *testing.T) {
		repo := &mockSessionRepo{}
		manager := NewSessionManager(discardLogger(), repo, 3)

		repo.On("DeleteByID", ctx, "s1").Return(nil).Once()

		require.NoError(t, manager.DeleteSession(ctx, "s1"))
		repo.AssertExpectations(t)
	})
}

func TestSessionManager_SerializesMoves(t *testing.T) {
	ctx := context.Background()

	// Given: a session in an in-memory repository
	repo := &memorySessionRepo{sessions: make(map[string]entity.Session)}
	manager := NewSessionManager(discardLogger(), repo, 3)

	session, err := manager.CreateSession(ctx, 3)
	require.NoError(t, err)

	// When: every cell is submitted concurrently
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := range 9 {
		wg.Add(1)
		go func(row, col int) {
			defer wg.Done()

			if _, _, err := manager.SubmitMove(ctx, session.ID, row, col); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i/3, i%3)
	}
	wg.Wait()

	// Then: exactly the accepted moves are on the board and the turn counter agrees
	stored, err := manager.GetSession(ctx, session.ID)
	require.NoError(t, err)

	marks := 0
	for _, row := range stored.Board {
		for _, cell := range row {
			if cell != entity.CellEmpty {
				marks++
			}
		}
	}
	assert.Equal(t, accepted, marks)

	_, err = tictactoe.Restore(stored.Snapshot)
	require.NoError(t, err)
}
