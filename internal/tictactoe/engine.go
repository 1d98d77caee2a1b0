package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Engine enforces the rules of one session: legal moves, turn order, round
// outcome and the running score. It is not safe for concurrent use; hosts
// must serialize calls.
type Engine struct {
	board       *entity.Board
	turn        entity.TurnState
	outcome     entity.Outcome
	winningLine entity.WinLine
	scores      entity.ScoreBoard
}

// NewEngine - creates a session on a size x size board, ready for Player1's first move.
func NewEngine(size int) (*Engine, error) {
	board, err := entity.NewBoard(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	engine := &Engine{
		board:  board,
		scores: entity.NewScoreBoard(),
	}
	engine.StartNewRound()

	return engine, nil
}

// StartNewRound - clears the board and hands the first move to Player1. Scores are kept.
func (that *Engine) StartNewRound() {
	that.board.Clear()
	that.turn = entity.TurnState{Player: entity.Player1, Move: 1}
	that.outcome = entity.InProgress
	that.winningLine = nil
}

// ResetSession - zeroes the scores and starts a new round.
func (that *Engine) ResetSession() {
	that.scores.Reset()
	that.StartNewRound()
}

// SubmitMove - places the current player's mark at (row, col).
// A rejected move wraps ErrIllegalMove and leaves the engine untouched.
func (that *Engine) SubmitMove(row, col int) (entity.Outcome, error) {
	if err := that.validateMove(row, col); err != nil {
		return that.outcome, fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	mover := that.turn.Player
	if err := that.board.Place(row, col, mover); err != nil {
		return that.outcome, fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	outcome, line := Evaluate(that.board, mover, that.turn.Move)
	that.applyOutcome(outcome, line)

	return outcome, nil
}

// validateMove - checks the move against the round state and the board.
func (that *Engine) validateMove(row, col int) error {
	if that.outcome.IsTerminal() {
		return apperror.ErrRoundFinished
	}

	empty, err := that.board.IsEmpty(row, col)
	if err != nil {
		return err
	}

	if !empty {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, row, col)
	}

	return nil
}

// applyOutcome - finishes the round or passes the turn.
func (that *Engine) applyOutcome(outcome entity.Outcome, line entity.WinLine) {
	that.outcome = outcome

	switch {
	case outcome.IsTerminal():
		if winner, ok := outcome.Winner(); ok {
			that.scores.Win(winner)
			that.winningLine = line
		}
	default:
		that.turn.Move++
		that.turn.Player = that.turn.Player.Opponent()
	}
}

func (that *Engine) Size() int {
	return that.board.Size()
}

// Board - returns a copy of the grid.
func (that *Engine) Board() [][]entity.Cell {
	return that.board.Cells()
}

// BoardText - renders the grid as plain text.
func (that *Engine) BoardText() string {
	return that.board.String()
}

// CurrentPlayer - returns the player to move, or the last mover once the round is finished.
func (that *Engine) CurrentPlayer() entity.Player {
	return that.turn.Player
}

func (that *Engine) Turn() entity.TurnState {
	return that.turn
}

func (that *Engine) Outcome() entity.Outcome {
	return that.outcome
}

func (that *Engine) State() entity.RoundState {
	return entity.StateOf(that.outcome)
}

// Scores - returns a copy of the score board.
func (that *Engine) Scores() entity.ScoreBoard {
	return that.scores.Clone()
}

// WinningLine - returns the line that decided the round, nil unless a player has won.
func (that *Engine) WinningLine() entity.WinLine {
	if that.winningLine == nil {
		return nil
	}

	line := make(entity.WinLine, len(that.winningLine))
	copy(line, that.winningLine)

	return line
}
