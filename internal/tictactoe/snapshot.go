package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Snapshot - copies the engine state into a serialisable value.
func (that *Engine) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		Size:        that.Size(),
		Board:       that.Board(),
		Turn:        that.turn,
		Outcome:     that.outcome,
		State:       that.State(),
		Scores:      that.Scores(),
		WinningLine: that.WinningLine(),
	}
}

// Restore - rebuilds an engine from a snapshot, rejecting any state the engine
// could not have reached by legal play.
func Restore(snapshot entity.Snapshot) (*Engine, error) {
	board, err := entity.BoardFromCells(snapshot.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}

	if board.Size() != snapshot.Size {
		return nil, fmt.Errorf("%w: size %d does not match a %dx%d board",
			apperror.ErrInvalidConfiguration, snapshot.Size, board.Size(), board.Size())
	}

	if err = validateMarks(board); err != nil {
		return nil, err
	}

	scores := entity.NewScoreBoard()
	for player, wins := range snapshot.Scores {
		if !player.Valid() || wins < 0 {
			return nil, fmt.Errorf("%w: score %d for %s", apperror.ErrInvalidConfiguration, wins, player)
		}
		scores[player] = wins
	}

	engine := &Engine{
		board:  board,
		turn:   snapshot.Turn,
		scores: scores,
	}

	if err = engine.restoreRound(snapshot); err != nil {
		return nil, err
	}

	return engine, nil
}

// restoreRound - recomputes the outcome from the board and checks the snapshot agrees with it.
func (that *Engine) restoreRound(snapshot entity.Snapshot) error {
	placed := that.board.Placed()

	if that.turn.Player != moverOf(that.turn.Move) {
		return fmt.Errorf("%w: %s cannot make move %d", apperror.ErrInvalidConfiguration, that.turn.Player, that.turn.Move)
	}

	if snapshot.Outcome.IsTerminal() {
		if that.turn.Move != placed {
			return fmt.Errorf("%w: finished round at move %d with %d marks",
				apperror.ErrInvalidConfiguration, that.turn.Move, placed)
		}

		outcome, line := Evaluate(that.board, that.turn.Player, that.turn.Move)
		if outcome != snapshot.Outcome {
			return fmt.Errorf("%w: board evaluates to %s, snapshot says %s",
				apperror.ErrInvalidConfiguration, outcome, snapshot.Outcome)
		}

		if _, won := completedLine(that.board, that.turn.Player.Opponent()); won {
			return fmt.Errorf("%w: %s holds a complete line in a round finished by %s",
				apperror.ErrInvalidConfiguration, that.turn.Player.Opponent(), that.turn.Player)
		}

		that.outcome = outcome
		that.winningLine = line

		return nil
	}

	if snapshot.Outcome != entity.InProgress || that.turn.Move != placed+1 || that.board.IsFull() {
		return fmt.Errorf("%w: round in progress at move %d with %d marks",
			apperror.ErrInvalidConfiguration, that.turn.Move, placed)
	}

	for _, player := range entity.Players {
		if _, won := completedLine(that.board, player); won {
			return fmt.Errorf("%w: %s holds a complete line in a round in progress", apperror.ErrInvalidConfiguration, player)
		}
	}

	that.outcome = entity.InProgress

	return nil
}

// validateMarks - Player1 moves first, so it holds either as many marks as Player2 or one more.
func validateMarks(board *entity.Board) error {
	counts := make(map[entity.Player]int, len(entity.Players))
	for _, row := range board.Cells() {
		for _, cell := range row {
			if owner, ok := cell.Owner(); ok {
				counts[owner]++
			}
		}
	}

	diff := counts[entity.Player1] - counts[entity.Player2]
	if diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d marks for player1, %d for player2",
			apperror.ErrInvalidConfiguration, counts[entity.Player1], counts[entity.Player2])
	}

	return nil
}

// moverOf - returns who makes the given 1-indexed move.
func moverOf(move int) entity.Player {
	if move%2 == 1 {
		return entity.Player1
	}

	return entity.Player2
}
