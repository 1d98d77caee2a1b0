package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Player identifies one of the two sides of a session.
type Player int

const (
	Player1 Player = iota + 1
	Player2
)

const (
	MarkPlayer1 = "X"
	MarkPlayer2 = "O"
	MarkEmpty   = ""
)

// Players lists both sides in turn order.
var Players = [...]Player{Player1, Player2}

func (that Player) Valid() bool {
	return that == Player1 || that == Player2
}

// Opponent - returns the other side. An invalid player stays invalid.
func (that Player) Opponent() Player {
	switch that {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return that
	}
}

// Mark - returns the symbol the player places on the board.
func (that Player) Mark() string {
	return CellOf(that).String()
}

func (that Player) String() string {
	switch that {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", int(that))
	}
}

func (that Player) MarshalText() ([]byte, error) {
	if !that.Valid() {
		return nil, fmt.Errorf("%w: %d", apperror.ErrUnknownPlayer, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player1":
		*that = Player1
	case "player2":
		*that = Player2
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, text)
	}

	return nil
}

// Cell is the state of a single board square. Cells are compared by identity,
// never by any numeric value.
type Cell int

const (
	CellEmpty Cell = iota
	CellPlayer1
	CellPlayer2
)

// CellOf - returns the cell a player's mark occupies.
func CellOf(player Player) Cell {
	switch player {
	case Player1:
		return CellPlayer1
	case Player2:
		return CellPlayer2
	default:
		return CellEmpty
	}
}

// Owner - returns the player holding the cell, false for an empty cell.
func (that Cell) Owner() (Player, bool) {
	switch that {
	case CellPlayer1:
		return Player1, true
	case CellPlayer2:
		return Player2, true
	default:
		return 0, false
	}
}

func (that Cell) Valid() bool {
	return that == CellEmpty || that == CellPlayer1 || that == CellPlayer2
}

func (that Cell) String() string {
	switch that {
	case CellPlayer1:
		return MarkPlayer1
	case CellPlayer2:
		return MarkPlayer2
	default:
		return MarkEmpty
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	if !that.Valid() {
		return nil, fmt.Errorf("%w: cell value %d", apperror.ErrInvalidConfiguration, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case MarkEmpty:
		*that = CellEmpty
	case MarkPlayer1:
		*that = CellPlayer1
	case MarkPlayer2:
		*that = CellPlayer2
	default:
		return fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidConfiguration, text)
	}

	return nil
}

// TurnState tracks whose move it is and the 1-indexed number of that move.
type TurnState struct {
	Player Player `json:"player"`
	Move   int    `json:"move"`
}

// ScoreBoard counts round wins per player. Draws are not scored.
type ScoreBoard map[Player]int

func NewScoreBoard() ScoreBoard {
	scores := make(ScoreBoard, len(Players))
	scores.Reset()

	return scores
}

// Win - credits one round win to the player.
func (that ScoreBoard) Win(player Player) {
	that[player]++
}

func (that ScoreBoard) Of(player Player) int {
	return that[player]
}

// Reset - zeroes every player's count.
func (that ScoreBoard) Reset() {
	for _, player := range Players {
		that[player] = 0
	}
}

func (that ScoreBoard) Clone() ScoreBoard {
	scores := make(ScoreBoard, len(that))
	for player, wins := range that {
		scores[player] = wins
	}

	return scores
}
