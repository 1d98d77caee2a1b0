package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Outcome of a round, recomputed after every placed mark.
type Outcome int

const (
	InProgress Outcome = iota
	Player1Wins
	Player2Wins
	Draw
)

var outcomeNames = map[Outcome]string{
	InProgress:  "in_progress",
	Player1Wins: "player1_wins",
	Player2Wins: "player2_wins",
	Draw:        "draw",
}

// WinFor - returns the outcome in which the player wins the round.
func WinFor(player Player) Outcome {
	switch player {
	case Player1:
		return Player1Wins
	case Player2:
		return Player2Wins
	default:
		return InProgress
	}
}

func (that Outcome) IsTerminal() bool {
	return that == Player1Wins || that == Player2Wins || that == Draw
}

// Winner - returns the winning player, false for a draw or a round in progress.
func (that Outcome) Winner() (Player, bool) {
	switch that {
	case Player1Wins:
		return Player1, true
	case Player2Wins:
		return Player2, true
	default:
		return 0, false
	}
}

func (that Outcome) String() string {
	if name, ok := outcomeNames[that]; ok {
		return name
	}

	return fmt.Sprintf("outcome(%d)", int(that))
}

func (that Outcome) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[that]; !ok {
		return nil, fmt.Errorf("%w: outcome %d", apperror.ErrInvalidConfiguration, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*that = outcome
			return nil
		}
	}

	return fmt.Errorf("%w: unknown outcome %q", apperror.ErrInvalidConfiguration, text)
}

// RoundState is the engine's position in the round lifecycle.
type RoundState string

const (
	StateAwaitingMove  RoundState = "awaiting_move"
	StateRoundFinished RoundState = "round_finished"
)

// StateOf - derives the round state from an outcome.
func StateOf(outcome Outcome) RoundState {
	if outcome.IsTerminal() {
		return StateRoundFinished
	}

	return StateAwaitingMove
}

// Snapshot is a self-contained copy of the engine state.
type Snapshot struct {
	Size        int        `json:"size"`
	Board       [][]Cell   `json:"board"`
	Turn        TurnState  `json:"turn"`
	Outcome     Outcome    `json:"outcome"`
	State       RoundState `json:"state"`
	Scores      ScoreBoard `json:"scores"`
	WinningLine WinLine    `json:"winning_line,omitempty"`
}

// Session binds a snapshot to the id a host keeps it under.
type Session struct {
	ID string `json:"id"`
	Snapshot
}

func (that *Session) IsFinished() bool {
	return that.State == StateRoundFinished
}
