package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// Evaluate - decides the round after the mover placed mark number moveNumber.
// Every win line is scanned and a line counts only if each of its cells holds
// the mover's cell. The first such line wins and is returned. With no winning
// line the round is a draw once moveNumber reaches size², otherwise it goes on.
func Evaluate(board *entity.Board, mover entity.Player, moveNumber int) (entity.Outcome, entity.WinLine) {
	if line, ok := completedLine(board, mover); ok {
		return entity.WinFor(mover), line
	}

	if moveNumber == board.Size()*board.Size() {
		return entity.Draw, nil
	}

	return entity.InProgress, nil
}

func completedLine(board *entity.Board, player entity.Player) (entity.WinLine, bool) {
	mark := entity.CellOf(player)

	for _, line := range board.Lines() {
		if ownsLine(board, line, mark) {
			return line, true
		}
	}

	return nil, false
}

func ownsLine(board *entity.Board, line entity.WinLine, mark entity.Cell) bool {
	for _, coord := range line {
		cell, err := board.At(coord.Row, coord.Col)
		if err != nil || cell != mark {
			return false
		}
	}

	return true
}
