package apperror

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOutOfRange           = errors.New("coordinates out of range")
	ErrIllegalMove          = errors.New("illegal move")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrRoundFinished        = errors.New("round is already finished")
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrSessionNotFound      = errors.New("session not found")
)
