package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrStaleState        = errors.New("stale state")
	ErrBankrupt          = errors.New("player is bankrupt")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}

func stale(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStaleState, fmt.Sprintf(format, args...))
}

// ErrorCode maps an engine error to the code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, ErrStaleState):
		return "stale_state"
	case errors.Is(err, ErrBankrupt):
		return "bankrupt"
	case errors.Is(err, ErrInvalidAction):
		return "invalid_action"
	default:
		return "internal"
	}
}
