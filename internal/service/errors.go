package service

import (
	"errors"

	"teamplay/internal/game"
)

// Named errors raised by room-manager operations. The connection layer
// maps them to error events with a code; they never close the connection.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrAlreadyInRoom       = errors.New("already in a room")
	ErrRoomFull            = errors.New("room is full")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrGameNotActive       = errors.New("no active game")
	ErrNotHost             = errors.New("only the host may do this")
	ErrNotInRoom           = errors.New("player is not in a room")
	ErrInsufficientPlayers = errors.New("not enough connected players")
)

// ErrorCode maps a room-manager error to the machine code sent on the
// wire. Unknown errors are reported as internal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, ErrGameNotActive):
		return "game_not_active"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrInsufficientPlayers):
		return "insufficient_players"
	default:
		return "internal"
	}
}
