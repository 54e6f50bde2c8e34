package apperror

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is the parent of every rejected game action. The game state is left untouched.
var ErrIllegalMove = errors.New("illegal move")

var (
	ErrGameFinished     = fmt.Errorf("%w: game is already finished", ErrIllegalMove)
	ErrGameIsNotStarted = fmt.Errorf("%w: game is not started", ErrIllegalMove)
	ErrNotYourTurn      = fmt.Errorf("%w: it's not your turn", ErrIllegalMove)
	ErrCellOccupied     = fmt.Errorf("%w: cell is already occupied", ErrIllegalMove)
	ErrOutOfBounds      = fmt.Errorf("%w: cell is out of bounds", ErrIllegalMove)
	ErrGameInProgress   = fmt.Errorf("%w: game is still in progress", ErrIllegalMove)
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrPlayerNotInSession = errors.New("player is not in this session")
	ErrSessionFull        = errors.New("session is full")
	ErrWrongPassword      = errors.New("wrong room password")
	ErrRoomNameTaken      = errors.New("room with this name already exists")
	ErrPlayerNameTaken    = errors.New("player with this name is already in the room")
	ErrNoAvailableMoves   = errors.New("no available moves")
)
