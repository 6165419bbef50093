package game

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomNotWaiting       = errors.New("room is not accepting players")
	ErrPlayerAlreadyInRoom  = errors.New("player already in room")
	ErrInvalidStateForStart = errors.New("room cannot be started in current state")
	ErrInsufficientPlayers  = errors.New("not enough players to start")
	ErrGameNotInProgress    = errors.New("game not in progress")
	ErrGameNotInitialized   = errors.New("game not properly initialized")
	ErrUnknownMode          = errors.New("unknown game mode")

	ErrAlreadyQueued = errors.New("player already in queue")

	ErrMaxRetriesExceeded    = errors.New("max retry attempts reached")
	ErrUnknownRecoveryAction = errors.New("unknown recovery action")
	ErrRecoveryNotFound      = errors.New("no recovery state for key")
)
