package model

import "errors"

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrGameNotJoinable  = errors.New("game is not accepting joins")
	ErrGameFull         = errors.New("game is full")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotHost          = errors.New("player is not the host")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Identity errors
	ErrIdentityNotFound = errors.New("identity not found")

	// Store transaction errors
	ErrVersionConflict  = errors.New("record changed since read")
	ErrContention       = errors.New("transaction retry budget exhausted")
	ErrStoreUnavailable = errors.New("session store unavailable")
)
