package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Game errors
	ErrGameNotFound = errors.New("game not found")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
