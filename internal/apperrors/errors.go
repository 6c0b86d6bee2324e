package apperrors

import "errors"

// Shared errors surfaced across the registry and handlers. Player-facing
// failures degrade to a reply on the wire; none of these terminate anything.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameFull     = errors.New("game is full")
)
