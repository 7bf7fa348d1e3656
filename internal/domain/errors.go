package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownAchievementID = errors.New("unknown achievement id")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInvalidCatalog       = errors.New("invalid achievement catalog")
)
