// Package apperrors holds the outcome taxonomy shared by the session
// lifecycle, the leaderboard store and the transports.
package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("session already running")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyJoined = errors.New("already joined")
	ErrForbidden     = errors.New("forbidden")
)
