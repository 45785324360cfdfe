package usecase

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMovieNotFound   = errors.New("movie not found")
)
