package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("no active session")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyVoted       = errors.New("already voted")
	ErrRateLimited        = errors.New("too many attempts")
)
