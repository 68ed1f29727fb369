package services

import "errors"

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownMission    = errors.New("unknown mission")
	ErrInvalidAnswer     = errors.New("invalid answer")
)
