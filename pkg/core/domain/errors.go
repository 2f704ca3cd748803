package domain

import "errors"

var (
	ErrIndexOutOfRange = errors.New("link position out of range")
	ErrUnknownField    = errors.New("unknown link field")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidEmail    = errors.New("invalid email address")
)
