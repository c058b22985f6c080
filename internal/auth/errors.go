package auth

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// ErrInvalidTokenPayload is a verified token that does not name a subject.
	ErrInvalidTokenPayload = fmt.Errorf("%w: missing subject", ErrInvalidToken)
)
