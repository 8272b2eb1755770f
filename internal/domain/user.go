package domain

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by the user store when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// User is a stored credential with its granted permissions.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
