package domain

import "time"

// TokenPair is the result of a successful sign-in or refresh.
type TokenPair struct {
	Username         string
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
