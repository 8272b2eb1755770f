package auth

import "errors"

var (
	// ErrAuthenticationFailed covers bad credentials and rejected refresh tokens alike.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrTokenInvalid is returned for any token that fails verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSigningKey means the configured key material cannot be used.
	ErrSigningKey = errors.New("signing key unavailable")
	// ErrClaimsInvalid means the claims cannot be signed.
	ErrClaimsInvalid = errors.New("invalid claims")
)
