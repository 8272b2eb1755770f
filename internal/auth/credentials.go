package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/garage-auth/internal/domain"
)

// UserStore resolves stored credentials by username.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// CredentialVerifier checks a username and password against the user store.
type CredentialVerifier struct {
	users     UserStore
	dummyHash string
}

// NewCredentialVerifier builds a verifier hashing its timing decoy at cost.
func NewCredentialVerifier(users UserStore, cost int) (*CredentialVerifier, error) {
	dummy, err := HashPassword("garage-auth-timing-decoy", cost)
	if err != nil {
		return nil, fmt.Errorf("hash decoy password: %w", err)
	}
	return &CredentialVerifier{users: users, dummyHash: dummy}, nil
}

// Verify returns the principal for valid credentials.
// Unknown users and wrong passwords yield the same ErrAuthenticationFailed.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*domain.Principal, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = ComparePassword(v.dummyHash, password)
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrAuthenticationFailed
	}
	return domain.NewStoredUserPrincipal(user, time.Time{}), nil
}
