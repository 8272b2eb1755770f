package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/garage-auth/internal/domain"
)

// IssuerConfig holds token lifetimes and the refresh hardening switch.
type IssuerConfig struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	EnforceTokenUse bool
}

// TokenIssuer mints access/refresh pairs.
type TokenIssuer struct {
	codec *TokenCodec
	cfg   IssuerConfig
}

// NewTokenIssuer validates lifetimes and returns an issuer.
func NewTokenIssuer(codec *TokenCodec, cfg IssuerConfig) (*TokenIssuer, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive (access=%s refresh=%s)", cfg.AccessTTL, cfg.RefreshTTL)
	}
	return &TokenIssuer{codec: codec, cfg: cfg}, nil
}

// Issue signs a fresh token pair for username.
func (i *TokenIssuer) Issue(username string, roles []string) (domain.TokenPair, error) {
	now := i.codec.Now()
	accessExp := now.Add(i.cfg.AccessTTL)
	refreshExp := now.Add(i.cfg.RefreshTTL)

	access, err := i.codec.Sign(i.claims(username, roles, now, accessExp, TokenUseAccess))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.codec.Sign(i.claims(username, roles, now, refreshExp, TokenUseRefresh))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		Username:         username,
		AccessToken:      access,
		RefreshToken:     refresh,
		IssuedAt:         now,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh verifies token and issues a new pair for its subject.
// The presented token stays valid until its own expiry.
func (i *TokenIssuer) Refresh(token string) (domain.TokenPair, error) {
	claims, err := i.codec.Verify(token)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	if i.cfg.EnforceTokenUse && claims.TokenUse != TokenUseRefresh {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token required", ErrAuthenticationFailed)
	}
	principal := claims.Principal()
	return i.Issue(principal.Username, principal.Roles)
}

func (i *TokenIssuer) claims(username string, roles []string, iat, exp time.Time, use string) Claims {
	c := Claims{
		Roles: append([]string{}, roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    i.codec.Issuer(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if i.cfg.EnforceTokenUse {
		c.TokenUse = use
	}
	return c
}
