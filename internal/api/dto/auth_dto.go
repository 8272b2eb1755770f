package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/garage-auth/internal/domain"
)

// SignInRequest payload for POST /auth/signin.
type SignInRequest struct {
	Username string `json:"username" xml:"username" form:"username"`
	Password string `json:"password" xml:"password" form:"password"`
}

// Validate reports blank fields keyed by name.
func (r SignInRequest) Validate() map[string]any {
	problems := map[string]any{}
	if strings.TrimSpace(r.Username) == "" {
		problems["username"] = "must not be blank"
	}
	if strings.TrimSpace(r.Password) == "" {
		problems["password"] = "must not be blank"
	}
	return problems
}

// TokenResponse is returned by sign-in and refresh.
type TokenResponse struct {
	Username      string    `json:"username"`
	Authenticated bool      `json:"authenticated"`
	Created       time.Time `json:"created"`
	Expiration    time.Time `json:"expiration"`
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token"`
}

// NewTokenResponse renders pair.
func NewTokenResponse(pair domain.TokenPair) TokenResponse {
	return TokenResponse{
		Username:      pair.Username,
		Authenticated: true,
		Created:       pair.IssuedAt,
		Expiration:    pair.AccessExpiresAt,
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
	}
}

// PrincipalResponse describes the caller for GET /api/v1/me.
type PrincipalResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPrincipalResponse renders p.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return PrincipalResponse{
		ID:        p.UserID,
		Username:  p.Username,
		Roles:     roles,
		Kind:      string(p.Kind),
		ExpiresAt: p.ExpiresAt,
	}
}
