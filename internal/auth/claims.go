package auth

import (
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/garage-auth/internal/domain"
)

// Token use markers, stamped only when token use enforcement is on.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims is the JWT payload carried by access and refresh tokens.
type Claims struct {
	Roles    []string `json:"roles"`
	TokenUse string   `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) validateForSigning() error {
	if c.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrClaimsInvalid)
	}
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		return fmt.Errorf("%w: iat and exp are required", ErrClaimsInvalid)
	}
	if !c.ExpiresAt.Time.After(c.IssuedAt.Time) {
		return fmt.Errorf("%w: exp must be after iat", ErrClaimsInvalid)
	}
	return nil
}

// Principal builds a claims-only principal without consulting the user store.
func (c *Claims) Principal() *domain.Principal {
	p := &domain.Principal{
		Kind:     domain.PrincipalKindToken,
		Username: c.Subject,
		Roles:    append([]string{}, c.Roles...),
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
