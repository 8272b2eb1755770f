package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/garage-auth/internal/domain"
)

type principalCtxKey struct{}

const principalKey = "auth_principal"

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*domain.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

// PrincipalFromFiber reads the principal stored by the request authenticator.
func PrincipalFromFiber(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

func setPrincipal(c *fiber.Ctx, principal *domain.Principal) {
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
}

func clearPrincipal(c *fiber.Ctx) {
	c.Locals(principalKey, nil)
	c.SetUserContext(WithPrincipal(c.UserContext(), nil))
}
