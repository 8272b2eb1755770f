package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultHeaderPrefix is the Authorization scheme accepted by default.
const DefaultHeaderPrefix = "Bearer "

// TokenResolver finds a raw token on a request, preferring the Authorization header over a cookie.
type TokenResolver struct {
	HeaderPrefix string
	CookieName   string
}

// NewTokenResolver returns a resolver reading cookieName as the fallback.
func NewTokenResolver(headerPrefix, cookieName string) TokenResolver {
	if headerPrefix == "" {
		headerPrefix = DefaultHeaderPrefix
	}
	return TokenResolver{HeaderPrefix: headerPrefix, CookieName: cookieName}
}

// Resolve returns the token and whether one was found.
func (r TokenResolver) Resolve(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, r.HeaderPrefix) {
		return header[len(r.HeaderPrefix):], true
	}
	if r.CookieName == "" {
		return "", false
	}
	if value := c.Cookies(r.CookieName); value != "" {
		return value, true
	}
	return "", false
}
