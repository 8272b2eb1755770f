package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/garage-auth/internal/domain"
)

const cookiePath = "/"

// CookieConfig names the token cookies and their shared attributes.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	Secure      bool
	SameSite    string
}

// CookieManager writes and clears the token cookies.
type CookieManager struct {
	cfg CookieConfig
	now func() time.Time
}

// NewCookieManager builds a manager; now defaults to time.Now.
func NewCookieManager(cfg CookieConfig, now func() time.Time) *CookieManager {
	if now == nil {
		now = time.Now
	}
	return &CookieManager{cfg: cfg, now: now}
}

// SetTokenCookies attaches both tokens of pair as HttpOnly cookies.
func (m *CookieManager) SetTokenCookies(c *fiber.Ctx, pair domain.TokenPair) {
	c.Cookie(m.cookie(m.cfg.AccessName, pair.AccessToken, pair.AccessExpiresAt))
	c.Cookie(m.cookie(m.cfg.RefreshName, pair.RefreshToken, pair.RefreshExpiresAt))
}

// Logout expires every token cookie present on the request and returns how many it cleared.
// Other cookies are left alone.
func (m *CookieManager) Logout(c *fiber.Ctx) int {
	present := make([]string, 0, 2)
	c.Request().Header.VisitAllCookie(func(key, _ []byte) {
		name := string(key)
		if name == m.cfg.AccessName || name == m.cfg.RefreshName {
			present = append(present, name)
		}
	})

	for _, name := range present {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     cookiePath,
			Domain:   m.cfg.Domain,
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   m.cfg.Secure,
			SameSite: m.sameSite(),
		})
	}
	return len(present)
}

func (m *CookieManager) cookie(name, value string, expiresAt time.Time) *fiber.Cookie {
	maxAge := int(expiresAt.Sub(m.now()) / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath,
		Domain:   m.cfg.Domain,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: m.sameSite(),
	}
}

func (m *CookieManager) sameSite() string {
	switch strings.ToLower(m.cfg.SameSite) {
	case "strict":
		return fiber.CookieSameSiteStrictMode
	case "none":
		return fiber.CookieSameSiteNoneMode
	case "disabled":
		return fiber.CookieSameSiteDisabled
	default:
		return fiber.CookieSameSiteLaxMode
	}
}
