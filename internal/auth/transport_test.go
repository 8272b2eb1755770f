package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveVia(t *testing.T, resolver TokenResolver, req *http.Request) string {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, ok := resolver.Resolve(c)
		if !ok {
			return c.SendString("<none>")
		}
		return c.SendString("[" + token + "]")
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestResolverPrefersHeaderOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "access", Value: "cookie-token"})

	assert.Equal(t, "[header-token]", resolveVia(t, NewTokenResolver("", "access"), req))
}

func TestResolverFallsBackToCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "cookie-token"})

	assert.Equal(t, "[cookie-token]", resolveVia(t, NewTokenResolver("", "access"), req))
}

func TestResolverIgnoresOtherSchemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic YWxpY2U6c2VjcmV0")
	req.AddCookie(&http.Cookie{Name: "access", Value: "cookie-token"})
	assert.Equal(t, "[cookie-token]", resolveVia(t, NewTokenResolver("", "access"), req))

	lower := httptest.NewRequest(http.MethodGet, "/", nil)
	lower.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "<none>", resolveVia(t, NewTokenResolver("", "access"), lower))
}

func TestResolverFindsNothing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "unrelated", Value: "x"})

	assert.Equal(t, "<none>", resolveVia(t, NewTokenResolver("", "access"), req))
}

func TestResolverUsesConfiguredCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "access-token"})
	req.AddCookie(&http.Cookie{Name: "refresh", Value: "refresh-token"})

	assert.Equal(t, "[refresh-token]", resolveVia(t, NewTokenResolver("", "refresh"), req))
}

func TestResolverCustomPrefix(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	assert.Equal(t, "[abc]", resolveVia(t, NewTokenResolver("Token ", ""), req))
}
