package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/garage-auth/internal/api/dto"
	"github.com/spec-kit/garage-auth/internal/api/http/handlers"
	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/config"
	"github.com/spec-kit/garage-auth/internal/domain"
	"github.com/spec-kit/garage-auth/internal/observability"
	"github.com/spec-kit/garage-auth/internal/service"
)

const (
	accessCookie  = "garage_relation_access_token"
	refreshCookie = "garage_relation_refresh_token"
)

type memoryUsers map[string]*domain.User

func (m memoryUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := auth.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	users := memoryUsers{"alice": {ID: "u-1", Username: "alice", PasswordHash: hash, Roles: []string{"USER"}}}

	cfg := config.Config{
		Auth: config.AuthConfig{
			SigningAlgorithm: "HS256",
			JWTSecret:        strings.Repeat("k", 32),
			Issuer:           "garage-auth",
			AccessTokenTTL:   "1 day",
			RefreshTokenTTL:  "1 day",
			HeaderPrefix:     "Bearer ",
			BcryptCost:       bcrypt.MinCost,
		},
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics("test")
	authService, err := service.NewAuthService(cfg, service.AuthDependencies{Users: users, Logger: logger})
	require.NoError(t, err)

	cookies := auth.NewCookieManager(auth.CookieConfig{AccessName: accessCookie, RefreshName: refreshCookie}, nil)
	authenticator := auth.NewRequestAuthenticator(authService.Codec(), users,
		auth.NewTokenResolver(cfg.Auth.HeaderPrefix, accessCookie), logger, metrics, cfg.Auth.EnforceTokenUse)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("garage-auth", "test", map[string]handlers.Pinger{
			"postgres": pingFunc(func(context.Context) error { return nil }),
		}),
		Auth:          handlers.NewAuthHandler(authService, cookies, auth.NewTokenResolver(cfg.Auth.HeaderPrefix, refreshCookie)),
		Authenticator: authenticator,
		Metrics:       metrics,
	})
	return app
}

func do(t *testing.T, app *fiber.App, req *stdhttp.Request) (*stdhttp.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func signIn(t *testing.T, app *fiber.App, username, password string) (*stdhttp.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(dto.SignInRequest{Username: username, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/signin", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Error.Code
}

func TestSignInThenAccessProtectedRoute(t *testing.T) {
	app := newTestApp(t)

	resp, body := signIn(t, app, "alice", "secret123")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(body))

	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(body, &tokens))
	assert.Equal(t, "alice", tokens.Username)
	assert.True(t, tokens.Authenticated)
	assert.Equal(t, 24*time.Hour, tokens.Expiration.Sub(tokens.Created))
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	cookies := map[string]*stdhttp.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, accessCookie)
	require.Contains(t, cookies, refreshCookie)
	assert.Equal(t, tokens.AccessToken, cookies[accessCookie].Value)
	assert.True(t, cookies[accessCookie].HttpOnly)

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	resp, body = do(t, app, req)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(body))

	var me struct {
		Data dto.PrincipalResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "alice", me.Data.Username)
	assert.Equal(t, []string{"USER"}, me.Data.Roles)
	assert.Equal(t, "stored_user", me.Data.Kind)

	cookieReq := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/me", nil)
	cookieReq.AddCookie(&stdhttp.Cookie{Name: accessCookie, Value: tokens.AccessToken})
	resp, _ = do(t, app, cookieReq)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	resp, wrongBody := signIn(t, app, "alice", "wrong")
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTHENTICATION_FAILED", errorCode(t, wrongBody))

	resp, unknownBody := signIn(t, app, "nobody", "secret123")
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
}

func TestSignInValidatesPayload(t *testing.T) {
	app := newTestApp(t)

	resp, body := signIn(t, app, "alice", "   ")
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	form := url.Values{"username": {"alice"}, "password": {"secret123"}}
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ = do(t, app, req)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/me", nil))
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, _ = do(t, app, req)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshWithHeaderAndCookie(t *testing.T) {
	app := newTestApp(t)
	_, body := signIn(t, app, "alice", "secret123")
	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(body, &tokens))

	req := httptest.NewRequest(stdhttp.MethodPut, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.RefreshToken)
	resp, body := do(t, app, req)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(body))

	var refreshed dto.TokenResponse
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.Equal(t, "alice", refreshed.Username)

	cookieReq := httptest.NewRequest(stdhttp.MethodPut, "/auth/refresh", nil)
	cookieReq.AddCookie(&stdhttp.Cookie{Name: refreshCookie, Value: tokens.RefreshToken})
	resp, _ = do(t, app, cookieReq)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	accessReq := httptest.NewRequest(stdhttp.MethodPut, "/auth/refresh", nil)
	accessReq.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	resp, _ = do(t, app, accessReq)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestRefreshRejectsMissingOrInvalidToken(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, httptest.NewRequest(stdhttp.MethodPut, "/auth/refresh", nil))
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTHENTICATION_FAILED", errorCode(t, body))

	req := httptest.NewRequest(stdhttp.MethodPut, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, _ = do(t, app, req)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutClearsCookies(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/logout", nil)
	req.AddCookie(&stdhttp.Cookie{Name: accessCookie, Value: "x"})
	req.AddCookie(&stdhttp.Cookie{Name: refreshCookie, Value: "y"})
	resp, body := do(t, app, req)

	assert.Equal(t, stdhttp.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)
	cleared := resp.Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, "/", c.Path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, httptest.NewRequest(stdhttp.MethodGet, "/health/live", nil))
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(stdhttp.MethodGet, "/health/ready", nil))
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	signIn(t, app, "alice", "wrong")
	resp, body := do(t, app, httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil))
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_http_errors_total")
	assert.Contains(t, string(body), "test_auth_outcomes_total")
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	h := handlers.NewHealthHandler("garage-auth", "test", map[string]handlers.Pinger{
		"redis": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	app := fiber.New()
	app.Get("/ready", h.Ready)

	resp, body := do(t, app, httptest.NewRequest(stdhttp.MethodGet, "/ready", nil))
	assert.Equal(t, stdhttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(t, body))
}
