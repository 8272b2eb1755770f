package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/garage-auth/internal/api/dto"
	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/service"
	apperrors "github.com/spec-kit/garage-auth/pkg/util/errorutil"
)

// AuthHandler exposes sign-in, refresh and logout.
type AuthHandler struct {
	auth            *service.AuthService
	cookies         *auth.CookieManager
	refreshResolver auth.TokenResolver
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieManager, refreshResolver auth.TokenResolver) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies, refreshResolver: refreshResolver}
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if problems := req.Validate(); len(problems) > 0 {
		return apperrors.NewValidationError("username and password are required", problems)
	}

	pair, err := h.auth.SignIn(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return err
	}

	h.cookies.SetTokenCookies(c, pair)
	return c.Status(http.StatusOK).JSON(dto.NewTokenResponse(pair))
}

// Refresh handles PUT /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, ok := h.refreshResolver.Resolve(c)
	if !ok {
		return apperrors.NewAuthenticationFailed(nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), token, c.IP())
	if err != nil {
		return err
	}

	h.cookies.SetTokenCookies(c, pair)
	return c.JSON(dto.NewTokenResponse(pair))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	cleared := h.cookies.Logout(c)

	username := ""
	if p, ok := auth.PrincipalFromContext(c.UserContext()); ok {
		username = p.Username
	}
	h.auth.Logout(c.UserContext(), username, c.IP(), cleared)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/v1/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c.UserContext())
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}
