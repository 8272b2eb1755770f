package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/garage-auth/internal/domain"
	apperrors "github.com/spec-kit/garage-auth/pkg/util/errorutil"
)

// Authentication outcomes reported to the OutcomeRecorder.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeRejected      = "rejected"
)

// OutcomeRecorder counts authentication outcomes.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// RequestAuthenticator attaches a principal to requests that carry a valid token.
type RequestAuthenticator struct {
	codec           *TokenCodec
	users           UserStore
	resolver        TokenResolver
	logger          *zap.Logger
	outcomes        OutcomeRecorder
	enforceTokenUse bool
}

// NewRequestAuthenticator constructs the middleware.
// With enforceTokenUse set, only tokens stamped as access tokens authenticate a request.
func NewRequestAuthenticator(codec *TokenCodec, users UserStore, resolver TokenResolver, logger *zap.Logger, outcomes OutcomeRecorder, enforceTokenUse bool) *RequestAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestAuthenticator{
		codec:           codec,
		users:           users,
		resolver:        resolver,
		logger:          logger,
		outcomes:        outcomes,
		enforceTokenUse: enforceTokenUse,
	}
}

// Authenticate verifies token and reloads its subject from the user store.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := a.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	if a.enforceTokenUse && claims.TokenUse != TokenUseAccess {
		return nil, fmt.Errorf("%w: access token required", ErrTokenInvalid)
	}

	user, err := a.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject %q no longer exists", ErrAuthenticationFailed, claims.Subject)
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return domain.NewStoredUserPrincipal(user, claims.ExpiresAt.Time), nil
}

// Handle never rejects on its own; route guards decide whether a principal is required.
func (a *RequestAuthenticator) Handle(c *fiber.Ctx) error {
	token, ok := a.resolver.Resolve(c)
	if !ok {
		clearPrincipal(c)
		a.record(OutcomeAnonymous)
		return c.Next()
	}

	principal, err := a.Authenticate(c.UserContext(), token)
	switch {
	case err == nil:
		setPrincipal(c, principal)
		a.record(OutcomeAuthenticated)
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrAuthenticationFailed):
		a.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		clearPrincipal(c)
		a.record(OutcomeRejected)
	default:
		return apperrors.NewInternalError(err)
	}
	return c.Next()
}

func (a *RequestAuthenticator) record(outcome string) {
	if a.outcomes != nil {
		a.outcomes.RecordAuthOutcome(outcome)
	}
}
