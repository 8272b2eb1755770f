package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/config"
	"github.com/spec-kit/garage-auth/internal/domain"
	"github.com/spec-kit/garage-auth/internal/events"
	"github.com/spec-kit/garage-auth/internal/ratelimit"
	apperrors "github.com/spec-kit/garage-auth/pkg/util/errorutil"
)

// AuthService coordinates sign-in, refresh and logout.
type AuthService struct {
	codec      *auth.TokenCodec
	verifier   *auth.CredentialVerifier
	issuer     *auth.TokenIssuer
	limiter    *ratelimit.LoginLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Users      auth.UserStore
	Limiter    *ratelimit.LoginLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewAuthService builds the service, failing when key material or lifetimes are unusable.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	accessTTL, err := auth.ParseTTL(cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("access token ttl: %w", err)
	}
	refreshTTL, err := auth.ParseTTL(cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}

	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Algorithm:     cfg.Auth.SigningAlgorithm,
		Secret:        cfg.Auth.JWTSecret,
		PrivateKeyPEM: cfg.Auth.RSAPrivateKeyPEM,
		PublicKeyPEM:  cfg.Auth.RSAPublicKeyPEM,
		Issuer:        cfg.Auth.Issuer,
		Now:           deps.Now,
	})
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(codec, auth.IssuerConfig{
		AccessTTL:       accessTTL,
		RefreshTTL:      refreshTTL,
		EnforceTokenUse: cfg.Auth.EnforceTokenUse,
	})
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewCredentialVerifier(deps.Users, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		codec:      codec,
		verifier:   verifier,
		issuer:     issuer,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}, nil
}

// Codec exposes the token codec for the request authenticator.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

// SignIn checks credentials and issues a token pair.
func (s *AuthService) SignIn(ctx context.Context, username, password, clientIP string) (domain.TokenPair, error) {
	if retryAfter, err := s.limiter.Allow(ctx, username); err != nil {
		s.publish(ctx, events.NewEvent(events.EventLoginThrottled, username, clientIP, nil))
		return domain.TokenPair{}, apperrors.NewTooManyRequests(err.Error(), int(retryAfter.Seconds()))
	}

	principal, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			s.limiter.RecordFailure(ctx, username)
			s.publish(ctx, events.NewEvent(events.EventLoginFailed, username, clientIP,
				events.LoginFailedPayload{Reason: "bad_credentials"}))
			return domain.TokenPair{}, apperrors.NewAuthenticationFailed(err)
		}
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	s.limiter.Reset(ctx, username)

	pair, err := s.issuer.Issue(principal.Username, principal.Roles)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, pair.Username, clientIP, tokensIssued(pair)))
	return pair, nil
}

// Refresh exchanges a still-valid token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, token, clientIP string) (domain.TokenPair, error) {
	pair, err := s.issuer.Refresh(token)
	if err != nil {
		s.publish(ctx, events.NewEvent(events.EventRefreshRejected, "", clientIP,
			events.LoginFailedPayload{Reason: err.Error()}))
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			return domain.TokenPair{}, apperrors.NewAuthenticationFailed(err)
		}
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTokensRefreshed, pair.Username, clientIP, tokensIssued(pair)))
	return pair, nil
}

// Logout records a logout; tokens stay valid until expiry since nothing is stored server-side.
func (s *AuthService) Logout(ctx context.Context, username, clientIP string, clearedCookies int) {
	s.publish(ctx, events.NewEvent(events.EventLoggedOut, username, clientIP,
		events.LoggedOutPayload{ClearedCookies: clearedCookies}))
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func tokensIssued(pair domain.TokenPair) events.TokensIssuedPayload {
	return events.TokensIssuedPayload{
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
