package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// CodecConfig selects the signing algorithm and key material.
type CodecConfig struct {
	Algorithm     string
	Secret        string
	PrivateKeyPEM string
	PublicKeyPEM  string
	Issuer        string
	Now           func() time.Time
}

// TokenCodec signs and verifies JWTs with a fixed key set.
type TokenCodec struct {
	keys   *keySet
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec loads the key material once and fails if it is unusable.
func NewTokenCodec(cfg CodecConfig) (*TokenCodec, error) {
	keys, err := loadKeys(cfg)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{keys.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
		jwt.WithStrictDecoding(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &TokenCodec{
		keys:   keys,
		issuer: cfg.Issuer,
		now:    now,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Algorithm returns the configured JWS algorithm name.
func (tc *TokenCodec) Algorithm() string {
	return tc.keys.method.Alg()
}

// Issuer returns the iss value stamped on signed tokens.
func (tc *TokenCodec) Issuer() string {
	return tc.issuer
}

// Now returns the codec clock truncated to whole seconds.
func (tc *TokenCodec) Now() time.Time {
	return tc.now().Truncate(time.Second)
}

// Sign serializes claims into a compact JWS.
func (tc *TokenCodec) Sign(claims Claims) (string, error) {
	if err := claims.validateForSigning(); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(tc.keys.method, &claims)
	signed, err := token.SignedString(tc.keys.signKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningKey, err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and issuer, returning the claims.
func (tc *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	claims := &Claims{}
	parsed, err := tc.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tc.keys.verifyKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: token not valid", ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}
