package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 32

type keySet struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

func loadKeys(cfg CodecConfig) (*keySet, error) {
	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = "HS256"
	}

	switch alg {
	case "HS256", "HS384", "HS512":
		if len(cfg.Secret) < minSecretLength {
			return nil, fmt.Errorf("%w: %s secret must be at least %d bytes", ErrSigningKey, alg, minSecretLength)
		}
		secret := []byte(cfg.Secret)
		return &keySet{method: jwt.GetSigningMethod(alg), signKey: secret, verifyKey: secret}, nil
	case "RS256", "RS384", "RS512":
		private, err := parseRSAPrivateKey(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, err
		}
		public := &private.PublicKey
		if strings.TrimSpace(cfg.PublicKeyPEM) != "" {
			configured, err := parseRSAPublicKey(cfg.PublicKeyPEM)
			if err != nil {
				return nil, err
			}
			if !configured.Equal(public) {
				return nil, fmt.Errorf("%w: public key does not match private key", ErrSigningKey)
			}
		}
		return &keySet{method: jwt.GetSigningMethod(alg), signKey: private, verifyKey: public}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrSigningKey, cfg.Algorithm)
	}
}

func parseRSAPrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("%w: rsa private key pem is missing or malformed", ErrSigningKey)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse rsa private key: %v", ErrSigningKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not rsa", ErrSigningKey)
	}
	return key, nil
}

func parseRSAPublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("%w: rsa public key pem is malformed", ErrSigningKey)
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse rsa public key: %v", ErrSigningKey, err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not rsa", ErrSigningKey)
	}
	return key, nil
}
