// Command useradd creates a user with a bcrypt-hashed password and an ordered role list.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/config"
	"github.com/spec-kit/garage-auth/internal/domain"
	"github.com/spec-kit/garage-auth/internal/observability"
	"github.com/spec-kit/garage-auth/internal/persistence"
	"github.com/spec-kit/garage-auth/internal/repository"
)

func main() {
	username := flag.String("username", "", "login name (required)")
	password := flag.String("password", "", "plaintext password (required)")
	roles := flag.String("roles", "USER", "comma separated roles, in order")
	email := flag.String("email", "", "optional email")
	fullName := flag.String("name", "", "optional full name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	user, err := buildUser(*username, *password, *roles, *email, *fullName, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("invalid input", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if err := repository.NewUserRepository(pg.PoolHandle()).Create(ctx, user); err != nil {
		logger.Fatal("failed to create user", zap.String("username", user.Username), zap.Error(err))
	}
	logger.Info("user created", zap.String("id", user.ID), zap.String("username", user.Username), zap.Strings("roles", user.Roles))
}

func buildUser(username, password, roles, email, fullName string, cost int) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("-username and -password are required")
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(email),
		FullName:     strings.TrimSpace(fullName),
		Roles:        parseRoles(roles),
	}, nil
}

func parseRoles(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		role := strings.TrimSpace(part)
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
