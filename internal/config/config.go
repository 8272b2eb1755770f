package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Cookie    CookieConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token signing and credential parameters.
type AuthConfig struct {
	SigningAlgorithm string
	JWTSecret        string
	RSAPrivateKeyPEM string
	RSAPublicKeyPEM  string
	Issuer           string
	AccessTokenTTL   string
	RefreshTokenTTL  string
	HeaderPrefix     string
	EnforceTokenUse  bool
	BcryptCost       int
}

// CookieConfig controls the cookie transport for tokens.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	Secure      bool
	SameSite    string
}

// RateLimitConfig throttles repeated failed sign-ins per username.
type RateLimitConfig struct {
	MaxFailures   int
	WindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	privateKey, err := getEnvOrFile("AUTH_RSA_PRIVATE_KEY", "AUTH_RSA_PRIVATE_KEY_FILE")
	if err != nil {
		return nil, err
	}
	publicKey, err := getEnvOrFile("AUTH_RSA_PUBLIC_KEY", "AUTH_RSA_PUBLIC_KEY_FILE")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "garage-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SigningAlgorithm: strings.ToUpper(getEnv("AUTH_SIGNING_ALG", "HS256")),
			JWTSecret:        os.Getenv("AUTH_JWT_SECRET"),
			RSAPrivateKeyPEM: privateKey,
			RSAPublicKeyPEM:  publicKey,
			Issuer:           getEnv("AUTH_ISSUER", "garage-auth"),
			AccessTokenTTL:   getEnv("AUTH_ACCESS_TOKEN_TTL", "1 day"),
			RefreshTokenTTL:  getEnv("AUTH_REFRESH_TOKEN_TTL", "1 day"),
			// the prefix keeps its trailing space, so no TrimSpace here
			HeaderPrefix:    getEnvRaw("AUTH_HEADER_PREFIX", "Bearer "),
			EnforceTokenUse: getEnvAsBool("AUTH_ENFORCE_TOKEN_USE", false),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Cookie: CookieConfig{
			AccessName:  getEnv("AUTH_ACCESS_COOKIE_NAME", "garage_relation_access_token"),
			RefreshName: getEnv("AUTH_REFRESH_COOKIE_NAME", "garage_relation_refresh_token"),
			Domain:      os.Getenv("AUTH_COOKIE_DOMAIN"),
			Secure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
			SameSite:    getEnv("AUTH_COOKIE_SAMESITE", "Lax"),
		},
		RateLimit: RateLimitConfig{
			MaxFailures:   getEnvAsInt("AUTH_LOGIN_MAX_FAILURES", 5),
			WindowSeconds: getEnvAsInt("AUTH_LOGIN_FAILURE_WINDOW_SECONDS", 900),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Window returns the failure counting window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return 0
	}
	return time.Duration(r.WindowSeconds) * time.Second
}

// Enabled reports whether failed sign-ins are throttled.
func (r RateLimitConfig) Enabled() bool {
	return r.MaxFailures > 0 && r.WindowSeconds > 0
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvRaw(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvOrFile returns the inline value of key, or the contents of the file named by fileKey.
func getEnvOrFile(key, fileKey string) (string, error) {
	if val := os.Getenv(key); val != "" {
		return val, nil
	}
	path := os.Getenv(fileKey)
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", fileKey, err)
	}
	return string(content), nil
}
