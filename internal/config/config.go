package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      []byte
	TokenTTL       time.Duration
	CORSOrigins    []string
	Debug          bool
	MigrateOnStart bool
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads the environment (and a .env file, if present)
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
		Debug:          parseBool(os.Getenv("DEBUG"), false),
		MigrateOnStart: parseBool(os.Getenv("MIGRATE_ON_START"), true),
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = BuildDSN(
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			getenv("DB_SSLMODE", "disable"),
		)
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	if len(cfg.JWTSecret) == 0 {
		if !cfg.Debug {
			return nil, ErrMissingSecret
		}
		cfg.JWTSecret = []byte("dev-secret")
	}

	return cfg, nil
}

// BuildDSN assembles a postgres URL usable by both gorm and golang-migrate
func BuildDSN(host, port, user, password, name, sslmode string) string {
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
