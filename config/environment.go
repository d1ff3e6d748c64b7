package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLength = 32

type Environment struct {
	IsDevelopment bool
	Port          string

	DBDriver     string
	DBURL        string
	GormLogLevel string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
	JWTLifetime time.Duration

	AllowedOrigins []string
	LogMode        string
}

// LoadDotEnv reads .env when not running on Railway. A missing file is not
// an error; variables may already be set.
func LoadDotEnv() error {
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") != "" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the environment into an Environment and validates it.
func Load() (Environment, error) {
	env := Environment{
		IsDevelopment: os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "",
		Port:          getEnv("PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBURL:         os.Getenv("DB_URL"),
		GormLogLevel:  getEnv("GORM_LOG_LEVEL", "warn"),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET_KEY")),
		JWTIssuer:     getEnv("JWT_ISSUER", "flashcards-api"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "flashcards-web"),
		LogMode:       getEnv("LOG_MODE", "dev"),
	}
	env.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	minutes, err := strconv.Atoi(getEnv("JWT_EXPIRES_IN_MINUTES", "60"))
	if err != nil || minutes <= 0 {
		return env, fmt.Errorf("JWT_EXPIRES_IN_MINUTES must be a positive integer")
	}
	env.JWTLifetime = time.Duration(minutes) * time.Minute

	if len(env.JWTSecret) < minSecretLength {
		return env, fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes", minSecretLength)
	}
	switch env.DBDriver {
	case "postgres":
		if env.DBURL == "" {
			return env, fmt.Errorf("DB_URL is required for the postgres driver")
		}
	case "sqlite":
		if env.DBURL == "" {
			env.DBURL = "file:flashcards.db?_foreign_keys=on"
		}
	default:
		return env, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
	return env, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
