package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env when GO_ENV is unset or "development".
// A missing .env file is not an error: the process environment is used as is.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// Authentication modes for protected routes
const (
	AuthModeHeader = "header" // trust the client-supplied userid header
	AuthModeJWT    = "jwt"    // require a verified bearer token
)

type EnvironmentVariable struct {
	GO_ENV   string
	PORT     int
	LOG_MODE string

	// Database
	DB_DRIVER    string // postgres (default) or sqlite
	DB_PATH      string // sqlite file path, ":memory:" for an ephemeral store
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string

	// Identity
	AUTH_MODE            string
	JWT_SECRET           string
	JWT_ISSUER           string
	CLERK_WEBHOOK_SECRET string

	// Redis
	REDIS_URL string

	// Asset host (S3 compatible)
	ASSET_ACCESS_KEY string
	ASSET_SECRET_KEY string
	ASSET_BUCKET     string
	ASSET_REGION     string
	ASSET_ENDPOINT   string
	ASSET_CDN_URL    string

	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int // per client IP per minute, 0 disables
	CRON_ENABLED        bool
}

func Get() (*EnvironmentVariable, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if err != nil || rateLimit < 0 {
		rateLimit = 100
	}

	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode != AuthModeJWT {
		authMode = AuthModeHeader
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:   os.Getenv("GO_ENV"),
		PORT:     port,
		LOG_MODE: getEnv("LOG_MODE", "development"),
		// Database
		DB_DRIVER:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DB_PATH:      getEnv("DB_PATH", "brightpath.db"),
		DB_USER_NAME: getEnv("DB_USER_NAME", "postgres"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      getEnv("DB_NAME", "brightpath"),
		DB_HOST:      getEnv("DB_HOST", "localhost"),
		DB_PORT:      getEnv("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnv("DB_SSL_MODE", "disable"),
		// Identity
		AUTH_MODE:            authMode,
		JWT_SECRET:           os.Getenv("JWT_SECRET"),
		JWT_ISSUER:           getEnv("JWT_ISSUER", "brightpath-api"),
		CLERK_WEBHOOK_SECRET: os.Getenv("CLERK_WEBHOOK_SECRET"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Assets
		ASSET_ACCESS_KEY: os.Getenv("ASSET_ACCESS_KEY"),
		ASSET_SECRET_KEY: os.Getenv("ASSET_SECRET_KEY"),
		ASSET_BUCKET:     os.Getenv("ASSET_BUCKET"),
		ASSET_REGION:     os.Getenv("ASSET_REGION"),
		ASSET_ENDPOINT:   os.Getenv("ASSET_ENDPOINT"),
		ASSET_CDN_URL:    os.Getenv("ASSET_CDN_URL"),

		ALLOWED_ORIGINS:     getEnv("ALLOWED_ORIGINS", "*"),
		RATE_LIMIT_REQUESTS: rateLimit,
		CRON_ENABLED:        os.Getenv("CRON_ENABLED") != "false", // enabled unless explicitly turned off
	}

	return envVariables, nil
}

// IsProduction reports whether GO_ENV is production.
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// AssetStorageConfigured reports whether enough ASSET_* settings are present
// to talk to the asset host.
func (e *EnvironmentVariable) AssetStorageConfigured() bool {
	return e.ASSET_BUCKET != "" && e.ASSET_REGION != "" && e.ASSET_ACCESS_KEY != "" && e.ASSET_SECRET_KEY != ""
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
