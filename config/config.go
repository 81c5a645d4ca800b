package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env when GO_ENV is unset or development.
// A missing .env file is not an error.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV   string
	APP_NAME string
	PORT     int
	// Database
	DATABASE_URL string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// JWT Configuration
	JWT_SECRET           string
	JWT_ISSUER           string
	JWT_EXPIRY_HOURS     int
	JWT_REFRESH_EXP_DAYS int
	// Redis Configuration
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	CRON_ENABLED        bool
	// File storage
	STORAGE_DRIVER        string // local or spaces
	UPLOAD_DIR            string
	DO_SPACES_KEY         string
	DO_SPACES_SECRET      string
	DO_SPACES_BUCKET      string
	DO_SPACES_REGION      string
	DO_SPACES_ENDPOINT    string
	DO_SPACES_PUBLIC_HOST string
	// Mail
	MAIL_PROVIDER              string // smtp or sendgrid
	MAIL_FROM                  string
	SMTP_HOST                  string
	SMTP_PORT                  int
	SMTP_USER                  string
	SMTP_PASSWORD              string
	SENDGRID_API_KEY           string
	PASSWORD_RESET_EXP_MINUTES int
}

// IsDevelopment reports whether the service runs in development mode
func (e *EnvironmentVariable) IsDevelopment() bool {
	return e.GO_ENV == "" || e.GO_ENV == "development"
}

// IsProduction reports whether the service runs in production mode
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func Get() (*EnvironmentVariable, error) {
	envVariables := &EnvironmentVariable{
		GO_ENV:   os.Getenv("GO_ENV"),
		APP_NAME: getString("APP_NAME", "MindMeld"),
		PORT:     getInt("PORT", 8080),
		// Database
		DATABASE_URL: os.Getenv("DATABASE_URL"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      getString("DB_NAME", "mindmeld"),
		DB_HOST:      getString("DB_HOST", "localhost"),
		DB_PORT:      getString("DB_PORT", "5432"),
		DB_SSL_MODE:  getString("DB_SSL_MODE", "disable"),
		// JWT
		JWT_SECRET:           os.Getenv("JWT_SECRET"),
		JWT_ISSUER:           getString("JWT_ISSUER", "mindmeld-api"),
		JWT_EXPIRY_HOURS:     getInt("JWT_EXPIRY_HOURS", 24*7),
		JWT_REFRESH_EXP_DAYS: getInt("JWT_REFRESH_EXP_DAYS", 30),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// HTTP
		ALLOWED_ORIGINS:     getString("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		RATE_LIMIT_REQUESTS: getInt("RATE_LIMIT_REQUESTS", 100),
		CRON_ENABLED:        os.Getenv("CRON_ENABLED") != "false", // default enabled
		// File storage
		STORAGE_DRIVER:        strings.ToLower(getString("STORAGE_DRIVER", "local")),
		UPLOAD_DIR:            getString("UPLOAD_DIR", "uploads"),
		DO_SPACES_KEY:         os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:      os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:      os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:      getString("DO_SPACES_REGION", "nyc3"),
		DO_SPACES_ENDPOINT:    os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_PUBLIC_HOST: os.Getenv("DO_SPACES_PUBLIC_HOST"),
		// Mail
		MAIL_PROVIDER:              strings.ToLower(getString("MAIL_PROVIDER", "smtp")),
		MAIL_FROM:                  os.Getenv("MAIL_FROM"),
		SMTP_HOST:                  os.Getenv("SMTP_HOST"),
		SMTP_PORT:                  getInt("SMTP_PORT", 587),
		SMTP_USER:                  os.Getenv("SMTP_USER"),
		SMTP_PASSWORD:              os.Getenv("SMTP_PASSWORD"),
		SENDGRID_API_KEY:           os.Getenv("SENDGRID_API_KEY"),
		PASSWORD_RESET_EXP_MINUTES: getInt("PASSWORD_RESET_EXP_MINUTES", 10),
	}

	if envVariables.JWT_SECRET == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	return envVariables, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
