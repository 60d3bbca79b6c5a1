// Package config collects the process-wide settings of the server into one explicit value
// that is handed to every component at start-up.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const envFile = ".env"

// Config holds everything read from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KeyPairPath       string
	TokenValidity     time.Duration
	ResetCodeValidity time.Duration
	BcryptCost        int

	UploadDir      string
	PublicBaseURL  string
	MaxUploadBytes int64

	MailgunDomain string
	MailgunAPIKey string
	MailFrom      string

	CorsOrigins []string
}

// IsProduction reports whether outbound mail should really be sent.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseURL returns the keyword/value connection string for pgx.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function and applies defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:          valueOr(getenv("PORT"), "8080"),
		Environment:   valueOr(getenv("ENVIRONMENT"), "development"),
		LogLevel:      valueOr(getenv("LOG_LEVEL"), "INFO"),
		DBHost:        getenv("DB_HOST"),
		DBPort:        valueOr(getenv("DB_PORT"), "5432"),
		DBUser:        getenv("DB_USER"),
		DBPassword:    getenv("DB_PASS"),
		DBName:        getenv("DB_NAME"),
		KeyPairPath:   valueOr(getenv("KEY_PAIR_PATH"), "keys/jwt.key"),
		UploadDir:     valueOr(getenv("UPLOAD_DIR"), "uploads"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
		MailgunDomain: getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: getenv("MAILGUN_API_KEY"),
		MailFrom:      valueOr(getenv("MAIL_FROM"), "Cloud Drive <no-reply@cloud-drive.local>"),
		CorsOrigins:   splitList(valueOr(getenv("CORS_ORIGINS"), "http://localhost:3000")),
	}

	var err error
	if cfg.TokenValidity, err = durationOr(getenv("TOKEN_VALIDITY"), 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("TOKEN_VALIDITY: %w", err)
	}
	if cfg.ResetCodeValidity, err = durationOr(getenv("RESET_CODE_VALIDITY"), 10*time.Minute); err != nil {
		return nil, fmt.Errorf("RESET_CODE_VALIDITY: %w", err)
	}
	if cfg.BcryptCost, err = intOr(getenv("BCRYPT_COST"), bcrypt.DefaultCost); err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST: %d out of range", cfg.BcryptCost)
	}
	maxUpload, err := intOr(getenv("MAX_UPLOAD_BYTES"), 50<<20)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	return cfg, nil
}

// ValidateDatabase fails when any of the connection variables is missing.
func (c *Config) ValidateDatabase() error {
	if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBPassword == "" || c.DBName == "" {
		return fmt.Errorf("database environment variables not set")
	}
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func intOr(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
