package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the process configuration, loaded from the environment.
type Config struct {
	// Server
	Port        int
	Environment string

	// Database
	DatabaseURL      string
	DBMaxConnections int

	// Clerk auth
	ClerkSecretKey string

	// S3 statement archive
	S3Bucket    string
	S3Region    string
	AWSEndpoint string // LocalStack in development

	// Upload limits
	MaxUploadBytes int64

	// Statement locale. The parser's format assumptions live here rather
	// than in parsing code so another deployment can flip them without
	// touching the pipeline.
	DefaultCurrency        string
	DayFirstDates          bool
	DecimalComma           bool
	DescriptionPlaceholder string

	CORSOrigins []string
}

// LoadFromEnv reads configuration from environment variables, applying
// development defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Port:                   getEnvInt("PORT", 8080),
		Environment:            getEnv("ENVIRONMENT", "development"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DBMaxConnections:       getEnvInt("DB_MAX_CONNECTIONS", 25),
		ClerkSecretKey:         getEnv("CLERK_SECRET_KEY", ""),
		S3Bucket:               getEnv("S3_BUCKET", ""),
		S3Region:               getEnv("S3_REGION", "sa-east-1"),
		AWSEndpoint:            getEnv("AWS_ENDPOINT", ""),
		MaxUploadBytes:         int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		DefaultCurrency:        getEnv("DEFAULT_CURRENCY", "BRL"),
		DayFirstDates:          getEnvBool("DAY_FIRST_DATES", true),
		DecimalComma:           getEnvBool("DECIMAL_COMMA", true),
		DescriptionPlaceholder: getEnv("DESCRIPTION_PLACEHOLDER", "Sem descrição"),
	}

	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ClerkSecretKey == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("CLERK_SECRET_KEY is required in production")
	}
	if cfg.S3Bucket == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("S3_BUCKET is required in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
