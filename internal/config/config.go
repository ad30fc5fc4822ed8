package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         string `validate:"required"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string `validate:"oneof=development production"`
}

// MinioConfig holds object store connection settings.
type MinioConfig struct {
	Endpoint      string `validate:"required"`
	AccessKey     string `validate:"required"`
	SecretKey     string `validate:"required"`
	Bucket        string `validate:"required"`
	UseSSL        bool
	PresignExpiry time.Duration `validate:"gt=0"`
}

// OpenAIConfig holds speech-to-text API settings.
type OpenAIConfig struct {
	APIKey  string `validate:"required"`
	BaseURL string
}

// AuthConfig holds session verification settings.
type AuthConfig struct {
	JWTSecret string `validate:"required,min=16"`
}

// Config is the full application configuration. It is built once in main and
// injected; adapters never read the process environment themselves.
type Config struct {
	Server ServerConfig
	Minio  MinioConfig
	OpenAI OpenAIConfig
	Auth   AuthConfig
}

// LoadEnv loads environment variables from a .env file if one exists. Missing
// files are not an error: variables may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// Load reads configuration from the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", ""),
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 2*time.Minute),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		},
		Minio: MinioConfig{
			Endpoint:      getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:        getEnvOrDefault("MINIO_BUCKET", "audio-table"),
			UseSSL:        getBoolOrDefault("MINIO_USE_SSL", false),
			PresignExpiry: getDurationOrDefault("MINIO_PRESIGN_EXPIRY", time.Hour),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
