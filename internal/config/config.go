package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration of the application.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string
	MongoURI       string
	MongoDatabase  string

	JWTSecret string
	JWTExpire time.Duration

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	MaxFileUpload int64
	S3            S3Config

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	CurationTTL   time.Duration

	SentryDSN        string
	CORSOrigin       string
	ResetPasswordURL string
}

// S3Config holds the object storage settings of the image CDN.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether an image bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "memory")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "arthemis")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRE", "720h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "arthemis.events")
	v.SetDefault("RABBITMQ_QUEUE", "arthemis_events")
	v.SetDefault("MAX_FILE_UPLOAD", 1000000)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("CDN_BASE_URL", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("CURATION_CACHE_TTL", "1h")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("RESET_PASSWORD_URL", "http://localhost:3000/resetpassword")
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an initialised viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		AppEnv:           strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDatabase:    v.GetString("MONGO_DATABASE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTExpire:        v.GetDuration("JWT_EXPIRE"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		MaxFileUpload:    v.GetInt64("MAX_FILE_UPLOAD"),
		S3: S3Config{
			Endpoint:        v.GetString("S3_ENDPOINT"),
			Region:          v.GetString("S3_REGION"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("S3_BUCKET"),
			CDNBaseURL:      strings.TrimRight(v.GetString("CDN_BASE_URL"), "/"),
		},
		GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:    strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		CurationTTL:      v.GetDuration("CURATION_CACHE_TTL"),
		SentryDSN:        v.GetString("SENTRY_DSN"),
		CORSOrigin:       v.GetString("CORS_ORIGIN"),
		ResetPasswordURL: strings.TrimRight(v.GetString("RESET_PASSWORD_URL"), "/"),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_SECRET must be set outside development")
		}
		cfg.JWTSecret = "development_secret"
	}
	if cfg.JWTExpire <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE must be positive, got %s", cfg.JWTExpire)
	}
	if cfg.MaxFileUpload <= 0 {
		return nil, fmt.Errorf("MAX_FILE_UPLOAD must be positive, got %d", cfg.MaxFileUpload)
	}
	return cfg, nil
}
