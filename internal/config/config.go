package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration,
// populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	MinIO    MinIOConfig
	Billing  BillingConfig
	Webhook  WebhookConfig
	Audit    AuditConfig
	Features Features
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	CORSOrigin  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	// Secret is shared with the auth provider; bearer tokens are HS256.
	Secret string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type BillingConfig struct {
	APIURL        string
	APIKey        string
	WebhookSecret string
	ReturnURL     string
}

type WebhookConfig struct {
	// AuthSecret signs user lifecycle webhooks from the auth provider.
	AuthSecret string
}

type AuditConfig struct {
	RetentionDays int
}

// Features gates optional modules. Each flag is computed from the presence
// of that integration's credentials, never set directly.
type Features struct {
	Redis        bool // cache, shared rate-limit store, background jobs
	Storage      bool // MinIO uploads
	Email        bool // SMTP sends
	Billing      bool // billing provider
	Realtime     bool // websocket notifications
	ErrorTracker bool // external error collector
}

// ErrorTrackerURL is where the error handler forwards failures when set.
func (c *Config) ErrorTrackerURL() string {
	return getEnv("ERROR_TRACKER_URL", "")
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "SnippetHub API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			CORSOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "snippethub"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "snippethub_dev"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", ""),
			Port: getEnv("SMTP_PORT", "1025"),
			From: getEnv("SMTP_FROM", "noreply@snippethub.dev"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "snippethub"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Billing: BillingConfig{
			APIURL:        getEnv("BILLING_API_URL", ""),
			APIKey:        getEnv("BILLING_API_KEY", ""),
			WebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
			ReturnURL:     getEnv("BILLING_RETURN_URL", "http://localhost:3000/account"),
		},
		Webhook: WebhookConfig{
			AuthSecret: getEnv("AUTH_WEBHOOK_SECRET", ""),
		},
		Audit: AuditConfig{
			RetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 90),
		},
	}

	cfg.Features = Features{
		Redis:        cfg.Redis.Host != "",
		Storage:      cfg.MinIO.Endpoint != "" && cfg.MinIO.AccessKey != "",
		Email:        cfg.SMTP.Host != "",
		Billing:      cfg.Billing.APIURL != "" && cfg.Billing.APIKey != "",
		Realtime:     getEnvBool("REALTIME_ENABLED", false),
		ErrorTracker: cfg.ErrorTrackerURL() != "",
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that production deployments carry real secrets.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "dev-secret-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Features.Billing && c.Billing.WebhookSecret == "" {
			return fmt.Errorf("BILLING_WEBHOOK_SECRET must be set when billing is enabled")
		}
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
