package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	DatabaseURL       string
	ConversationStore string // memory | redis | postgres
	LeadStore         string // memory | postgres
	ConversationTTL   time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool

	CORSAllowedOrigins []string
	ChatRateLimitRPS   float64
	ChatRateLimitBurst int
	AdminJWTSecret     string

	// Brand copy
	BrandDefaultName         string
	BrandRentalsName         string
	BrandRentalsPathPrefixes []string

	// Lead notifications
	EmailProvider        string // sendgrid | ses | stub
	SendGridAPIKey       string
	SendGridFromEmail    string
	SendGridFromName     string
	SESFromEmail         string
	SESFromName          string
	LeadNotifyEmailsJSON string
	OutboxPollInterval   time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ConversationStore: strings.ToLower(strings.TrimSpace(getEnv("CONVERSATION_STORE", "memory"))),
		LeadStore:         strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", "memory"))),
		ConversationTTL:   getEnvAsDuration("CONVERSATION_TTL", 30*24*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		ChatRateLimitRPS:   getEnvAsFloat("CHAT_RATE_LIMIT_RPS", 2),
		ChatRateLimitBurst: getEnvAsInt("CHAT_RATE_LIMIT_BURST", 10),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		BrandDefaultName:         getEnv("BRAND_DEFAULT_NAME", "PropDesk"),
		BrandRentalsName:         getEnv("BRAND_RENTALS_NAME", "PropDesk Rentas"),
		BrandRentalsPathPrefixes: getEnvAsList("BRAND_RENTALS_PATH_PREFIXES", []string{"/rentas", "/rentals"}),

		EmailProvider:        strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:    getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:     getEnv("SENDGRID_FROM_NAME", "PropDesk"),
		SESFromEmail:         getEnv("SES_FROM_EMAIL", ""),
		SESFromName:          getEnv("SES_FROM_NAME", "PropDesk"),
		LeadNotifyEmailsJSON: getEnv("LEAD_NOTIFY_EMAILS_JSON", ""),
		OutboxPollInterval:   getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// LeadNotifyEmails decodes LEAD_NOTIFY_EMAILS_JSON ({"agency-id":"inbox@agency.mx"}).
func (c *Config) LeadNotifyEmails() (map[string]string, error) {
	out := map[string]string{}
	raw := strings.TrimSpace(c.LeadNotifyEmailsJSON)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
