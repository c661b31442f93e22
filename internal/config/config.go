package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (optional; shared limiter/session storage across instances)
	RedisURL string

	// CoreNLP annotation server
	CoreNLPURL string

	// Twilio WhatsApp transport
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWhatsAppFrom  string // the sandbox/sender number, leading "+"
	HumanPhoneNumber    string // the fixed human handover channel, leading "+"
	SupportedLanguage   string // the only language the bot can answer in
	HandoverLanguage    string // language recorded on new handover requests

	// Ephemeral conversation rules
	RuleTTL             time.Duration
	RuleCompactInterval time.Duration

	// OIDC (admin API)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/covidbot?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),
		CoreNLPURL:  getEnv("CORENLP_URL", ""),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		HumanPhoneNumber:   getEnv("HUMAN_PHONE_NUMBER", ""),
		SupportedLanguage:  getEnv("SUPPORTED_LANGUAGE", "English"),
		HandoverLanguage:   getEnv("HANDOVER_LANGUAGE", "English"),

		RuleTTL:             getDuration("RULE_TTL", 24*time.Hour),
		RuleCompactInterval: getDuration("RULE_COMPACT_INTERVAL", time.Hour),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
	}
}

// Validate checks that the settings without which the service cannot operate
// are present. Failures here are fatal at startup.
func (c *Config) Validate() error {
	var missing []string
	if c.CoreNLPURL == "" {
		missing = append(missing, "CORENLP_URL")
	}
	if c.TwilioAccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.TwilioAuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.TwilioWhatsAppFrom == "" {
		missing = append(missing, "TWILIO_WHATSAPP_NUMBER")
	}
	if c.HumanPhoneNumber == "" {
		missing = append(missing, "HUMAN_PHONE_NUMBER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.HumanPhoneNumber, "+") {
		return errors.New("HUMAN_PHONE_NUMBER must start with +")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsAdminAPIEnabled returns true if the OIDC-protected admin API should be
// mounted.
func (c *Config) IsAdminAPIEnabled() bool {
	return c.OIDCIssuer != ""
}
