// Package config handles environment variable parsing and validation.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// AuthMode represents the SSH authentication mode.
type AuthMode string

const (
	AuthModeAllowlist AuthMode = "allowlist"
	AuthModePublic    AuthMode = "public"
)

// ERPAuthMethod selects how requests to the backend are authenticated.
type ERPAuthMethod string

const (
	ERPAuthAPIKey  ERPAuthMethod = "apikey"
	ERPAuthSession ERPAuthMethod = "session"
)

// Config holds all application configuration.
type Config struct {
	// SSH server settings
	SSHAddr        string
	SSHHostKeyPath string
	SSHAuthMode    AuthMode
	AllowlistPath  string

	// ERPNext backend settings
	ERPBaseURL    string
	ERPAuthMethod ERPAuthMethod
	ERPAPIKey     string
	ERPAPISecret  string

	// Local state paths
	QueuePath        string
	SessionTokenPath string

	// Cache and search behavior
	CacheTTL       time.Duration
	SearchDebounce time.Duration

	// Display settings
	Currency string
	Locale   string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SSHAddr:          getEnv("SSH_ADDR", ":23234"),
		SSHHostKeyPath:   getEnv("SSH_HOSTKEY_PATH", "./.ssh_host_ed25519_key"),
		SSHAuthMode:      AuthMode(getEnv("SSH_AUTH_MODE", "allowlist")),
		AllowlistPath:    getEnv("SSH_ALLOWLIST_PATH", "./allowlist_authorized_keys"),
		ERPBaseURL:       getEnv("ERP_BASE_URL", "http://127.0.0.1:18080"),
		ERPAuthMethod:    ERPAuthMethod(getEnv("ERP_AUTH_METHOD", "apikey")),
		ERPAPIKey:        os.Getenv("ERP_API_KEY"),
		ERPAPISecret:     os.Getenv("ERP_API_SECRET"),
		QueuePath:        getEnv("POS_QUEUE_PATH", "./pos_pending_invoices.json"),
		SessionTokenPath: getEnv("POS_SESSION_TOKEN_PATH", "./pos_session_token"),
		Currency:         getEnv("POS_CURRENCY", "USD"),
		Locale:           getEnv("POS_LOCALE", "en-US"),
	}

	ttlSeconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, errors.New("CACHE_TTL_SECONDS must be a valid integer")
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	debounceMs, err := strconv.Atoi(getEnv("SEARCH_DEBOUNCE_MS", "300"))
	if err != nil {
		return nil, errors.New("SEARCH_DEBOUNCE_MS must be a valid integer")
	}
	cfg.SearchDebounce = time.Duration(debounceMs) * time.Millisecond

	if cfg.SSHAuthMode != AuthModeAllowlist && cfg.SSHAuthMode != AuthModePublic {
		return nil, errors.New("SSH_AUTH_MODE must be 'allowlist' or 'public'")
	}
	if cfg.ERPAuthMethod != ERPAuthAPIKey && cfg.ERPAuthMethod != ERPAuthSession {
		return nil, errors.New("ERP_AUTH_METHOD must be 'apikey' or 'session'")
	}
	if cfg.ERPAuthMethod == ERPAuthAPIKey && (cfg.ERPAPIKey == "" || cfg.ERPAPISecret == "") {
		return nil, errors.New("ERP_API_KEY and ERP_API_SECRET are required when ERP_AUTH_METHOD is 'apikey'")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
