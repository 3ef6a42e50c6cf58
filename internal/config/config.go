// Package config reads the server settings from the environment.
//
// A .env file in the working directory is loaded first (if present), so
// local development needs no exported variables. Real environment variables
// always win over .env entries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/chat"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level

	// Admin pages
	AuthEnabled   bool
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	AdminUsername string
	AdminPassword string
	BcryptCost    int

	// Optional GitHub sign-in for the admin pages
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	AdminGitHubLogins  []string

	SeedFile string

	// Chat. The API key itself is not here: it is read on every request.
	GeminiModel      string
	ChatTimeout      time.Duration
	ChatSystemPrompt string

	CORSAllowedOrigins []string

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
}

// GitHubEnabled reports whether GitHub sign-in is fully configured.
func (c *Config) GitHubEnabled() bool {
	return c.AuthEnabled && c.GitHubClientID != "" && c.GitHubClientSecret != "" && len(c.AdminGitHubLogins) > 0
}

// Load loads .env (if any) and builds a Config from the environment.
func Load() (*Config, error) {
	dotEnv := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading .env: %w", err)
		}
		dotEnv = false
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = dotEnv
	return cfg, nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error
	e := &envReader{errs: &errs}

	cfg := &Config{
		Port:     e.int("PORT", 5000),
		DBPath:   e.string("DB_PATH", "instance/site.db"),
		LogLevel: e.level("LOG_LEVEL", slog.LevelInfo),

		AuthEnabled:   e.bool("AUTH_ENABLED", true),
		SessionSecret: e.string("SESSION_SECRET", ""),
		SessionTTL:    e.duration("SESSION_TTL", auth.DefaultSessionTTL),
		CookieSecure:  e.bool("COOKIE_SECURE", false),
		AdminUsername: e.string("ADMIN_USERNAME", "admin"),
		AdminPassword: e.string("ADMIN_PASSWORD", ""),
		BcryptCost:    e.int("BCRYPT_COST", 12),

		GitHubClientID:     e.string("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: e.string("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  e.string("GITHUB_CALLBACK_URL", ""),
		AdminGitHubLogins:  e.list("ADMIN_GITHUB_LOGINS"),

		SeedFile: e.string("SEED_FILE", ""),

		GeminiModel:      e.string("GEMINI_MODEL", chat.DefaultModel),
		ChatTimeout:      e.duration("CHAT_TIMEOUT", chat.DefaultTimeout),
		ChatSystemPrompt: e.string("CHAT_SYSTEM_PROMPT", chat.DefaultSystemPrompt),

		CORSAllowedOrigins: e.list("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port))
	}
	if cfg.AuthEnabled && len(cfg.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters when AUTH_ENABLED is true"))
	}
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// envReader collects parse errors so every bad variable is reported at once.
type envReader struct {
	errs *[]error
}

func (e *envReader) fail(key, value, kind string) {
	*e.errs = append(*e.errs, fmt.Errorf("invalid %s value for %s: %q", kind, key, value))
}

func (e *envReader) string(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (e *envReader) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, "integer")
		return defaultValue
	}
	return n
}

func (e *envReader) bool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, "boolean")
		return defaultValue
	}
	return b
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		e.fail(key, value, "duration")
		return defaultValue
	}
	return d
}

func (e *envReader) level(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(value)); err != nil {
		e.fail(key, value, "log level")
		return defaultValue
	}
	return l
}

// list splits a comma-separated variable, dropping blanks.
func (e *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
