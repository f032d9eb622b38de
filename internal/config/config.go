// Package config loads server settings from a .env file, an optional
// config.yaml and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// minSecretLen matches the token service's minimum HMAC key length.
const minSecretLen = 16

type Config struct {
	Port     int           `mapstructure:"port"`
	DBPath   string        `mapstructure:"db_path"`
	LogLevel string        `mapstructure:"log_level"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	JWTSecret string `mapstructure:"jwt_secret"`

	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubCallbackURL  string `mapstructure:"github_callback_url"`
	GitHubAPIURL       string `mapstructure:"github_api_url"`

	CORSOrigins []string `mapstructure:"cors_origins"`
}

var defaults = map[string]any{
	"port":                 5000,
	"db_path":              "data/devconnector.db",
	"log_level":            "info",
	"token_ttl":            "1h",
	"jwt_secret":           "",
	"github_client_id":     "",
	"github_client_secret": "",
	"github_callback_url":  "",
	"github_api_url":       "https://api.github.com",
	"cors_origins":         "*",
}

// Load reads configuration from dir (".env" and "config.yaml", both optional)
// and the environment. Keys are the upper-case env names: PORT, DB_PATH,
// JWT_SECRET and so on; config.yaml uses the lower-case form.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", cfg.Port)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLen)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d is out of range", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// GitHubOAuthEnabled reports whether GitHub sign-in can be offered.
func (c *Config) GitHubOAuthEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
