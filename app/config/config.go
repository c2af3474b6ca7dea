// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultMockSecret = "first-time-local-development-secret"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"`
	PublicURL string `mapstructure:"PUBLIC_URL"`
	DataDir   string `mapstructure:"DATA_DIR"`

	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	SupabaseURL     string `mapstructure:"SUPABASE_URL"`
	SupabaseAnonKey string `mapstructure:"SUPABASE_ANON_KEY"`
	RedisURL        string `mapstructure:"REDIS_URL"`

	Auth0Domain       string `mapstructure:"AUTH0_DOMAIN"`
	Auth0ClientID     string `mapstructure:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret string `mapstructure:"AUTH0_CLIENT_SECRET"`
	Auth0Audience     string `mapstructure:"AUTH0_AUDIENCE"`
	Auth0PublicKey    string `mapstructure:"AUTH0_PUBLIC_KEY"`
	MockAuthSecret    string `mapstructure:"MOCK_AUTH_SECRET"`

	CloudinaryCloudName    string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryUploadPreset string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]string{
	"PORT":                     "8080",
	"APP_ENV":                  "development",
	"PUBLIC_URL":               "http://localhost:8080",
	"DATA_DIR":                 "data",
	"DATABASE_URL":             "",
	"SUPABASE_URL":             "",
	"SUPABASE_ANON_KEY":        "",
	"REDIS_URL":                "",
	"AUTH0_DOMAIN":             "",
	"AUTH0_CLIENT_ID":          "",
	"AUTH0_CLIENT_SECRET":      "",
	"AUTH0_AUDIENCE":           "",
	"AUTH0_PUBLIC_KEY":         "",
	"MOCK_AUTH_SECRET":         defaultMockSecret,
	"CLOUDINARY_CLOUD_NAME":    "",
	"CLOUDINARY_UPLOAD_PRESET": "",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
}

// Load reads config.yml from the given directories (the working directory
// when none are given), then environment variables, which take precedence.
// A missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.PublicURL = strings.TrimRight(config.PublicURL, "/")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if (c.Auth0Domain == "") != (c.Auth0ClientID == "") {
		return errors.New("AUTH0_DOMAIN and AUTH0_CLIENT_ID must be set together")
	}
	if c.IsProduction() {
		if !c.Auth0Enabled() {
			return errors.New("Auth0 must be configured in production")
		}
		if c.Auth0ClientSecret == "" && c.Auth0PublicKey == "" {
			return errors.New("AUTH0_CLIENT_SECRET or AUTH0_PUBLIC_KEY is required in production")
		}
	} else if !c.Auth0Enabled() && c.MockAuthSecret == "" {
		return errors.New("MOCK_AUTH_SECRET is required when Auth0 is not configured")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Auth0Enabled reports whether the hosted login flow is configured.
func (c *Config) Auth0Enabled() bool {
	return c.Auth0Domain != "" && c.Auth0ClientID != ""
}

// RemoteEnabled reports whether the hosted table store should be used.
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != ""
}

// BadgerPath is where the local key-value store lives.
func (c *Config) BadgerPath() string {
	return filepath.Join(c.DataDir, "badger")
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
