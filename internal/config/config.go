// Package config loads the bot configuration from a YAML file and the
// process environment. Secret credentials only ever come from the
// environment; the config file carries tunables and registry paths.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable names for injected secrets. These match the
// deployment workflow's secret wiring and must not change.
const (
	EnvNewsAPIKey        = "NEWS_API_KEY"
	EnvSheetsCredentials = "GOOGLE_SHEETS_CREDENTIALS"
	EnvSheetID           = "SHEET_ID"
	EnvAPIKey            = "API_KEY"
	EnvAPIKeySecret      = "API_KEY_SECRET"
	EnvAccessToken       = "ACCESS_TOKEN"
	EnvAccessTokenSecret = "ACCESS_TOKEN_SECRET"
)

// Configuration validation errors.
var (
	ErrMissingNewsAPIKey        = errors.New(EnvNewsAPIKey + " is required")
	ErrMissingSheetsCredentials = errors.New(EnvSheetsCredentials + " is required")
	ErrMissingSheetID           = errors.New(EnvSheetID + " is required")
	ErrInvalidBudget            = errors.New("budgets must be positive")
	ErrMissingProvidersFile     = errors.New("providers_file is required")
	ErrMissingPublishersFile    = errors.New("publishers_file is required")
)

// Config is the complete bot configuration.
type Config struct {
	LogLevel       string        `mapstructure:"log_level"`
	Schedule       string        `mapstructure:"schedule"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	ProvidersFile  string        `mapstructure:"providers_file"`
	PublishersFile string        `mapstructure:"publishers_file"`
	CachePath      string        `mapstructure:"cache_path"`
	SheetName      string        `mapstructure:"sheet_name"`
	Budgets        Budgets       `mapstructure:"budgets"`

	Secrets Secrets `mapstructure:"-"`
}

// Budgets caps external API spend per calendar window.
type Budgets struct {
	NewsRequestsPerMonth int `mapstructure:"news_requests_per_month"`
	PostsPerDay          int `mapstructure:"posts_per_day"`
	PostsPerMonth        int `mapstructure:"posts_per_month"`
}

// Secrets holds the credentials injected through the environment.
type Secrets struct {
	NewsAPIKey        string
	SheetsCredentials string
	SheetID           string
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
}

// Load reads the config file at path (optional), merges environment
// overrides and returns the validated configuration. A local .env file
// is honoured when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("schedule", "0 * * * *")
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("providers_file", "providers.yaml")
	v.SetDefault("publishers_file", "publishers.yaml")
	v.SetDefault("cache_path", "chirper.db")
	v.SetDefault("sheet_name", "Sheet1")
	v.SetDefault("budgets.news_requests_per_month", 1000)
	v.SetDefault("budgets.posts_per_day", 50)
	v.SetDefault("budgets.posts_per_month", 1500)

	v.SetEnvPrefix("CHIRPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Secrets = secretsFromEnv(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// secretsFromEnv reads the injected credentials. The names are bound
// without the CHIRPER prefix since they are dictated by the deployment.
func secretsFromEnv(v *viper.Viper) Secrets {
	read := func(name string) string {
		_ = v.BindEnv("secret."+name, name)
		return strings.TrimSpace(v.GetString("secret." + name))
	}
	return Secrets{
		NewsAPIKey:        read(EnvNewsAPIKey),
		SheetsCredentials: read(EnvSheetsCredentials),
		SheetID:           read(EnvSheetID),
		APIKey:            read(EnvAPIKey),
		APIKeySecret:      read(EnvAPIKeySecret),
		AccessToken:       read(EnvAccessToken),
		AccessTokenSecret: read(EnvAccessTokenSecret),
	}
}

// Validate checks the fields the pipeline cannot run without. Publisher
// credentials are validated by the publisher registry, which knows which
// sinks are enabled.
func (c *Config) Validate() error {
	if c.Secrets.NewsAPIKey == "" {
		return ErrMissingNewsAPIKey
	}
	if c.Secrets.SheetsCredentials == "" {
		return ErrMissingSheetsCredentials
	}
	if c.Secrets.SheetID == "" {
		return ErrMissingSheetID
	}
	if c.ProvidersFile == "" {
		return ErrMissingProvidersFile
	}
	if c.PublishersFile == "" {
		return ErrMissingPublishersFile
	}
	if c.Budgets.NewsRequestsPerMonth <= 0 || c.Budgets.PostsPerDay <= 0 || c.Budgets.PostsPerMonth <= 0 {
		return ErrInvalidBudget
	}
	return nil
}

// Redacted returns a loggable view of the configuration. Secret values
// are reduced to set/unset markers.
func (c *Config) Redacted() map[string]any {
	mark := func(s string) string {
		if s == "" {
			return "<unset>"
		}
		return "<set>"
	}
	return map[string]any{
		"log_level":          c.LogLevel,
		"schedule":           c.Schedule,
		"http_timeout":       c.HTTPTimeout.String(),
		"providers_file":     c.ProvidersFile,
		"publishers_file":    c.PublishersFile,
		"cache_path":         c.CachePath,
		"sheet_name":         c.SheetName,
		EnvNewsAPIKey:        mark(c.Secrets.NewsAPIKey),
		EnvSheetsCredentials: mark(c.Secrets.SheetsCredentials),
		EnvSheetID:           mark(c.Secrets.SheetID),
		EnvAPIKey:            mark(c.Secrets.APIKey),
		EnvAPIKeySecret:      mark(c.Secrets.APIKeySecret),
		EnvAccessToken:       mark(c.Secrets.AccessToken),
		EnvAccessTokenSecret: mark(c.Secrets.AccessTokenSecret),
	}
}
