// Package providers fetches candidate articles from configured news
// sources. Providers are declared in a YAML/JSON registry file; a
// fetcher implementation is selected per provider type.
package providers

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported provider types.
	ProviderTypeNewsAPI    = "newsapi"
	ProviderTypeGoogleNews = "google-news"

	defaultUserAgent = "chirper/1.0 (+https://github.com/headline-hq/chirper)"
)

// Provider is a single source entry declared in the registry file.
type Provider struct {
	ID             string            `json:"id" yaml:"id"`
	Type           string            `json:"type" yaml:"type"`
	Enabled        *bool             `json:"enabled" yaml:"enabled"`
	SourceURL      string            `json:"source_url" yaml:"source_url"`
	Query          string            `json:"query" yaml:"query"`
	Language       string            `json:"language" yaml:"language"`
	SortBy         string            `json:"sort_by" yaml:"sort_by"`
	PageSize       int               `json:"page_size" yaml:"page_size"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
	ExtraHeaders   map[string]string `json:"headers" yaml:"headers"`
}

// RequestDelay returns the per-request pacing for scraping this provider.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}

// EnabledValue returns the enabled flag defaulting to true.
func (p Provider) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// Headers builds the outbound header set for a provider request.
func Headers(cfg Provider) map[string]string {
	headers := map[string]string{
		"User-Agent": defaultUserAgent,
	}
	for k, v := range cfg.ExtraHeaders {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	return headers
}

// registryFile is the on-disk shape of the provider registry.
type registryFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

// ConfigRegistry holds the provider entries loaded from a registry file.
type ConfigRegistry struct {
	mu        sync.RWMutex
	providers []Provider
	idx       map[string]Provider
}

// LoadRegistry loads providers from a YAML/JSON file. Environment
// references in the file are expanded before decoding so credentials can
// stay out of source control.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("providers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	fileReg, err := parseRegistry(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Providers) == 0 {
		return nil, errors.New("providers file contains no provider entries")
	}

	reg := &ConfigRegistry{
		providers: make([]Provider, len(fileReg.Providers)),
		idx:       make(map[string]Provider, len(fileReg.Providers)),
	}

	for i := range fileReg.Providers {
		cfg := sanitizeProvider(fileReg.Providers[i])
		if err := validateProvider(cfg); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", cfg.ID)
		}
		reg.providers[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseRegistry decodes the registry file content by extension.
func parseRegistry(data []byte, ext string) (registryFile, error) {
	var reg registryFile
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &reg); err != nil {
			return registryFile{}, fmt.Errorf("decode yaml providers: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &reg); err != nil {
			return registryFile{}, fmt.Errorf("decode json providers: %w", err)
		}
	default:
		return registryFile{}, errors.New("providers file format not recognized (expected YAML or JSON)")
	}
	return reg, nil
}

// sanitizeProvider trims and normalizes a provider entry.
func sanitizeProvider(cfg Provider) Provider {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	cfg.Query = strings.TrimSpace(cfg.Query)
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.SortBy = strings.TrimSpace(cfg.SortBy)
	return cfg
}

// validateProvider checks the fields each provider type requires.
func validateProvider(cfg Provider) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case ProviderTypeNewsAPI:
		if cfg.Query == "" {
			return fmt.Errorf("query is required for provider %q", cfg.ID)
		}
	case ProviderTypeGoogleNews:
		if cfg.SourceURL == "" {
			return fmt.Errorf("source_url is required for provider %q", cfg.ID)
		}
	case "":
		return fmt.Errorf("type is required for provider %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for provider %q", cfg.Type, cfg.ID)
	}
	return nil
}

// ByID returns the provider entry with the given id.
func (r *ConfigRegistry) ByID(id string) (Provider, bool) {
	if r == nil {
		return Provider{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Provider{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns every configured provider.
func (r *ConfigRegistry) All() []Provider {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Enabled returns the providers that are enabled.
func (r *ConfigRegistry) Enabled() []Provider {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Provider, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// hashURL generates a stable article id from its URL.
func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}

// responseSnippet returns a truncated response body for error messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
