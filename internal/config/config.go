// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL  string `json:"base_url"`
	AuthURL  string `json:"auth_url"`
	TokenURL string `json:"token_url"`

	// OAuth client settings
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectPort int    `json:"redirect_port"`
	Scope        string `json:"scope"`

	// Browsing preferences
	MatureContent bool `json:"mature_content"`
	PageSize      int  `json:"page_size"`

	// Output settings
	Format string `json:"format"`

	// Behavior preferences (persisted via config set, overridable by flags)
	Verbose *int `json:"verbose,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL  string
	ClientID string
	Mature   *bool
	PageSize int
	Format   string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:      "https://www.deviantart.com/api/v1/oauth2",
		AuthURL:      "https://www.deviantart.com/oauth2/authorize",
		TokenURL:     "https://www.deviantart.com/oauth2/token",
		RedirectPort: 41721,
		Scope:        "browse message note user collection comment.post user.manage",
		PageSize:     24,
		Format:       "auto",
		Sources:      make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > global > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if cfg.PageSize < 1 || cfg.PageSize > 120 {
		return nil, fmt.Errorf("page_size must be between 1 and 120, got %d", cfg.PageSize)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(source)
	}
	if v, ok := fileCfg["auth_url"].(string); ok && v != "" {
		cfg.AuthURL = v
		cfg.Sources["auth_url"] = string(source)
	}
	if v, ok := fileCfg["token_url"].(string); ok && v != "" {
		cfg.TokenURL = v
		cfg.Sources["token_url"] = string(source)
	}
	if v, ok := fileCfg["client_id"].(string); ok && v != "" {
		cfg.ClientID = v
		cfg.Sources["client_id"] = string(source)
	}
	if v, ok := fileCfg["client_secret"].(string); ok && v != "" {
		cfg.ClientSecret = v
		cfg.Sources["client_secret"] = string(source)
	}
	if v, ok := fileCfg["redirect_port"].(float64); ok && v == float64(int(v)) && int(v) > 0 {
		cfg.RedirectPort = int(v)
		cfg.Sources["redirect_port"] = string(source)
	}
	if v, ok := fileCfg["scope"].(string); ok && v != "" {
		cfg.Scope = v
		cfg.Sources["scope"] = string(source)
	}
	if v, ok := fileCfg["mature_content"].(bool); ok {
		cfg.MatureContent = v
		cfg.Sources["mature_content"] = string(source)
	}
	if v, ok := fileCfg["page_size"].(float64); ok && v == float64(int(v)) && int(v) > 0 {
		cfg.PageSize = int(v)
		cfg.Sources["page_size"] = string(source)
	}
	if v, ok := fileCfg["format"].(string); ok && v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(source)
	}
	if v, ok := fileCfg["verbose"]; ok {
		if fv, ok := v.(float64); ok {
			iv := int(fv)
			if iv >= 0 && iv <= 2 && fv == float64(iv) {
				cfg.Verbose = &iv
				cfg.Sources["verbose"] = string(source)
			}
		}
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("DVNT_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_AUTH_URL"); v != "" {
		cfg.AuthURL = v
		cfg.Sources["auth_url"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_TOKEN_URL"); v != "" {
		cfg.TokenURL = v
		cfg.Sources["token_url"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
		cfg.Sources["client_id"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
		cfg.Sources["client_secret"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_REDIRECT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.RedirectPort = p
			cfg.Sources["redirect_port"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("DVNT_SCOPE"); v != "" {
		cfg.Scope = v
		cfg.Sources["scope"] = string(SourceEnv)
	}
	if v := os.Getenv("DVNT_MATURE_CONTENT"); v != "" {
		if b, ok := parseEnvBool(v); ok {
			cfg.MatureContent = b
			cfg.Sources["mature_content"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("DVNT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
			cfg.Sources["page_size"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("DVNT_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
}

// parseEnvBool parses a boolean environment variable strictly.
// Returns (value, true) for recognized values, (false, false) for unrecognized.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.ClientID != "" {
		cfg.ClientID = o.ClientID
		cfg.Sources["client_id"] = string(SourceFlag)
	}
	if o.Mature != nil {
		cfg.MatureContent = *o.Mature
		cfg.Sources["mature_content"] = string(SourceFlag)
	}
	if o.PageSize > 0 {
		cfg.PageSize = o.PageSize
		cfg.Sources["page_size"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// RedirectURI returns the loopback redirect URI for the OAuth flow.
func (cfg *Config) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", cfg.RedirectPort)
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "dvnt")
}

// GlobalConfigPath returns the global config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

// Save writes the given keys to the global config file, creating it if
// needed. Only persistable keys are written; runtime state is skipped.
func Save(values map[string]any) error {
	path := GlobalConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	existing := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec
		_ = json.Unmarshal(data, &existing)
	}
	for k, v := range values {
		if v == nil {
			delete(existing, k)
			continue
		}
		existing[k] = v
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Rename(tmp, path)
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
