// Package config resolves client settings from defaults, the TOML config
// file, the saved state file, environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL  = "https://assignment-todolist-api.vercel.app"
	DefaultTenant   = "sanghun"
	DefaultTheme    = "classic"
	DefaultLang     = "en"
	DefaultLogLevel = "info"

	configFileName = "config.toml"
)

// Source says where a value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceState   Source = "state"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Config is the resolved client configuration.
type Config struct {
	BaseURL  string        `toml:"base_url"`
	Tenant   string        `toml:"tenant"`
	Timeout  time.Duration `toml:"timeout"`
	Theme    string        `toml:"theme"`
	Lang     string        `toml:"lang"`
	LogLevel string        `toml:"log_level"`
	LogFile  string        `toml:"log_file"`

	// TenantSource records which layer supplied Tenant.
	TenantSource Source `toml:"-"`
	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// Overrides carries flag values; empty strings mean "not set".
type Overrides struct {
	ConfigPath string
	BaseURL    string
	Tenant     string
	Theme      string
	Lang       string
	LogLevel   string
	LogFile    string
}

// Load resolves configuration in priority order:
// 1. Defaults
// 2. Config file (~/.tada/config.toml, or --config / TADA_CONFIG)
// 3. Saved state (tenant only, written by `tada tenant use`)
// 4. Environment variables
// 5. Flags
func Load(o Overrides) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	path, explicit, err := configPath(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	st, err := LoadState()
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if st != nil && strings.TrimSpace(st.Tenant) != "" {
		cfg.Tenant = strings.TrimSpace(st.Tenant)
		cfg.TenantSource = SourceState
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	applyOverrides(cfg, o)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.Tenant = DefaultTenant
	cfg.TenantSource = SourceDefault
	cfg.Theme = DefaultTheme
	cfg.Lang = DefaultLang
	cfg.LogLevel = DefaultLogLevel
}

// Dir is the per-user directory (~/.tada, or $TADA_HOME).
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("TADA_HOME")); d != "" {
		return expandPath(d), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

func configPath(flagPath string) (path string, explicit bool, err error) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return expandPath(p), true, nil
	}
	if p := strings.TrimSpace(os.Getenv("TADA_CONFIG")); p != "" {
		return expandPath(p), true, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, configFileName), false, nil
}

// loadFile decodes path over cfg. A missing default file is fine; a missing
// explicitly named file is an error.
func loadFile(cfg *Config, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return err
	}
	var fc Config
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	cfg.Path = path
	if md.IsDefined("base_url") {
		cfg.BaseURL = fc.BaseURL
	}
	if md.IsDefined("tenant") {
		cfg.Tenant = fc.Tenant
		cfg.TenantSource = SourceFile
	}
	if md.IsDefined("timeout") {
		cfg.Timeout = fc.Timeout
	}
	if md.IsDefined("theme") {
		cfg.Theme = fc.Theme
	}
	if md.IsDefined("lang") {
		cfg.Lang = fc.Lang
	}
	if md.IsDefined("log_level") {
		cfg.LogLevel = fc.LogLevel
	}
	if md.IsDefined("log_file") {
		cfg.LogFile = expandPath(fc.LogFile)
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_TENANT"); v != "" {
		cfg.Tenant = v
		cfg.TenantSource = SourceEnv
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_LANG"); v != "" {
		cfg.Lang = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = expandPath(v)
	}
	if v := os.Getenv("TADA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_TIMEOUT %q: not a duration", v)
		}
		cfg.Timeout = d
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Tenant != "" {
		cfg.Tenant = o.Tenant
		cfg.TenantSource = SourceFlag
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
	if o.Lang != "" {
		cfg.Lang = o.Lang
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.LogFile = expandPath(o.LogFile)
	}
}

func (c *Config) validate() error {
	c.Tenant = strings.TrimSpace(c.Tenant)
	if c.Tenant == "" {
		return errors.New("tenant is empty")
	}
	if strings.ContainsAny(c.Tenant, "/?#") {
		return fmt.Errorf("tenant %q must not contain '/', '?' or '#'", c.Tenant)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// expandPath expands a leading ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
