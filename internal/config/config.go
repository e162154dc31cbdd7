package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envConfigPath = "TENANTSHELL_CONFIG"

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Tenant   TenantConfig
	Plugins  PluginsConfig
	Auth     AuthConfig
	Theme    ThemeConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// TenantConfig describes the tenant this shell is built for.
type TenantConfig struct {
	ID              string
	Name            string
	Role            string
	EnabledFeatures []string `mapstructure:"enabled_features"`
	PrimaryColor    string   `mapstructure:"primary_color"`
	HomeRoute       string   `mapstructure:"home_route"`
}

// PluginsConfig points at the manifest directory.
type PluginsConfig struct {
	ManifestDir string `mapstructure:"manifest_dir"`
	Watch       bool
}

// AuthConfig holds the offline authenticator settings.
type AuthConfig struct {
	TokenSecret  string        `mapstructure:"token_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	DemoUser     string        `mapstructure:"demo_user"`
	DemoPassword string        `mapstructure:"demo_password"`
}

type ThemeConfig struct {
	BackendURL   string        `mapstructure:"backend_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type LogConfig struct {
	Level   string
	NoColor bool `mapstructure:"no_color"`
	File    string
}

type MetricsConfig struct {
	Addr string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "tenantshell")
}

// Path returns the config file location, honouring TENANTSHELL_CONFIG.
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "tenantshell", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix TENANTSHELL_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(dataDir(), "tenantshell.db"))
	v.SetDefault("tenant.id", "default")
	v.SetDefault("tenant.name", "Tenant Shell")
	v.SetDefault("tenant.role", "member")
	v.SetDefault("tenant.enabled_features", []string{})
	v.SetDefault("tenant.primary_color", "#7D56F4")
	v.SetDefault("tenant.home_route", "Home")
	v.SetDefault("plugins.manifest_dir", filepath.Join(os.Getenv("HOME"), ".config", "tenantshell", "plugins"))
	v.SetDefault("plugins.watch", true)
	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.demo_user", "demo")
	v.SetDefault("auth.demo_password", "demo")
	v.SetDefault("theme.backend_url", "")
	v.SetDefault("theme.poll_interval", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.no_color", false)
	v.SetDefault("log.file", filepath.Join(dataDir(), "tenantshell.log"))
	v.SetDefault("metrics.addr", "")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv(envConfigPath); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tenantshell"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TENANTSHELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the shell cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Tenant.ID) == "" {
		return fmt.Errorf("validate config: tenant.id is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("validate config: auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Theme.PollInterval <= 0 {
		return fmt.Errorf("validate config: theme.poll_interval must be positive, got %s", c.Theme.PollInterval)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token secret is never written; keep it in TENANTSHELL_AUTH_TOKEN_SECRET.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("tenant.id", cfg.Tenant.ID)
	v.Set("tenant.name", cfg.Tenant.Name)
	v.Set("tenant.role", cfg.Tenant.Role)
	v.Set("tenant.enabled_features", cfg.Tenant.EnabledFeatures)
	v.Set("tenant.primary_color", cfg.Tenant.PrimaryColor)
	v.Set("tenant.home_route", cfg.Tenant.HomeRoute)
	v.Set("plugins.manifest_dir", cfg.Plugins.ManifestDir)
	v.Set("plugins.watch", cfg.Plugins.Watch)
	v.Set("auth.token_ttl", cfg.Auth.TokenTTL.String())
	v.Set("auth.demo_user", cfg.Auth.DemoUser)
	v.Set("theme.backend_url", cfg.Theme.BackendURL)
	v.Set("theme.poll_interval", cfg.Theme.PollInterval.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.no_color", cfg.Log.NoColor)
	v.Set("log.file", cfg.Log.File)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
