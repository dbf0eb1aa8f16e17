package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirrobot01/torbox/internal/request"
	"github.com/sirrobot01/torbox/pkg/torbox"
	"github.com/spf13/viper"
)

const fileName = "config.json"

// Defaults feeds torbox.Defaults. SkipCache is applied by the CLI to every read
// command.
type Defaults struct {
	SkipCache      bool `mapstructure:"skip_cache" json:"skip_cache,omitempty"`
	QueuedLimit    int  `mapstructure:"queued_limit" json:"queued_limit,omitempty"`
	SeedingMode    int  `mapstructure:"seeding" json:"seeding,omitempty"`
	PostProcessing int  `mapstructure:"post_processing" json:"post_processing,omitempty"`
	AllowZip       bool `mapstructure:"allow_zip" json:"allow_zip,omitempty"`
}

type Config struct {
	LogLevel   string        `mapstructure:"log_level" json:"log_level,omitempty"`
	LogDir     string        `mapstructure:"log_dir" json:"log_dir,omitempty"`
	APIKey     string        `mapstructure:"api_key" json:"api_key,omitempty"`
	BaseURL    string        `mapstructure:"base_url" json:"base_url,omitempty"`
	RateLimit  string        `mapstructure:"rate_limit" json:"rate_limit,omitempty"` // 200/minute or 10/second
	Proxy      string        `mapstructure:"proxy" json:"proxy,omitempty"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries,omitempty"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
	Defaults   Defaults      `mapstructure:"defaults" json:"defaults,omitempty"`
	Path       string        `mapstructure:"-" json:"-"` // data folder holding config.json
}

func (c *Config) JsonFile() string {
	return filepath.Join(c.Path, fileName)
}

func setDefaults(v *viper.Viper) {
	d := torbox.DefaultDefaults()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", torbox.DefaultBaseURL)
	v.SetDefault("rate_limit", "")
	v.SetDefault("proxy", "")
	v.SetDefault("max_retries", 0)
	v.SetDefault("timeout", "60s")
	v.SetDefault("defaults.skip_cache", false)
	v.SetDefault("defaults.queued_limit", d.QueuedLimit)
	v.SetDefault("defaults.seeding", int(d.SeedingMode))
	v.SetDefault("defaults.post_processing", int(d.PostProcessing))
	v.SetDefault("defaults.allow_zip", d.AllowZip)
}

// Load reads config.json from dir, when present, and applies TORBOX_* environment
// overrides on top (TORBOX_API_KEY, TORBOX_DEFAULTS_QUEUED_LIMIT, ...).
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	v.SetEnvPrefix("TORBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Path = dir
	if cfg.LogDir == "" {
		cfg.LogDir = dir
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDefaults(d *Defaults) error {
	if d.SeedingMode < int(torbox.SeedAuto) || d.SeedingMode > int(torbox.SeedNever) {
		return fmt.Errorf("seeding must be between %d and %d", torbox.SeedAuto, torbox.SeedNever)
	}
	if d.PostProcessing < int(torbox.PostProcessDefault) || d.PostProcessing > int(torbox.PostProcessRepairUnpackClean) {
		return fmt.Errorf("post_processing must be between %d and %d", torbox.PostProcessDefault, torbox.PostProcessRepairUnpackClean)
	}
	if d.QueuedLimit < 0 {
		return errors.New("queued_limit cannot be negative")
	}
	return nil
}

func ValidateConfig(config *Config) error {
	if config.APIKey == "" {
		return errors.New("api key is required")
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return fmt.Errorf("invalid base url %q: %w", config.BaseURL, err)
	}
	if config.RateLimit != "" && request.ParseRateLimit(config.RateLimit) == nil {
		return fmt.Errorf("invalid rate limit %q, expected e.g. 200/minute or 10/second", config.RateLimit)
	}
	if config.MaxRetries < 0 {
		return errors.New("max_retries cannot be negative")
	}
	if config.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if err := validateDefaults(&config.Defaults); err != nil {
		return fmt.Errorf("defaults validation error: %w", err)
	}
	return nil
}

// TorboxOptions turns the configuration into client options. The logger is left to
// the caller.
func (c *Config) TorboxOptions() []torbox.Option {
	return []torbox.Option{
		torbox.WithBaseURL(c.BaseURL),
		torbox.WithRateLimit(c.RateLimit),
		torbox.WithProxy(c.Proxy),
		torbox.WithMaxRetries(c.MaxRetries),
		torbox.WithTimeout(c.Timeout),
		torbox.WithDefaults(torbox.Defaults{
			QueuedLimit:    c.Defaults.QueuedLimit,
			SeedingMode:    torbox.SeedingMode(c.Defaults.SeedingMode),
			PostProcessing: torbox.PostProcessing(c.Defaults.PostProcessing),
			AllowZip:       c.Defaults.AllowZip,
		}),
	}
}
