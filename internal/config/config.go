// Package config loads and validates citesweep configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Wiki    WikiConfig    `mapstructure:"wiki"`
	Parse   ParseConfig   `mapstructure:"parse"`
	DB      DBConfig      `mapstructure:"db"`
	Debug   DebugConfig   `mapstructure:"debug"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WikiConfig identifies the source wiki.
type WikiConfig struct {
	Domain    string `mapstructure:"domain"`
	UserAgent string `mapstructure:"user_agent"`
}

// ParseConfig governs batching and snippet extraction.
type ParseConfig struct {
	BatchSize      int    `mapstructure:"batch_size"`
	Workers        int    `mapstructure:"workers"`
	MaxFailures    int    `mapstructure:"max_failures"`
	SnippetMinSize int    `mapstructure:"snippet_min_size"`
	SnippetMaxSize int    `mapstructure:"snippet_max_size"`
	LeadSection    string `mapstructure:"lead_section"`
	FetchTimeoutS  int    `mapstructure:"fetch_timeout_seconds"`
}

// DBConfig controls access to the Postgres scratch database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// DebugConfig configures the optional debug HTTP listener.
type DebugConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CITESWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wiki.domain", "en.wikipedia.org")
	v.SetDefault("wiki.user_agent", "citesweep/0.1 (+https://github.com/citesweep/citesweep)")
	v.SetDefault("parse.batch_size", 32)
	v.SetDefault("parse.workers", 4)
	v.SetDefault("parse.max_failures", 5)
	v.SetDefault("parse.snippet_min_size", 100)
	v.SetDefault("parse.snippet_max_size", 10000)
	v.SetDefault("parse.lead_section", "")
	v.SetDefault("parse.fetch_timeout_seconds", 30)
	v.SetDefault("db.max_conns", 2)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Wiki.Domain == "" {
		return fmt.Errorf("wiki.domain must be set")
	}
	if c.Parse.BatchSize <= 0 {
		return fmt.Errorf("parse.batch_size must be > 0")
	}
	if c.Parse.Workers <= 0 {
		return fmt.Errorf("parse.workers must be > 0")
	}
	if c.Parse.MaxFailures < 0 {
		return fmt.Errorf("parse.max_failures must be >= 0")
	}
	if c.Parse.SnippetMinSize < 0 || c.Parse.SnippetMaxSize < c.Parse.SnippetMinSize {
		return fmt.Errorf("parse snippet size bounds are inconsistent")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set")
	}
	return nil
}

// BaseURL returns the https base URL of the source wiki.
func (c Config) BaseURL() string {
	return "https://" + c.Wiki.Domain
}

// WikiURL returns the article URL prefix.
func (c Config) WikiURL() string {
	return c.BaseURL() + "/wiki/"
}

// APIURL returns the Action API endpoint.
func (c Config) APIURL() string {
	return c.BaseURL() + "/w/api.php"
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Parse.FetchTimeoutS) * time.Second
}
