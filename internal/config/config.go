// Package config loads runtime settings from regent.yaml and REGENT_*
// environment variables. Balance overrides in the config file are
// layered over the stock rule set, so a single yaml key can retune the
// game without a rebuild.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Config is the full runtime configuration.
type Config struct {
	DBPath string `mapstructure:"db_path"`

	// Owner identifies the local player for CLI commands.
	Owner      string `mapstructure:"owner"`
	Difficulty string `mapstructure:"difficulty"`

	// Seed pins the random source for reproducible runs; 0 means use
	// the crypto source.
	Seed int64 `mapstructure:"seed"`

	HTTP HTTPConfig `mapstructure:"http"`

	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`

	LogLevel string `mapstructure:"log_level"`

	v *viper.Viper
}

// Load reads configuration from the given file (or the default search
// paths when path is empty) and the environment. A missing config file
// is not an error; defaults and environment carry the day.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", "regent.db")
	v.SetDefault("owner", "sovereign")
	v.SetDefault("difficulty", string(realm.DifficultyNormal))
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("regent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.regent")
	}

	v.SetEnvPrefix("REGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.v = v
	return &cfg, nil
}

// Balance returns the stock rule set with any `balance:` overrides
// from the config file applied on top.
func (c *Config) Balance() (*rules.Balance, error) {
	b := rules.DefaultBalance()
	if c.v != nil && c.v.IsSet("balance") {
		if err := c.v.UnmarshalKey("balance", b); err != nil {
			return nil, fmt.Errorf("balance overrides: %w", err)
		}
	}
	return b, nil
}
