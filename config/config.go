// Package config reads tool configuration via Viper: defaults, an optional
// codecgen.toml, and CODECGEN_* environment variables, in ascending
// precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/gleamtools/codecgen/errors"
)

// Config is the tool configuration. Target-project settings (source roots,
// dependency roots) live in the project manifest, not here.
type Config struct {
	// FormatCommand is the external formatter run over written files,
	// e.g. "gleam format". Empty disables formatting.
	FormatCommand string `mapstructure:"format_command"`

	// Workers bounds concurrent per-module generation. Zero means one
	// worker per CPU.
	Workers int `mapstructure:"workers"`

	// DebounceMS is the watch-mode debounce window in milliseconds.
	DebounceMS int `mapstructure:"debounce_ms"`

	// RegenPerMinute caps watch-mode regeneration bursts.
	RegenPerMinute int `mapstructure:"regen_per_minute"`

	// JSONLogs switches logging to JSON output.
	JSONLogs bool `mapstructure:"json_logs"`
}

// SetDefaults installs default values on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format_command", "gleam format")
	v.SetDefault("workers", 0)
	v.SetDefault("debounce_ms", 300)
	v.SetDefault("regen_per_minute", 60)
	v.SetDefault("json_logs", false)
}

// Load reads configuration from defaults, an optional codecgen.toml in the
// working directory, and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CODECGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigName("codecgen")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}
