// Package config loads gkquad settings from defaults, an optional YAML file
// and GKQUAD_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: defaults.epsrel is read from
// GKQUAD_DEFAULTS_EPSREL.
const EnvPrefix = "GKQUAD"

// Config represents the complete gkquad configuration.
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Store    StoreConfig    `mapstructure:"store"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Source is the config file that was read, empty if none.
	Source string `mapstructure:"-"`
}

// DefaultsConfig holds tolerances used when a command does not set them.
type DefaultsConfig struct {
	EpsAbs  float64 `mapstructure:"epsabs"`
	EpsRel  float64 `mapstructure:"epsrel"`
	MaxStep float64 `mapstructure:"max_step"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	// Path is the SQLite file. Empty disables recording.
	Path string `mapstructure:"path"`
}

// EngineConfig controls job execution.
type EngineConfig struct {
	// Workers is the number of jobs run concurrently.
	Workers int `mapstructure:"workers"`
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			EpsAbs:  0,
			EpsRel:  1e-10,
			MaxStep: 1e300,
		},
		Engine:  EngineConfig{Workers: 4},
		Logging: LoggingConfig{Level: "info"},
	}
}

// setDefaults registers default values with v.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("defaults.epsabs", d.Defaults.EpsAbs)
	v.SetDefault("defaults.epsrel", d.Defaults.EpsRel)
	v.SetDefault("defaults.max_step", d.Defaults.MaxStep)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Load builds a Config. If path is non-empty that file must exist;
// otherwise gkquad.yaml is looked up in the working directory and then in
// ConfigDir, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gkquad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gkquad")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gkquad"
	}
	return filepath.Join(home, ".config", "gkquad")
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // config key, e.g. "defaults.epsrel"
	Value   any
	Message string
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate checks c and returns all validation errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !(c.Defaults.EpsAbs >= 0) {
		errs = append(errs, ValidationError{"defaults.epsabs", c.Defaults.EpsAbs, "must be >= 0"})
	}
	if !(c.Defaults.EpsRel >= 0) {
		errs = append(errs, ValidationError{"defaults.epsrel", c.Defaults.EpsRel, "must be >= 0"})
	}
	if !(c.Defaults.MaxStep > 0) {
		errs = append(errs, ValidationError{"defaults.max_step", c.Defaults.MaxStep, "must be > 0"})
	}
	if c.Engine.Workers < 1 {
		errs = append(errs, ValidationError{"engine.workers", c.Engine.Workers, "must be at least 1"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{"logging.level", c.Logging.Level,
			"must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}

	return errs
}
