// Package config loads tsparse configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrNegativeTimeout     = errors.New("parser timeout must not be negative")
	ErrNegativeCancelAfter = errors.New("parser cancel_after must not be negative")
	ErrInvalidLogLevel     = errors.New("invalid logging level")
	ErrInvalidLogFormat    = errors.New("invalid logging format")
	ErrInvalidSizeFormat   = errors.New("invalid size format")
)

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = FormatText

	FormatText = "text"
	FormatJSON = "json"

	envPrefix = "TSPARSE"
)

// Config holds all configuration for tsparse.
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ParserConfig holds parse session settings.
type ParserConfig struct {
	Language    string        `mapstructure:"language"`
	RangesFile  string        `mapstructure:"ranges_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CancelAfter time.Duration `mapstructure:"cancel_after"`
	// MaxSourceSize caps the input size, e.g. "16MiB". Empty or "0" means no limit.
	MaxSourceSize string `mapstructure:"max_source_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from configPath, or from .tsparse.yaml in
// the working or home directory when configPath is empty, and from
// TSPARSE_* environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".tsparse")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("parser.language", "")
	viperCfg.SetDefault("parser.ranges_file", "")
	viperCfg.SetDefault("parser.timeout", "0s")
	viperCfg.SetDefault("parser.cancel_after", "0s")
	viperCfg.SetDefault("parser.max_source_size", "")

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
}

func validateConfig(config *Config) error {
	if config.Parser.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeTimeout, config.Parser.Timeout)
	}

	if config.Parser.CancelAfter < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeCancelAfter, config.Parser.CancelAfter)
	}

	if _, err := ParseSize(config.Parser.MaxSourceSize); err != nil {
		return err
	}

	if _, err := config.Logging.SlogLevel(); err != nil {
		return err
	}

	switch config.Logging.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}

// SlogLevel converts the configured level name.
func (lc LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(lc.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, lc.Level)
	}

	return level, nil
}

// ParseSize parses a human-readable size string, returning 0 for empty or "0".
func ParseSize(sizeValue string) (uint64, error) {
	trimmed := strings.TrimSpace(sizeValue)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	parsed, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSizeFormat, sizeValue)
	}

	return parsed, nil
}
