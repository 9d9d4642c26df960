// Package config loads interner settings from a YAML file and INTERNER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/interner/pkg/backend"
	"github.com/Sumatoshi-tech/interner/pkg/hashing"
	"github.com/Sumatoshi-tech/interner/pkg/interner"
	"github.com/Sumatoshi-tech/interner/pkg/observability"
	"github.com/Sumatoshi-tech/interner/pkg/symbol"
	"github.com/Sumatoshi-tech/interner/pkg/units"
)

// Sentinel validation errors.
var (
	ErrInvalidCapacity     = errors.New("capacity must not be negative")
	ErrInvalidByteCapacity = errors.New("invalid byte capacity")
)

// envPrefix is prepended to every environment override, e.g. INTERNER_BACKEND_KIND.
const envPrefix = "INTERNER"

// Config holds all interner configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Hasher  HasherConfig  `mapstructure:"hasher"`
	Logging LoggingConfig `mapstructure:"logging"`

	byteCapacity int
}

// BackendConfig selects and presizes the string storage.
type BackendConfig struct {
	Kind         string `mapstructure:"kind"`
	Capacity     int    `mapstructure:"capacity"`
	ByteCapacity string `mapstructure:"byte_capacity"`
}

// HasherConfig selects the hash function of the deduplication index.
type HasherConfig struct {
	Kind string `mapstructure:"kind"`
	Seed uint64 `mapstructure:"seed"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from configPath, or from interner.yaml in the
// usual locations when configPath is empty, then applies environment overrides.
// A missing file in the usual locations is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("interner")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/interner")
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

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("backend.kind", DefaultBackendKind)
	viperCfg.SetDefault("backend.capacity", DefaultCapacity)
	viperCfg.SetDefault("backend.byte_capacity", DefaultByteCapacity)

	viperCfg.SetDefault("hasher.kind", DefaultHasherKind)
	viperCfg.SetDefault("hasher.seed", DefaultHasherSeed)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
}

// validateConfig validates the configuration and normalises names.
func validateConfig(config *Config) error {
	kind, err := backend.ParseKind(config.Backend.Kind)
	if err != nil {
		return err
	}

	config.Backend.Kind = string(kind)

	if config.Backend.Capacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, config.Backend.Capacity)
	}

	config.byteCapacity, err = units.ParseBytes(config.Backend.ByteCapacity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidByteCapacity, err)
	}

	hasher, err := hashing.ParseKind(config.Hasher.Kind)
	if err != nil {
		return err
	}

	config.Hasher.Kind = string(hasher)

	return nil
}

// ByteCapacity returns the parsed byte capacity of a loaded config.
func (c *Config) ByteCapacity() int {
	return c.byteCapacity
}

// NewLogger builds the logger described by the logging section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	logger, err := observability.NewLogger(observability.LoggingConfig{
		Level:     c.Logging.Level,
		Format:    observability.Format(c.Logging.Format),
		Service:   serviceName,
		Component: "interner",
	}, w)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	return logger, nil
}

// InternerOptions translates a loaded config into interner options. A nil
// logger keeps the interner silent.
func InternerOptions[S symbol.Symbol](c *Config, logger *slog.Logger) ([]interner.Option[S], error) {
	hasher, err := hashing.New(hashing.Kind(c.Hasher.Kind), c.Hasher.Seed)
	if err != nil {
		return nil, fmt.Errorf("hasher: %w", err)
	}

	opts := []interner.Option[S]{
		interner.WithBackend[S](backend.Kind(c.Backend.Kind)),
		interner.WithCapacity[S](c.Backend.Capacity),
		interner.WithByteCapacity[S](c.byteCapacity),
		interner.WithHasher[S](hasher),
	}

	if logger != nil {
		opts = append(opts, interner.WithLogger[S](logger))
	}

	return opts, nil
}
