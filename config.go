package depot

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const defaultInitialCapacity = 256

// Config holds the per-world settings. Nothing here is global: two worlds
// built from different configs share no state.
type Config struct {
	// InitialCapacity is the row capacity of a freshly created archetype.
	InitialCapacity int `yaml:"initial_capacity"`
	// RecycleEntityIDs reuses ids of removed entities, oldest first. Ids are
	// strictly monotonic when false.
	RecycleEntityIDs bool `yaml:"recycle_entity_ids"`
	// QueryCacheCapacity bounds the number of distinct queries; zero is unbounded.
	QueryCacheCapacity int `yaml:"query_cache_capacity"`
	// LogLevel builds the world logger with NewLogger when Logger is nil. An
	// empty level leaves the world silent.
	LogLevel string `yaml:"log_level"`

	Logger *zap.Logger `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		InitialCapacity: defaultInitialCapacity,
		LogLevel:        "info",
	}
}

// LoadConfig decodes a YAML document over DefaultConfig. An empty document
// yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("initial_capacity must not be negative, got %d", c.InitialCapacity)
	}
	if c.QueryCacheCapacity < 0 {
		return fmt.Errorf("query_cache_capacity must not be negative, got %d", c.QueryCacheCapacity)
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = defaultInitialCapacity
	}
	if c.Logger == nil && c.LogLevel != "" {
		if logger, err := NewLogger(c.LogLevel); err == nil {
			c.Logger = logger
		}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// NewLogger builds a JSON zap logger on stderr at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}
