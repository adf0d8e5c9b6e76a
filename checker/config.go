package checker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/hashcheck/digester"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrConfig is returned for an unreadable or invalid
// configuration.
var ErrConfig = errors.New("invalid configuration")

// Templates holds the text report lines. Placeholders
// use single braces: {target}, {check_file},
// {algorithm}, {check} and {digest}.
type Templates struct {
	Header   string `yaml:"header"`
	Match    string `yaml:"match"`
	Mismatch string `yaml:"mismatch"`
}

// Config holds the settings of a run. Use DefaultConfig
// or LoadConfig to obtain one with every field set.
type Config struct {
	// Algorithm names the digest algorithm.
	Algorithm string `yaml:"algorithm"`

	// BufferSize is the read chunk size in bytes.
	BufferSize int `yaml:"buffer_size"`

	// Quiet suppresses informational output. Error
	// messages are always printed.
	Quiet bool `yaml:"quiet"`

	// Format is FormatText or FormatJSON.
	Format string `yaml:"format"`

	// LogLevel is the slog level for diagnostics.
	LogLevel string `yaml:"log_level"`

	Templates Templates `yaml:"templates"`
}

// DefaultConfig returns the settings used when no
// configuration file is given.
func DefaultConfig() Config {
	return Config{
		Algorithm:  digester.DefaultAlgorithm,
		BufferSize: digester.DefaultBufferSize,
		Format:     FormatText,
		LogLevel:   "warn",
		Templates: Templates{
			Header:   "Checking the {algorithm} hash of [{target}]",
			Match:    "No differences found",
			Mismatch: "\nCheck is : {check}\nDigest is: {digest}",
		},
	}
}

// LoadConfig reads a YAML configuration file. Keys
// absent from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	const errCtx = "loading config"

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w: %w", errCtx, ErrConfig, err)
	}

	cfg := DefaultConfig()

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w: %w", errCtx, ErrConfig, err)
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

// withDefaults fills empty fields from DefaultConfig.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig()

	if cfg.Algorithm == "" {
		cfg.Algorithm = def.Algorithm
	}

	if cfg.BufferSize == 0 {
		cfg.BufferSize = def.BufferSize
	}

	if cfg.Format == "" {
		cfg.Format = def.Format
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}

	if cfg.Templates.Header == "" {
		cfg.Templates.Header = def.Templates.Header
	}

	if cfg.Templates.Match == "" {
		cfg.Templates.Match = def.Templates.Match
	}

	if cfg.Templates.Mismatch == "" {
		cfg.Templates.Mismatch = def.Templates.Mismatch
	}

	return cfg
}

// Validate checks the format, log level and buffer size.
// An unknown algorithm is not a configuration error: it
// is reported by the run itself.
func (cfg Config) Validate() error {
	const errCtx = "validating config"

	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return fmt.Errorf(
			"%s: %w: unknown format %q",
			errCtx, ErrConfig, cfg.Format,
		)
	}

	if cfg.BufferSize < 0 {
		return fmt.Errorf(
			"%s: %w: negative buffer size %d",
			errCtx, ErrConfig, cfg.BufferSize,
		)
	}

	if cfg.BufferSize > digester.MaxBufferSize {
		return fmt.Errorf(
			"%s: %w: buffer size %d exceeds %d",
			errCtx, ErrConfig, cfg.BufferSize, digester.MaxBufferSize,
		)
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Level parses LogLevel. An empty level means warn.
func (cfg Config) Level() (slog.Level, error) {
	if cfg.LogLevel == "" {
		return slog.LevelWarn, nil
	}

	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return lvl, nil
}
