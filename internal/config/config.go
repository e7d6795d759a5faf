package config

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/dpup/georef/internal/lib/monitor"
	"github.com/dpup/georef/internal/lib/routing"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. GEOREF_NETWORK__STITCH_TOLERANCE=5.
const EnvPrefix = "GEOREF_"

// Config represents the complete georef configuration
type Config struct {
	Network NetworkConfig `yaml:"network"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// NetworkConfig holds the tolerances used when assembling spots and routes
type NetworkConfig struct {
	LengthPrecision float64 `yaml:"length_precision"` // meters of slack on spot offsets
	OffsetTolerance float64 `yaml:"offset_tolerance"` // meters of slack on route start/end offsets
	StitchTolerance float64 `yaml:"stitch_tolerance"` // largest gap bridged between link geometries
	File            string  `yaml:"file"`             // default network file for the CLI
}

// MonitorConfig holds reporting sink settings
type MonitorConfig struct {
	Level       string `yaml:"level"`
	BufferSize  int    `yaml:"buffer_size"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`

	// Quiet mutes message kinds, e.g. [report, count].
	Quiet []string `yaml:"quiet"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	tol := routing.DefaultTolerances()
	opts := monitor.DefaultOptions()
	return &Config{
		Network: NetworkConfig{
			LengthPrecision: tol.LengthPrecision,
			OffsetTolerance: tol.OffsetTolerance,
			StitchTolerance: tol.StitchTolerance,
		},
		Monitor: MonitorConfig{
			Level:      opts.Level,
			BufferSize: opts.BufferSize,
			MaxSizeMB:  opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAgeDays: opts.MaxAgeDays,
		},
	}
}

// Load layers the defaults, the YAML file at path (if path is not empty) and
// GEOREF_ environment variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultConfig().toMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps GEOREF_NETWORK__STITCH_TOLERANCE to network.stitch_tolerance.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) toMap() map[string]interface{} {
	return map[string]interface{}{
		"network.length_precision": c.Network.LengthPrecision,
		"network.offset_tolerance": c.Network.OffsetTolerance,
		"network.stitch_tolerance": c.Network.StitchTolerance,
		"network.file":             c.Network.File,
		"monitor.level":            c.Monitor.Level,
		"monitor.buffer_size":      c.Monitor.BufferSize,
		"monitor.development":      c.Monitor.Development,
		"monitor.file":             c.Monitor.File,
		"monitor.max_size_mb":      c.Monitor.MaxSizeMB,
		"monitor.max_backups":      c.Monitor.MaxBackups,
		"monitor.max_age_days":     c.Monitor.MaxAgeDays,
		"monitor.compress":         c.Monitor.Compress,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	tolerances := map[string]float64{
		"network.length_precision": c.Network.LengthPrecision,
		"network.offset_tolerance": c.Network.OffsetTolerance,
		"network.stitch_tolerance": c.Network.StitchTolerance,
	}
	for key, v := range tolerances {
		if math.IsNaN(v) || v < 0 {
			return errors.Newf("%s must be a non-negative number, got %v", key, v)
		}
	}

	if c.Monitor.BufferSize <= 0 {
		return errors.Newf("monitor.buffer_size must be positive, got %d", c.Monitor.BufferSize)
	}
	if _, err := zapcore.ParseLevel(c.Monitor.Level); err != nil {
		return errors.Wrap(err, "monitor.level")
	}
	if err := monitor.CheckQuiet(c.Monitor.Quiet); err != nil {
		return errors.Wrap(err, "monitor.quiet")
	}
	return nil
}

// Tolerances converts the network section for a routing.Assembler.
func (n NetworkConfig) Tolerances() routing.Tolerances {
	return routing.Tolerances{
		LengthPrecision: n.LengthPrecision,
		OffsetTolerance: n.OffsetTolerance,
		StitchTolerance: n.StitchTolerance,
	}
}

// Options converts the monitor section for monitor.New.
func (m MonitorConfig) Options() monitor.Options {
	opts := monitor.DefaultOptions()
	opts.Level = m.Level
	opts.BufferSize = m.BufferSize
	opts.Development = m.Development
	opts.File = m.File
	opts.MaxSizeMB = m.MaxSizeMB
	opts.MaxBackups = m.MaxBackups
	opts.MaxAgeDays = m.MaxAgeDays
	opts.Compress = m.Compress
	opts.Quiet = m.Quiet
	return opts
}
