package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/datanode/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI verbosity values accepted by [ConfigOverride.LogLvl]. Values outside the
// range are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultHTTPMethod is the request method of HTTP nodes
	DefaultHTTPMethod = "GET"

	// DefaultHTTPTimeout bounds a whole HTTP exchange. 0 disables the timeout.
	DefaultHTTPTimeout = 30 * time.Second

	DefaultUserAgent = "datanode/1.0"

	// DefaultDirPerm is used for directories created by Mkdirs/Create
	DefaultDirPerm os.FileMode = 0o755

	// DefaultFilePerm is used for files created by Touch/Create/OpenWriter
	DefaultFilePerm os.FileMode = 0o644
)

// Config contains runtime configuration values for nodes.
type Config struct {
	LogLvl      util.LogLevel     // Internal log level (Default info)
	HTTPMethod  string            // Request method of HTTP nodes (Default GET)
	HTTPTimeout time.Duration     // Timeout of one HTTP exchange (Default 30s)
	UserAgent   string            // User-Agent header sent by HTTP nodes
	Headers     map[string]string // Extra headers sent by HTTP nodes
	DirPerm     os.FileMode       // Mode of created directories (Default 0755)
	FilePerm    os.FileMode       // Mode of created files (Default 0644)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace)
	LogLvl      *int              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	HTTPMethod  *string           `yaml:"http_method,omitempty" json:"http_method,omitempty"`
	HTTPTimeout *string           `yaml:"http_timeout,omitempty" json:"http_timeout,omitempty"` // time.ParseDuration format
	UserAgent   *string           `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	DirPerm     *uint32           `yaml:"dir_perm,omitempty" json:"dir_perm,omitempty"`
	FilePerm    *uint32           `yaml:"file_perm,omitempty" json:"file_perm,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:      DefaultLogLvl,
		HTTPMethod:  DefaultHTTPMethod,
		HTTPTimeout: DefaultHTTPTimeout,
		UserAgent:   DefaultUserAgent,
		Headers:     map[string]string{},
		DirPerm:     DefaultDirPerm,
		FilePerm:    DefaultFilePerm,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
// An unparsable HTTPTimeout is ignored; use [ConfigOverride.Validate] to catch it.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.HTTPMethod != nil {
		c.HTTPMethod = strings.ToUpper(*override.HTTPMethod)
	}
	if override.HTTPTimeout != nil {
		if d, err := time.ParseDuration(*override.HTTPTimeout); err == nil {
			c.HTTPTimeout = d
		}
	}
	if override.UserAgent != nil {
		c.UserAgent = *override.UserAgent
	}
	if len(override.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(override.Headers))
		}
		for k, v := range override.Headers {
			c.Headers[k] = v
		}
	}
	c.DirPerm = os.FileMode(util.ValueOr(override.DirPerm, uint32(c.DirPerm)))
	c.FilePerm = os.FileMode(util.ValueOr(override.FilePerm, uint32(c.FilePerm)))
}

// Validate checks the override values that cannot be checked by their type.
func (o *ConfigOverride) Validate() error {
	if o.HTTPTimeout != nil {
		if _, err := time.ParseDuration(*o.HTTPTimeout); err != nil {
			return fmt.Errorf("invalid http_timeout: %w", err)
		}
	}
	if o.HTTPMethod != nil && strings.TrimSpace(*o.HTTPMethod) == "" {
		return fmt.Errorf("http_method must not be empty")
	}
	return nil
}

// VerboseToLogLevel converts a CLI verbosity (1 error .. 5 trace) to a
// [util.LogLevel], clamping out of range values.
func VerboseToLogLevel(verbose int) util.LogLevel {
	if verbose < ErrorVerbose {
		verbose = ErrorVerbose
	}
	if verbose > TraceVerbose {
		verbose = TraceVerbose
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	if err := override.Validate(); err != nil {
		return nil, err
	}
	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
