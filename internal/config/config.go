// Package config loads and validates the cellctl configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "CELLCTL_CONFIG"

// Defaults applied for fields the file leaves unset.
const (
	DefaultToolBinary = "jailhouse"
	DefaultTimeout    = 10 * time.Second
	DefaultLogLevel   = "info"
)

// Duration wraps time.Duration so YAML can carry values like "10s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full cellctl configuration.
type Config struct {
	// ToolBinary is the path of the Jailhouse management binary.
	ToolBinary string `yaml:"tool_binary"`
	// Timeout bounds one tool invocation.
	Timeout Duration `yaml:"timeout"`
	// LogLevel is one of zerolog's level names (trace..error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ToolBinary: DefaultToolBinary,
		Timeout:    Duration(DefaultTimeout),
		LogLevel:   DefaultLogLevel,
	}
}

// Parse unmarshals YAML content into a Config, applying defaults for
// missing fields and validating the result.
func Parse(content []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(content)
}

// Resolve returns the configuration from the explicit path, the
// CELLCTL_CONFIG environment variable, or defaults, in that order.
func Resolve(flagPath string, environ []string) (Config, error) {
	if flagPath != "" {
		return Load(flagPath)
	}
	for _, env := range environ {
		if path, ok := strings.CutPrefix(env, EnvConfigPath+"="); ok && path != "" {
			return Load(path)
		}
	}
	return Default(), nil
}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c Config) validate() error {
	if c.ToolBinary == "" {
		return fmt.Errorf("tool_binary: must not be empty")
	}
	if c.Timeout.Std() <= 0 {
		return fmt.Errorf("timeout: must be positive, got %s", c.Timeout.Std())
	}
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("log_level: '%s' is not valid, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}
	return nil
}
