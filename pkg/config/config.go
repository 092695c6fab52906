// Package config loads the report tool configuration from defaults, a YAML
// file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"sigs.k8s.io/yaml"

	"github.com/zrs-products/accel-report/pkg/detectors"
	"github.com/zrs-products/accel-report/pkg/device"
)

// EnvReportDir overrides the report directory.
const EnvReportDir = "ACCEL_REPORT_DIR"

// Config is the report tool configuration.
type Config struct {
	// ReportDir is where the report is written. "~" is expanded.
	ReportDir string `json:"reportDir,omitempty"`

	// TextSummary also writes a plain-text table next to the JSON report.
	TextSummary bool `json:"textSummary,omitempty"`

	// DisabledBackends lists backends that are never probed ("metal", "cuda").
	DisabledBackends []string `json:"disabledBackends,omitempty"`

	// NVMLLibraryPath points at a non-default libnvidia-ml.
	NVMLLibraryPath string `json:"nvmlLibraryPath,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReportDir: DefaultReportDir(),
	}
}

// DefaultReportDir returns ~/.accel-report/logs, or a directory under the
// OS temp dir when the home directory cannot be determined.
func DefaultReportDir() string {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "accel-report", "logs")
	}
	return filepath.Join(home, ".accel-report", "logs")
}

// LoadFromFile reads a YAML configuration file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return LoadFromData(data)
}

// LoadFromData parses YAML data on top of the defaults.
func LoadFromData(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty configuration data")
	}

	config := Default()
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Load returns the defaults, overlaid with path (when non-empty) and then
// with the environment.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		var err error
		if config, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	config.ApplyEnv(os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvReportDir); ok && strings.TrimSpace(v) != "" {
		c.ReportDir = v
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if strings.TrimSpace(c.ReportDir) == "" {
		return fmt.Errorf("reportDir is required")
	}

	for i, name := range c.DisabledBackends {
		kind, ok := detectors.ParseKind(name)
		if !ok {
			return fmt.Errorf("disabledBackends[%d]: unknown backend %q", i, name)
		}
		if kind == detectors.KindCPU {
			return fmt.Errorf("disabledBackends[%d]: the cpu backend cannot be disabled", i)
		}
	}

	return nil
}

// ResolvedReportDir expands "~" and returns an absolute path.
func (c *Config) ResolvedReportDir() (string, error) {
	dir, err := homedir.Expand(c.ReportDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", c.ReportDir, err)
	}
	return filepath.Abs(dir)
}

// DeviceOptions converts the configuration into runtime options.
// Validate must have succeeded.
func (c *Config) DeviceOptions() device.Options {
	opts := device.Options{NVMLLibraryPath: c.NVMLLibraryPath}
	for _, name := range c.DisabledBackends {
		if kind, ok := detectors.ParseKind(name); ok {
			opts.DisabledBackends = append(opts.DisabledBackends, kind)
		}
	}
	return opts
}
