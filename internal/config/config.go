// Package config defines the runtime configuration model and helpers.
package config

import (
	"fmt"
	"time"
)

// OutputFormat represents the supported output serialization formats.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputText  OutputFormat = "text"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// DefaultTimeout bounds each Atlas API request when `--timeout`,
// `ATLAS_TIMEOUT` or the `timeout` YAML key is not set.
const DefaultTimeout = 30 * time.Second

// DefaultPollInterval is the delay between cluster readiness checks.
const DefaultPollInterval = 30 * time.Second

// DefaultConfigDir is the directory under the user's home for config files.
const DefaultConfigDir = ".atlas-provision"

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Config is the fully-resolved runtime configuration for a single command invocation.
//
// Use `mapstructure` tags so Viper can unmarshal seamlessly regardless of source.
// CamelCase YAML keys are the preferred canonical spelling in config files.
type Config struct {
	OrgID   string `mapstructure:"orgId" yaml:"orgId"`
	BaseURL string `mapstructure:"baseUrl" yaml:"baseUrl"`

	Output       OutputFormat  `mapstructure:"output" yaml:"output"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PollInterval time.Duration `mapstructure:"pollInterval" yaml:"pollInterval"`

	// Credentials (avoid printing/logging!)
	PublicKey  string `mapstructure:"publicKey" yaml:"publicKey"`
	PrivateKey string `mapstructure:"privateKey" yaml:"privateKey"`

	// Database user created on new clusters; empty means the built-in default.
	DBUser     string `mapstructure:"dbUser" yaml:"dbUser"`
	DBPassword string `mapstructure:"dbPassword" yaml:"dbPassword"`

	LogFile     string `mapstructure:"logFile" yaml:"logFile"`
	MetricsFile string `mapstructure:"metricsFile" yaml:"metricsFile"`
}

// New returns a Config populated with builtin defaults.
func New() *Config {
	return &Config{
		Output:       OutputText,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// ResolveOrgID resolves the organization ID from flag value or configuration.
// If flagValue is provided, it takes precedence.
func (c *Config) ResolveOrgID(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.OrgID
}

// Validate performs sanity checks after the full precedence merge.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputText, OutputJSON, OutputYAML, "":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	return nil
}
