package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Load constructs a new *Config by merging (in increasing precedence order):
//  1. built-in defaults (see New())
//  2. YAML config file (default $HOME/.atlas-provision/config.yaml, override via --config / ATLAS_CONFIG_FILE)
//  3. environment variables, after exporting any .env file that does not override them
//  4. command-line flags bound on the provided *cobra.Command
//
// The resulting configuration is validated before being returned.
//
// Pass nil for cmd if you do not wish to bind flags (e.g., in tests).
func Load(cmd *cobra.Command, explicitPath string) (*Config, error) {
	cfg := New()

	if err := loadEnvFile(cmd); err != nil {
		return nil, err
	}

	v := viper.New()

	// ---------- 1. Defaults ----------
	v.SetDefault("output", string(cfg.Output))
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("pollInterval", cfg.PollInterval)

	// ---------- 2. Config file ----------
	if explicitPath == "" {
		explicitPath = os.Getenv("ATLAS_CONFIG_FILE")
	}

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit path must exist.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// ---------- 3. Environment variables ----------
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// First name wins when several are set.
	_ = v.BindEnv("publicKey", "ATLAS_PUBLIC_KEY", "ATLAS_PUB_KEY")
	_ = v.BindEnv("privateKey", "ATLAS_PRIVATE_KEY", "ATLAS_API_KEY")
	_ = v.BindEnv("orgId", "ATLAS_ORG_ID")
	_ = v.BindEnv("baseUrl", "ATLAS_BASE_URL")
	_ = v.BindEnv("pollInterval", "ATLAS_POLL_INTERVAL")
	_ = v.BindEnv("dbUser", "ATLAS_DB_USER", "DB_USER")
	_ = v.BindEnv("dbPassword", "ATLAS_DB_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("logFile", "ATLAS_LOG_FILE")
	_ = v.BindEnv("metricsFile", "ATLAS_METRICS_FILE")

	// ---------- 4. Flags ----------
	if cmd != nil {
		bind := func(key string, name string) {
			if f := cmd.Flags().Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
		bind("output", "output")
		bind("timeout", "timeout")
		bind("orgId", "org-id")
		bind("baseUrl", "base-url")
		bind("publicKey", "pub-key")
		bind("privateKey", "api-key")
		bind("pollInterval", "poll-interval")
		bind("logFile", "log-file")
		bind("metricsFile", "metrics-file")
	}

	// ---------- Unmarshal ----------
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile exports KEY=VALUE pairs from the --env-file flag (default
// .env). Variables already present in the environment keep their values.
func loadEnvFile(cmd *cobra.Command) error {
	path := DefaultEnvFile
	explicit := false
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil {
			path = f.Value.String()
			explicit = f.Changed
		}
	}
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read env file: %w", err)
	}

	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
