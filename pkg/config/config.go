package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"okp4/github-issues/pkg/github"
	"okp4/github-issues/pkg/output"
)

const (
	// EnvPrefix is the prefix for all environment variables, e.g.
	// GITHUB_ISSUES_REPO.
	EnvPrefix = "GITHUB_ISSUES"

	// DefaultConfigName is looked up in the working directory if no
	// config file was given explicitly.
	DefaultConfigName = ".github-issues"
)

// Config represents the full configuration
type Config struct {
	Repository  string `mapstructure:"repo"`
	Token       string `mapstructure:"token"`
	Endpoint    string `mapstructure:"endpoint"`
	Output      string `mapstructure:"output"`
	Limit       int    `mapstructure:"limit"`
	MetricsFile string `mapstructure:"metrics_file"`
	Debug       bool   `mapstructure:"debug"`

	// ClosedMilestones makes milestone lookups consider closed
	// milestones as well.
	ClosedMilestones bool `mapstructure:"closed_milestones"`
}

// NewViper prepares a viper instance reading the environment and
// the config file. A missing default config file is not an error, a
// missing explicit one is.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about
	for _, key := range []string{"repo", "endpoint", "output", "limit", "metrics_file", "debug", "closed_milestones"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	// the usual token variable is accepted as a fallback
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		return v, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	v.AddConfigPath(cwd)
	v.SetConfigType("yaml")
	v.SetConfigName(DefaultConfigName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// Load loads the configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output == "" {
		cfg.Output = output.FormatText
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Repository == "" {
		return errors.New("repository is required (--repo owner/name)")
	}

	if _, err := github.ParseRepository(c.Repository); err != nil {
		return fmt.Errorf("invalid repository %q: %w", c.Repository, err)
	}

	if c.Token == "" {
		return errors.New("no GitHub token given, set GITHUB_TOKEN or --token")
	}

	valid := false
	for _, format := range output.Formats {
		if c.Output == format {
			valid = true
		}
	}

	if !valid {
		return fmt.Errorf("invalid output format %q (must be %s)", c.Output, strings.Join(output.Formats, " or "))
	}

	if c.Limit < 0 {
		return fmt.Errorf("invalid limit %d, must be >= 0", c.Limit)
	}

	return nil
}

// Repo returns the configured repository. Only call this on a validated
// configuration.
func (c *Config) Repo() github.Repository {
	repo, _ := github.ParseRepository(c.Repository)
	return repo
}
