package config

import (
	"github.com/gavelbot/gavel/internal/agent"
	"github.com/gavelbot/gavel/internal/cache"
	"github.com/gavelbot/gavel/internal/provider"
	"github.com/gavelbot/gavel/internal/reviewer"
	"github.com/gavelbot/gavel/internal/server"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
)

// Config represents the main application configuration
type Config struct {
	Server   server.Config   `yaml:"server"`
	Provider provider.Config `yaml:"provider"`
	Agent    agent.Config    `yaml:"agent"`
	Reviewer reviewer.Config `yaml:"reviewer"`
	Cache    cache.Config    `yaml:"cache"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Load reads configuration from the YAML file at path (when given) with
// environment variables layered on top; an empty path reads environment
// only. Component-level defaults are applied by each component's
// PrepareAndValidate on construction, not here.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read config file")
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read config from environment")
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the cross-component essentials before any component is
// built, so a misconfigured service fails at startup, not mid-review.
func (c *Config) Validate() error {
	if c.Provider.Type == "" {
		return ErrMissingProviderType
	}
	if c.Provider.Token == "" {
		return ErrMissingProviderToken
	}
	if c.Agent.Type == "" {
		return ErrMissingAgentType
	}
	if c.Agent.APIKey == "" {
		return ErrMissingAgentAPIKey
	}
	return nil
}
