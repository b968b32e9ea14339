package provider

import (
	"slices"

	"github.com/maxbolgarin/errm"
)

type ProviderType string

// SupportedProviderTypes defines the supported VCS provider types
const (
	GitLab ProviderType = "gitlab"
	GitHub ProviderType = "github"
)

var supportedProviderTypes = []ProviderType{GitLab, GitHub}

// Config represents VCS provider configuration
type Config struct {
	Type    ProviderType `yaml:"type" env:"PROVIDER_TYPE"`
	BaseURL string       `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token   string       `yaml:"token" env:"PROVIDER_TOKEN"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Type == "" || !slices.Contains(supportedProviderTypes, c.Type) {
		return errm.New("invalid provider type: %s", c.Type)
	}

	return nil
}

// WithToken returns a copy of the config with the token replaced. An empty
// token keeps the configured one, so request-scoped tokens are optional.
func (c Config) WithToken(token string) Config {
	if token != "" {
		c.Token = token
	}
	return c
}
