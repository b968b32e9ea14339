package reviewer

import (
	"time"

	"github.com/gavelbot/gavel/internal/diff"
	"github.com/maxbolgarin/lang"
)

const (
	defaultFileTimeout     = 90 * time.Second
	defaultProviderTimeout = 30 * time.Second
	defaultPoolSize        = 4
	defaultMaxFiles        = 50
)

type Config struct {
	FileFilter diff.Filter `yaml:"file_filter"`

	// FileTimeout bounds one review-generation call; a file whose call
	// exceeds it is skipped, not the whole workflow.
	FileTimeout time.Duration `yaml:"file_timeout" env:"REVIEW_FILE_TIMEOUT"`

	// ProviderTimeout bounds every provider call (fetch and post) so a hung
	// upstream cannot stall a detached workflow forever.
	ProviderTimeout time.Duration `yaml:"provider_timeout" env:"REVIEW_PROVIDER_TIMEOUT"`

	PoolSize int  `yaml:"pool_size" env:"REVIEW_POOL_SIZE"`
	MaxFiles int  `yaml:"max_files" env:"REVIEW_MAX_FILES"`
	Verbose  bool `yaml:"verbose" env:"REVIEW_VERBOSE"`
}

func (c *Config) PrepareAndValidate() error {
	if len(c.FileFilter.AllowedExtensions) == 0 {
		c.FileFilter = diff.DefaultFilter()
	}
	c.FileTimeout = lang.Check(c.FileTimeout, defaultFileTimeout)
	c.ProviderTimeout = lang.Check(c.ProviderTimeout, defaultProviderTimeout)
	c.PoolSize = lang.Check(c.PoolSize, defaultPoolSize)
	c.MaxFiles = lang.Check(c.MaxFiles, defaultMaxFiles)
	return nil
}
