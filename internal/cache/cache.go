// Package cache provides a generic TTL memoization store. It is a cost and
// latency optimization only: callers must behave correctly when every lookup
// misses. The store is an explicitly constructed, injected dependency with
// its own init/shutdown lifecycle, never ambient global state.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/maxbolgarin/lang"
)

const (
	defaultTTL           = time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// Config represents result cache configuration
type Config struct {
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"CACHE_SWEEP_INTERVAL"`
	Disabled      bool          `yaml:"disabled" env:"CACHE_DISABLED"`
}

func (c *Config) PrepareAndValidate() error {
	c.TTL = lang.Check(c.TTL, defaultTTL)
	c.SweepInterval = lang.Check(c.SweepInterval, defaultSweepInterval)
	return nil
}

// Cache memoizes produced values under string keys for a bounded time.
type Cache[V any] struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]entry[V]

	stop     chan struct{}
	stopOnce sync.Once
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache and starts its background sweeper.
func New[V any](cfg Config) *Cache[V] {
	_ = cfg.PrepareAndValidate()

	c := &Cache[V]{
		cfg:     cfg,
		entries: make(map[string]entry[V]),
		stop:    make(chan struct{}),
	}

	if !cfg.Disabled {
		go c.sweep()
	}

	return c
}

// GetOrCompute returns the stored value for key if present and unexpired,
// else calls produce, stores the result with the configured TTL and returns
// it. Producer errors are returned as-is and nothing is stored, so a failed
// computation is retried on the next call.
func (c *Cache[V]) GetOrCompute(key string, produce func() (V, error)) (V, error) {
	if c.cfg.Disabled {
		return produce()
	}

	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := produce()
	if err != nil {
		return value, err
	}

	c.Set(key, value)
	return value, nil
}

// Get returns the unexpired value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the configured TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(c.cfg.TTL)}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweeper. The cache stays usable after Close;
// expired entries are then only dropped lazily on read.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Cache[V]) sweep() {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Key fingerprints the given parts into a stable cache key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
