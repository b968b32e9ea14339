package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gavelbot/gavel/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	c := cache.New[string](cache.Config{TTL: time.Minute})
	defer c.Close()

	calls := 0
	produce := func() (string, error) {
		calls++
		return "value", nil
	}

	for range 3 {
		got, err := c.GetOrCompute("key", produce)
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	}

	assert.Equal(t, 1, calls)
}

func TestGetOrComputeDoesNotStoreErrors(t *testing.T) {
	c := cache.New[int](cache.Config{TTL: time.Minute})
	defer c.Close()

	calls := 0
	_, err := c.GetOrCompute("key", func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	got, err := c.GetOrCompute("key", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestEntriesExpire(t *testing.T) {
	c := cache.New[string](cache.Config{TTL: 10 * time.Millisecond, SweepInterval: time.Hour})
	defer c.Close()

	c.Set("key", "value")
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestSweeperDropsExpiredEntries(t *testing.T) {
	c := cache.New[string](cache.Config{TTL: 5 * time.Millisecond, SweepInterval: 10 * time.Millisecond})
	defer c.Close()

	c.Set("a", "1")
	c.Set("b", "2")

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDisabledCacheAlwaysComputes(t *testing.T) {
	c := cache.New[string](cache.Config{Disabled: true})
	defer c.Close()

	calls := 0
	for range 2 {
		_, err := c.GetOrCompute("key", func() (string, error) {
			calls++
			return "value", nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, calls)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, cache.Key("a", "b"), cache.Key("a", "b"))
	assert.NotEqual(t, cache.Key("a", "b"), cache.Key("ab"))
	assert.NotEqual(t, cache.Key("a", "b"), cache.Key("b", "a"))
}
