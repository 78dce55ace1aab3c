package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUsesDefaultsWhenEnvUnset(t *testing.T) {
	cfg := New()

	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.CacheMaxEntries)
	assert.Equal(t, 3, cfg.DefaultMaxDepth)
	assert.True(t, cfg.DefaultEnableTransitive)
	assert.Equal(t, uint32(5), cfg.CircuitBreakerThreshold)
	assert.True(t, cfg.InClusterConfig)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DebugEnabled)
}

func TestNewHonorsEnvironmentOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_MAX_ENTRIES", "2000")
	t.Setenv("DEFAULT_ENABLE_TRANSITIVE", "false")
	t.Setenv("CIRCUIT_BREAKER_THRESHOLD", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IN_CLUSTER_CONFIG", "false")
	t.Setenv("KUBECONFIG_PATH", "/tmp/kubeconfig")

	cfg := New()

	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2000, cfg.CacheMaxEntries)
	assert.False(t, cfg.DefaultEnableTransitive)
	assert.Equal(t, uint32(10), cfg.CircuitBreakerThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.InClusterConfig)
	assert.Equal(t, "/tmp/kubeconfig", cfg.KubeConfigPath)
}

func TestGetEnvIntFallsBackOnUnparseableValue(t *testing.T) {
	t.Setenv("MAX_RESOURCES_PER_TYPE", "not-a-number")

	cfg := New()

	assert.Equal(t, 50, cfg.MaxResourcesPerType)
}

func TestGetEnvDurationFallsBackOnUnparseableValue(t *testing.T) {
	t.Setenv("DISCOVERY_TIMEOUT", "not-a-duration")

	cfg := New()

	assert.Equal(t, 30*time.Second, cfg.DiscoveryTimeout)
}

func TestGetEnvBoolFallsBackOnUnparseableValue(t *testing.T) {
	t.Setenv("DEFAULT_ENABLE_TRANSITIVE", "not-a-bool")

	cfg := New()

	assert.True(t, cfg.DefaultEnableTransitive)
}
