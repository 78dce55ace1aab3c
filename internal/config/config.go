// Package config loads the function's runtime configuration from
// environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the composition-time context resolver.
type Config struct {
	// Response cache settings (L4).
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Default discovery options, overridable per-query via the Input CRD.
	DefaultMaxDepth          int
	DefaultEnableTransitive  bool
	DefaultIncludeFullSchema bool
	MaxResourcesPerType      int

	// Transitive discovery settings (M4).
	TransitiveMaxDepth        int
	TransitiveTimeoutPerHop   time.Duration
	TransitiveParallelWorkers int
	TransitiveMemoryLimitMB   int

	// Circuit breaker settings (L6).
	CircuitBreakerThreshold uint32
	CircuitBreakerCooldown  time.Duration

	// Kubernetes client settings.
	InClusterConfig bool
	KubeConfigPath  string

	// Timeout settings.
	DiscoveryTimeout time.Duration
	APICallTimeout   time.Duration

	// Logging settings.
	LogLevel     string
	DebugEnabled bool
}

// New creates a new configuration with defaults, overridden by environment
// variables where set.
func New() *Config {
	return &Config{
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1000),

		DefaultMaxDepth:          getEnvInt("DEFAULT_TRAVERSAL_DEPTH", 3),
		DefaultEnableTransitive:  getEnvBool("DEFAULT_ENABLE_TRANSITIVE", true),
		DefaultIncludeFullSchema: getEnvBool("DEFAULT_INCLUDE_FULL_SCHEMA", true),
		MaxResourcesPerType:      getEnvInt("MAX_RESOURCES_PER_TYPE", 50),

		TransitiveMaxDepth:        getEnvInt("TRANSITIVE_MAX_DEPTH", 3),
		TransitiveTimeoutPerHop:   getEnvDuration("TRANSITIVE_TIMEOUT_PER_HOP", 10*time.Second),
		TransitiveParallelWorkers: getEnvInt("TRANSITIVE_PARALLEL_WORKERS", 5),
		TransitiveMemoryLimitMB:   getEnvInt("TRANSITIVE_MEMORY_LIMIT_MB", 200),

		CircuitBreakerThreshold: uint32(getEnvInt("CIRCUIT_BREAKER_THRESHOLD", 5)),
		CircuitBreakerCooldown:  getEnvDuration("CIRCUIT_BREAKER_COOLDOWN", 60*time.Second),

		InClusterConfig: getEnvBool("IN_CLUSTER_CONFIG", true),
		KubeConfigPath:  getEnv("KUBECONFIG_PATH", ""),

		DiscoveryTimeout: getEnvDuration("DISCOVERY_TIMEOUT", 30*time.Second),
		APICallTimeout:   getEnvDuration("API_CALL_TIMEOUT", 10*time.Second),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DebugEnabled: getEnvBool("DEBUG_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
