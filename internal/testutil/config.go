package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/bookpedia/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	SearchDebounce time.Duration
	MinQueryLength int
	SearchLimit    int
	RequestTimeout time.Duration
	SearchLanguage string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		SearchDebounce: config.SearchDebounce,
		MinQueryLength: config.MinQueryLength,
		SearchLimit:    config.SearchLimit,
		RequestTimeout: config.RequestTimeout,
		SearchLanguage: config.SearchLanguage,
	}
}

// ResetConfig resets viper and the config globals to their defaults, and
// restores the previous state when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.InitConfig()

	t.Cleanup(func() {
		config.SearchDebounce = state.SearchDebounce
		config.MinQueryLength = state.MinQueryLength
		config.SearchLimit = state.SearchLimit
		config.RequestTimeout = state.RequestTimeout
		config.SearchLanguage = state.SearchLanguage
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestCache configures viper for test caching with a temporary
// directory and returns the cache directory path.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	cacheDir := env.Path("cache")
	env.MkdirAll("cache")

	SetViperValue(t, "cache.dbfile", env.Path("cache", "test-cache.db"))
	SetViperValue(t, "cache.ttl", "24h")

	return cacheDir
}
