// Package config holds process-wide settings backed by viper. The defaults
// are the contract: 500ms search debounce, 2-character minimum query, 20s
// request timeout and the "eng" language filter.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values applied when no config file or flag overrides them.
const (
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultSearchLimit    = 25
	DefaultRequestTimeout = 20 * time.Second
	DefaultLanguage       = "eng"
)

// Global configuration variables
var (
	// SearchDebounce is how long a query must stay unchanged before a search fires.
	SearchDebounce time.Duration
	// MinQueryLength is the minimum query length that triggers a search.
	MinQueryLength int
	// SearchLimit is the maximum number of results requested per search.
	SearchLimit int
	// RequestTimeout bounds every OpenLibrary request.
	RequestTimeout time.Duration
	// SearchLanguage is the fixed language filter sent with every search.
	SearchLanguage string
)

// InitConfig initializes the global configuration from viper.
func InitConfig() {
	viper.SetDefault("search.debounce", DefaultSearchDebounce)
	viper.SetDefault("search.minquery", DefaultMinQueryLength)
	viper.SetDefault("search.limit", DefaultSearchLimit)
	viper.SetDefault("openlibrary.timeout", DefaultRequestTimeout)
	viper.SetDefault("openlibrary.language", DefaultLanguage)

	SearchDebounce = viper.GetDuration("search.debounce")
	MinQueryLength = viper.GetInt("search.minquery")
	SearchLimit = viper.GetInt("search.limit")
	RequestTimeout = viper.GetDuration("openlibrary.timeout")
	SearchLanguage = viper.GetString("openlibrary.language")
}
