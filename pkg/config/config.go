package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from a .env file and environment variables.
// prefix: environment variable prefix (e.g. "CMS_")
// target: pointer to the config struct to load into
func Load(prefix string, target interface{}) error {
	v := viper.New()

	// 1. Load from .env file (if exists)
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// The .env file is optional; a parse error of an existing file
			// resurfaces during Unmarshal if it matters.
		}
	}

	// 2. Load from environment variables.
	// Viper's AutomaticEnv doesn't work well with Unmarshal if keys aren't
	// known ahead of time, so iterate env vars and populate viper directly.
	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, prefixUpper) {
			// CMS_DB_HOST -> db.host
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")

			v.Set(propKey, value)
		}
	}

	// 3. Unmarshal into struct
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}
