package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv exports variables from path without overriding ones already
// set. A missing file is fine.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("load %s: %w", path, err))
	}
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("VISA_API_URL", &cfg.APIBaseURL)
	str("BORDEREASE_IDENTITY", &cfg.IdentityMode)
	str("FIREBASE_API_KEY", &cfg.FirebaseAPIKey)
	str("LOCAL_AUTH_SECRET", &cfg.LocalSecret)
	str("LOCAL_FEDERATED_EMAIL", &cfg.LocalFederatedEmail)
	str("FALLBACK_POLICY", &cfg.FallbackPolicy)
	str("BORDEREASE_DATA_DIR", &cfg.DataDir)
	str("LOG_LEVEL", &cfg.LogLevel)

	return errors.Join(
		dur("REQUEST_TIMEOUT", &cfg.RequestTimeout),
		dur("LATEST_TIMEOUT", &cfg.LatestTimeout),
		dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval),
	)
}
