package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
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
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	str("SERVER_ADDR", &cfg.HTTPAddr)
	if port, ok := get("PORT"); ok {
		cfg.HTTPAddr = ":" + port
	}
	str("DATABASE_URL", &cfg.DatabaseDSN)
	str("AUTH_MODE", &cfg.AuthMode)
	str("LOCAL_AUTH_SECRET", &cfg.LocalSecret)
	str("FIREBASE_PROJECT_ID", &cfg.FirebaseProjectID)
	str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.FirebaseCredentialsFile)
	str("LOG_LEVEL", &cfg.LogLevel)

	var errs []error
	if v, ok := get("RATE_LIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		}
		cfg.RateLimitRPS = f
	}
	if v, ok := get("RATE_LIMIT_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		}
		cfg.RateLimitBurst = n
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		}
		cfg.ShutdownTimeout = d
	}
	return errors.Join(errs...)
}
