// Package config loads runtime configuration for the BorderEase CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. Environment, after exporting a .env file from the working directory
//     when present: VISA_API_URL, BORDEREASE_IDENTITY, FIREBASE_API_KEY,
//     LOCAL_AUTH_SECRET, LOCAL_FEDERATED_EMAIL, FALLBACK_POLICY,
//     BORDEREASE_DATA_DIR, LOG_LEVEL, REQUEST_TIMEOUT, LATEST_TIMEOUT,
//     ONLINE_CHECK_INTERVAL.
//  4. Command-line flags (see parseFlags).
//
// # File schema
//
// Durations use timex.Duration, so "3s" and integer nanoseconds both work:
//
//	api_base_url: http://localhost:5000
//	identity_mode: firebase
//	firebase_api_key: AIza...
//	request_timeout: 10s
//	latest_timeout: 3s
//	fallback_policy: cache
package config
