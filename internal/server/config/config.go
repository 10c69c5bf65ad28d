// Package config handles configuration for the visa API server: defaults,
// a JSON or YAML file, the environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the visa API server.
//
// Fields:
//   - HTTPAddr: bind address of the REST API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - AuthMode: "local" verifies HS256 tokens signed with LocalSecret,
//     "firebase" verifies Firebase ID tokens with the Admin SDK.
//   - RateLimitRPS / RateLimitBurst: per-client budget for write requests.
type Config struct {
	HTTPAddr    string
	DatabaseDSN string

	AuthMode                string
	LocalSecret             string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	RateLimitRPS   float64
	RateLimitBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	LogLevel string
}

const (
	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

// LoadDefaults populates Config with development defaults.
// NOTE: the local secret is public and must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.AuthMode = AuthLocal
	c.LocalSecret = "borderease-dev-secret"
	c.RateLimitRPS = 5
	c.RateLimitBurst = 10
	c.ReadTimeout = 10 * time.Second
	c.WriteTimeout = 15 * time.Second
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthLocal:
		if c.LocalSecret == "" {
			return fmt.Errorf("local auth mode needs a secret")
		}
	case AuthFirebase:
		if c.FirebaseProjectID == "" && c.FirebaseCredentialsFile == "" {
			return fmt.Errorf("firebase auth mode needs a project id or credentials file")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address is empty")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	return nil
}

// Load applies defaults, then the config file named by -c/-config, then the
// environment, then flags. Later sources win.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads .env, the process arguments and environment. It panics
// on invalid configuration.
func LoadConfig() *Config {
	loadDotEnv(".env")
	cfg, err := Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		panic(err)
	}
	return cfg
}
