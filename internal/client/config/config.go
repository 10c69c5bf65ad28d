package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the BorderEase CLI.
type Config struct {
	APIBaseURL string

	// IdentityMode is "local" or "firebase".
	IdentityMode        string
	FirebaseAPIKey      string
	LocalSecret         string
	LocalFederatedEmail string

	RequestTimeout      time.Duration
	LatestTimeout       time.Duration
	OnlineCheckInterval time.Duration
	CacheMaxAge         time.Duration

	// FallbackPolicy is "cache", "none" or "sample".
	FallbackPolicy string
	DataDir        string
	LogLevel       string
}

const (
	IdentityLocal    = "local"
	IdentityFirebase = "firebase"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000"
	c.IdentityMode = IdentityLocal
	c.LocalSecret = "borderease-dev-secret"
	c.RequestTimeout = 10 * time.Second
	c.LatestTimeout = 3 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheMaxAge = 7 * 24 * time.Hour
	c.FallbackPolicy = "cache"
	c.LogLevel = "warn"
}

func (c *Config) Validate() error {
	switch c.IdentityMode {
	case IdentityLocal:
		if c.LocalSecret == "" {
			return fmt.Errorf("local identity mode needs a secret")
		}
	case IdentityFirebase:
		if c.FirebaseAPIKey == "" {
			return fmt.Errorf("firebase identity mode needs FIREBASE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown identity mode %q", c.IdentityMode)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is empty")
	}
	if c.RequestTimeout <= 0 || c.LatestTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// Load applies defaults, then the config file named by -c/-config, then the
// environment (including .env), then flags. Later sources win.
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

// LoadConfig reads the process arguments and environment. It panics on
// invalid configuration.
func LoadConfig() *Config {
	loadDotEnv(".env")
	cfg, err := Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		panic(err)
	}
	return cfg
}
