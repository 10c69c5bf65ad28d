package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/borderease/internal/flagx"
	"github.com/dmitrijs2005/borderease/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration, JSON or YAML.
// Zero values leave the current setting alone.
type FileConfig struct {
	APIBaseURL          string         `json:"api_base_url" yaml:"api_base_url"`
	IdentityMode        string         `json:"identity_mode" yaml:"identity_mode"`
	FirebaseAPIKey      string         `json:"firebase_api_key" yaml:"firebase_api_key"`
	LocalSecret         string         `json:"local_secret" yaml:"local_secret"`
	LocalFederatedEmail string         `json:"local_federated_email" yaml:"local_federated_email"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LatestTimeout       timex.Duration `json:"latest_timeout" yaml:"latest_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	CacheMaxAge         timex.Duration `json:"cache_max_age" yaml:"cache_max_age"`
	FallbackPolicy      string         `json:"fallback_policy" yaml:"fallback_policy"`
	DataDir             string         `json:"data_dir" yaml:"data_dir"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if flagx.FileFormat(path) == "yaml" {
		err = yaml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc FileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, fc.APIBaseURL)
	set(&cfg.IdentityMode, fc.IdentityMode)
	set(&cfg.FirebaseAPIKey, fc.FirebaseAPIKey)
	set(&cfg.LocalSecret, fc.LocalSecret)
	set(&cfg.LocalFederatedEmail, fc.LocalFederatedEmail)
	set(&cfg.FallbackPolicy, fc.FallbackPolicy)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.LogLevel, fc.LogLevel)

	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.LatestTimeout.Duration > 0 {
		cfg.LatestTimeout = fc.LatestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.CacheMaxAge.Duration > 0 {
		cfg.CacheMaxAge = fc.CacheMaxAge.Duration
	}
}
