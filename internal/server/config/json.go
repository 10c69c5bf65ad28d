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
// timex.Duration accepts "10s" as well as integer nanoseconds. Zero values
// leave the current setting alone.
type FileConfig struct {
	HTTPAddr                string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN             string         `json:"database_dsn" yaml:"database_dsn"`
	AuthMode                string         `json:"auth_mode" yaml:"auth_mode"`
	LocalSecret             string         `json:"local_secret" yaml:"local_secret"`
	FirebaseProjectID       string         `json:"firebase_project_id" yaml:"firebase_project_id"`
	FirebaseCredentialsFile string         `json:"firebase_credentials_file" yaml:"firebase_credentials_file"`
	RateLimitRPS            float64        `json:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst          int            `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	ReadTimeout             timex.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout            timex.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout         timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel                string         `json:"log_level" yaml:"log_level"`
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
	set(&cfg.HTTPAddr, fc.HTTPAddr)
	set(&cfg.DatabaseDSN, fc.DatabaseDSN)
	set(&cfg.AuthMode, fc.AuthMode)
	set(&cfg.LocalSecret, fc.LocalSecret)
	set(&cfg.FirebaseProjectID, fc.FirebaseProjectID)
	set(&cfg.FirebaseCredentialsFile, fc.FirebaseCredentialsFile)
	set(&cfg.LogLevel, fc.LogLevel)

	if fc.RateLimitRPS > 0 {
		cfg.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		cfg.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.ReadTimeout.Duration > 0 {
		cfg.ReadTimeout = fc.ReadTimeout.Duration
	}
	if fc.WriteTimeout.Duration > 0 {
		cfg.WriteTimeout = fc.WriteTimeout.Duration
	}
	if fc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
}
