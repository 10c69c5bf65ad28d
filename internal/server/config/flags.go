package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/borderease/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN; empty keeps the in-memory store
//	-m string   auth mode (local|firebase)
//	-s string   local HS256 secret
//	-p string   Firebase project id
//	-l string   log level
//	-r float    write requests per second per client
//	-b int      write burst per client
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-m", "-s", "-p", "-l", "-r", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.AuthMode, "m", cfg.AuthMode, "auth mode: local or firebase")
	fs.StringVar(&cfg.LocalSecret, "s", cfg.LocalSecret, "secret key for local tokens")
	fs.StringVar(&cfg.FirebaseProjectID, "p", cfg.FirebaseProjectID, "firebase project id")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.Float64Var(&cfg.RateLimitRPS, "r", cfg.RateLimitRPS, "write requests per second per client")
	fs.IntVar(&cfg.RateLimitBurst, "b", cfg.RateLimitBurst, "write burst per client")

	return fs.Parse(args)
}
