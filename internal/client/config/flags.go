package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/borderease/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   API base URL
//	-m string   identity mode (local|firebase)
//	-f string   fallback policy (cache|none|sample)
//	-d string   data directory
//	-l string   log level
//	-i int      online check interval (seconds)
//	-t int      request timeout (seconds)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-f", "-d", "-l", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.IdentityMode, "m", cfg.IdentityMode, "identity mode: local or firebase")
	fs.StringVar(&cfg.FallbackPolicy, "f", cfg.FallbackPolicy, "fallback policy: cache, none or sample")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only explicit flags replace durations; the defaults above are rounded
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
	return nil
}
