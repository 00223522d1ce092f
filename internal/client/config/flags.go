package config

import (
	"flag"
	"time"

	"github.com/s-fanou/feed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the API server
//	-t int      request timeout in seconds
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
