package config

import (
	"flag"
	"time"

	"github.com/s-fanou/feed/internal/flagx"
)

// parseFlags overlays selected fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address (e.g. ":50051")
//	-m string   credential store: postgres, mongo or memory
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-k string   token signing key id
//	-t int      token validity, minutes
//	-r string   revocation: none, memory or redis
//
// Other arguments are filtered out first so that -c and test flags do not
// trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-m", "-d", "-s", "-k", "-t", "-r"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.StoreKind, "m", config.StoreKind, "credential store (postgres, mongo, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.SigningKeyID, "k", config.SigningKeyID, "token signing key id")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.Revocation, "r", config.Revocation, "token revocation (none, memory, redis)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
