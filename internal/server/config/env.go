package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load(".env")
}

// parseEnv overlays environment variables onto config. lookup is
// os.LookupEnv in production and a map in tests.
//
// Recognised variables:
//
//	HTTP_ADDR, GRPC_ADDR, GIN_MODE, LOG_LEVEL, STORE, DATABASE_DSN,
//	MONGO_URI, MONGO_DATABASE, SECRET_KEY, SIGNING_KEY_ID,
//	PREVIOUS_SIGNING_KEYS ("kid:secret,kid:secret"), TOKEN_TTL ("1h"),
//	BCRYPT_COST, REVOCATION, REDIS_URL, CORS_ALLOWED_ORIGINS (comma separated)
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("GIN_MODE", &config.GinMode)
	str("LOG_LEVEL", &config.LogLevel)
	str("STORE", &config.StoreKind)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("MONGO_URI", &config.MongoURI)
	str("MONGO_DATABASE", &config.MongoDatabase)
	str("SECRET_KEY", &config.SecretKey)
	str("SIGNING_KEY_ID", &config.SigningKeyID)
	str("REVOCATION", &config.Revocation)
	str("REDIS_URL", &config.RedisURL)

	if v, ok := lookup("PREVIOUS_SIGNING_KEYS"); ok && v != "" {
		keys, err := ParseKeyList(v)
		if err != nil {
			return fmt.Errorf("PREVIOUS_SIGNING_KEYS: %w", err)
		}
		config.PreviousSigningKeys = keys
	}
	if v, ok := lookup("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		config.TokenTTL = d
	}
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}

	return nil
}

// ParseKeyList parses "kid:secret,kid:secret" into a map.
func ParseKeyList(s string) (map[string]string, error) {
	keys := make(map[string]string)
	for _, item := range splitList(s) {
		kid, secret, ok := strings.Cut(item, ":")
		kid = strings.TrimSpace(kid)
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("malformed key entry %q, want kid:secret", item)
		}
		if _, dup := keys[kid]; dup {
			return nil, fmt.Errorf("duplicate key id %q", kid)
		}
		keys[kid] = secret
	}
	return keys, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
