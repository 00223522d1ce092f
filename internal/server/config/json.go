package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/s-fanou/feed/internal/flagx"
	"github.com/s-fanou/feed/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig is the on-disk shape of the config file, read as YAML when the
// file ends in .yaml or .yml and as JSON otherwise. Durations accept both
// "1h" strings and integer nanoseconds. Empty fields leave the current value
// untouched.
type JsonConfig struct {
	EndpointAddrHTTP    string            `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC    string            `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	GinMode             string            `json:"gin_mode" yaml:"gin_mode"`
	LogLevel            string            `json:"log_level" yaml:"log_level"`
	StoreKind           string            `json:"store" yaml:"store"`
	DatabaseDSN         string            `json:"database_dsn" yaml:"database_dsn"`
	MongoURI            string            `json:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase       string            `json:"mongo_database" yaml:"mongo_database"`
	SecretKey           string            `json:"secret_key" yaml:"secret_key"`
	SigningKeyID        string            `json:"signing_key_id" yaml:"signing_key_id"`
	PreviousSigningKeys map[string]string `json:"previous_signing_keys" yaml:"previous_signing_keys"`
	TokenTTL            *timex.Duration   `json:"token_ttl" yaml:"token_ttl"`
	BcryptCost          int               `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	Revocation          string            `json:"revocation" yaml:"revocation"`
	RedisURL            string            `json:"redis_url" yaml:"redis_url"`
	CORSAllowedOrigins  []string          `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
}

// parseJson loads the file named by -c / -config in args, if any, and copies
// the non-empty fields into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFromArgs(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, c)
	default:
		err = json.Unmarshal(file, c)
	}
	if err != nil {
		return err
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.GinMode, c.GinMode)
	set(&config.LogLevel, c.LogLevel)
	set(&config.StoreKind, c.StoreKind)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.MongoURI, c.MongoURI)
	set(&config.MongoDatabase, c.MongoDatabase)
	set(&config.SecretKey, c.SecretKey)
	set(&config.SigningKeyID, c.SigningKeyID)
	set(&config.Revocation, c.Revocation)
	set(&config.RedisURL, c.RedisURL)

	if c.PreviousSigningKeys != nil {
		config.PreviousSigningKeys = c.PreviousSigningKeys
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	return nil
}
