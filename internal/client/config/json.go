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

// JsonConfig is the on-disk shape of the client config file (JSON or YAML).
type JsonConfig struct {
	ServerURL      string          `json:"server_url" yaml:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFromArgs(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		return err
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
