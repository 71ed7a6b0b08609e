package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the tool.
// Zero values mean "unspecified" and will be replaced by defaults in the CLI layer.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	RuntimeURL      string `json:"runtime_url" yaml:"runtime_url" toml:"runtime_url"`
	ModelfileDir    string `json:"modelfile_dir" yaml:"modelfile_dir" toml:"modelfile_dir"`
	ProbeTimeoutSec int    `json:"probe_timeout_s" yaml:"probe_timeout_s" toml:"probe_timeout_s"`
	Threads         int    `json:"threads" yaml:"threads" toml:"threads"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
	MaxBodyBytes    int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	// CORS is opt-in for the serve mode.
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
