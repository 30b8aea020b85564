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

// Environment variables read by ApplyEnv.
const (
	EnvTool     = "GPT_TOOL"
	EnvTmp      = "TMP"
	EnvKey      = "GPTBRIDGE_KEY"
	EnvLogLevel = "GPTBRIDGE_LOG_LEVEL"
)

// ModelProfile is a named model selection inside a config file.
type ModelProfile struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Model     string `json:"model" yaml:"model" toml:"model"`
	Key       string `json:"key" yaml:"key" toml:"key"`
	Workers   int    `json:"workers" yaml:"workers" toml:"workers"`
	MaxOutLen int    `json:"max_out_len" yaml:"max_out_len" toml:"max_out_len"`
}

// Config holds runtime parameters for the CLI and server.
// Zero values mean "unspecified" and are replaced by defaults.
type Config struct {
	Tool           string         `json:"tool" yaml:"tool" toml:"tool"`
	TmpDir         string         `json:"tmp_dir" yaml:"tmp_dir" toml:"tmp_dir"`
	Key            string         `json:"key" yaml:"key" toml:"key"`
	Model          string         `json:"model" yaml:"model" toml:"model"`
	Workers        int            `json:"workers" yaml:"workers" toml:"workers"`
	TopP           float64        `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK           int            `json:"top_k" yaml:"top_k" toml:"top_k"`
	Temperature    float64        `json:"temperature" yaml:"temperature" toml:"temperature"`
	MaxOutFlag     string         `json:"max_out_flag" yaml:"max_out_flag" toml:"max_out_flag"`
	MaxOutLen      int            `json:"max_out_len" yaml:"max_out_len" toml:"max_out_len"`
	Lenient        bool           `json:"lenient" yaml:"lenient" toml:"lenient"`
	KillGrace      string         `json:"kill_grace" yaml:"kill_grace" toml:"kill_grace"`
	QueryPerSecond float64        `json:"query_per_second" yaml:"query_per_second" toml:"query_per_second"`
	Journal        string         `json:"journal" yaml:"journal" toml:"journal"`
	Addr           string         `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel       string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins    []string       `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Models         []ModelProfile `json:"models" yaml:"models" toml:"models"`
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
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
