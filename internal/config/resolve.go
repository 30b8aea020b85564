package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gptbridge/internal/batch"
	"gptbridge/internal/common/fsutil"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultAddr      = ":8080"
	DefaultLogLevel  = "info"
	DefaultMaxOutLen = 512
)

// ApplyEnv overlays non-empty environment values on c.
// A nil getenv means os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvTool)); v != "" {
		c.Tool = v
	}
	if v := getenv(EnvTmp); v != "" && c.TmpDir == "" {
		c.TmpDir = v
	}
	if v := getenv(EnvKey); v != "" {
		c.Key = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// ApplyDefaults fills unset fields that are not owned by batch.Config.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxOutLen <= 0 {
		c.MaxOutLen = DefaultMaxOutLen
	}
}

// Select returns a copy of c with the named model profile applied.
// An empty name returns c unchanged.
func (c Config) Select(name string) (Config, error) {
	if name == "" {
		return c, nil
	}
	for _, p := range c.Models {
		if p.Name != name {
			continue
		}
		if p.Model != "" {
			c.Model = p.Model
		}
		if p.Key != "" {
			c.Key = p.Key
		}
		if p.Workers > 0 {
			c.Workers = p.Workers
		}
		if p.MaxOutLen > 0 {
			c.MaxOutLen = p.MaxOutLen
		}
		return c, nil
	}
	names := make([]string, 0, len(c.Models))
	for _, p := range c.Models {
		names = append(names, p.Name)
	}
	return c, fmt.Errorf("unknown model profile %q (have %s)", name, strings.Join(names, ", "))
}

// BatchConfig builds the adapter configuration. A missing tool is a
// batch.ConfigurationError.
func (c Config) BatchConfig() (batch.Config, error) {
	tool, err := fsutil.ExpandHome(strings.TrimSpace(c.Tool))
	if err != nil {
		return batch.Config{}, err
	}
	if tool == "" {
		return batch.Config{}, &batch.ConfigurationError{Msg: EnvTool + " is not set"}
	}
	tmp, err := fsutil.ExpandHome(c.TmpDir)
	if err != nil {
		return batch.Config{}, err
	}
	var grace time.Duration
	if c.KillGrace != "" {
		grace, err = time.ParseDuration(c.KillGrace)
		if err != nil {
			return batch.Config{}, &batch.ConfigurationError{Msg: fmt.Sprintf("kill_grace: %v", err)}
		}
	}
	return batch.Config{
		Executable:       tool,
		Key:              c.Key,
		Model:            c.Model,
		Workers:          c.Workers,
		TopP:             c.TopP,
		TopK:             c.TopK,
		Temperature:      c.Temperature,
		TempDir:          tmp,
		MaxOutFlag:       c.MaxOutFlag,
		Lenient:          c.Lenient,
		KillGrace:        grace,
		QueriesPerSecond: c.QueryPerSecond,
	}, nil
}

// JournalPath returns the expanded journal path, or "" when disabled.
func (c Config) JournalPath() (string, error) {
	if c.Journal == "" {
		return "", nil
	}
	return fsutil.ExpandHome(c.Journal)
}
