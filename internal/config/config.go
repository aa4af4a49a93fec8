// Package config loads the YAML-backed RouterConfig, following the same
// shape as codeNERD's internal/config package: a DefaultConfig() baseline,
// yaml.v3 unmarshaling, and an env-override pass applied after the file is
// read.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RouterConfig holds everything the router needs beyond the collaborators
// an embedder supplies directly (FsCapability, RPC fetchers, sandbox,
// loaders, workers). See SPEC_FULL.md §3 for field-by-field rationale.
type RouterConfig struct {
	Cache     CacheConfig             `yaml:"cache"`
	Metrics   MetricsConfig           `yaml:"metrics"`
	Execution ExecutionConfig         `yaml:"execution"`
	RPCServices map[string]RPCServiceConfig `yaml:"rpc_services"`
	Logging   LoggingConfig           `yaml:"logging"`
	Safety    SafetyConfig            `yaml:"safety"`
}

// CacheConfig controls the Classification Cache (§4.2).
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// MetricsConfig controls the Metrics Recorder (§4.9).
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ExecutionConfig controls defaults used when ExecOptions omits a value.
type ExecutionConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// RPCServiceConfig overrides or extends a default RPC service (§6).
type RPCServiceConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Commands []string `yaml:"commands"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
	JSON  bool `yaml:"json"`
}

// SafetyConfig controls the default Safety Analyzer.
type SafetyConfig struct {
	SchemaPath string `yaml:"schema_path"`
}

// DefaultConfig returns production defaults matching spec.md's stated
// defaults (1000-entry cache, metrics off by default).
func DefaultConfig() *RouterConfig {
	return &RouterConfig{
		Cache: CacheConfig{
			Capacity: 1000,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Execution: ExecutionConfig{
			DefaultTimeout: 60 * time.Second,
		},
		RPCServices: map[string]RPCServiceConfig{
			"jq":  {Endpoint: "https://jq.do", Commands: []string{"jq"}},
			"npm": {Endpoint: "https://npm.do", Commands: []string{"npm", "npx", "pnpm", "yarn", "bun"}},
			"git": {Endpoint: "https://git.do", Commands: []string{"git"}},
			"pyx": {Endpoint: "https://pyx.do", Commands: []string{"pyx", "python", "pip", "pipx", "uvx"}},
		},
		Logging: LoggingConfig{
			Debug: false,
			JSON:  true,
		},
	}
}

// Load reads a YAML config file from path, merges it onto DefaultConfig,
// and applies environment overrides.
func Load(path string) (*RouterConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides layers TIERROUTE_* environment variables onto the
// config, env always winning over whatever the YAML file set — mirroring
// the teacher's applyEnvOverrides precedence pattern.
func (c *RouterConfig) ApplyEnvOverrides() {
	if v, ok := os.LookupEnv("TIERROUTE_CACHE_CAPACITY"); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			c.Cache.Capacity = n
		}
	}
	if v, ok := os.LookupEnv("TIERROUTE_METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v == "1" || v == "true"
	}
	if v, ok := os.LookupEnv("TIERROUTE_LOG_DEBUG"); ok {
		c.Logging.Debug = v == "1" || v == "true"
	}
	if v, ok := os.LookupEnv("TIERROUTE_SAFETY_SCHEMA_PATH"); ok && v != "" {
		c.Safety.SchemaPath = v
	}
}
