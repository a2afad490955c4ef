// Package config provides loading and parsing of pluginkit.yaml
// configuration files. The configuration controls the static discovery
// engine (opt-in flag, structural matcher, parallelism) and the cache and
// manifest-store backends the plugin manager wires around it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a pluginkit.yaml configuration file.
type Config struct {
	Discovery *DiscoveryConfig `yaml:"discovery,omitempty"`
	Cache     *CacheConfig     `yaml:"cache,omitempty"`
	Store     *StoreConfig     `yaml:"store,omitempty"`
}

// DiscoveryConfig controls the static discovery engine.
type DiscoveryConfig struct {
	// Static opts in to the static engine. When false every discovery
	// call routes straight to the dynamic path.
	Static bool `yaml:"static,omitempty"`

	// Parallelism is the number of packages discovered concurrently.
	// Default: 4
	Parallelism int `yaml:"parallelism,omitempty"`

	// Matcher configures the external structural-matching helper. When
	// absent, sites are extracted by the in-process scanner.
	Matcher *MatcherConfig `yaml:"matcher,omitempty"`
}

// MatcherConfig configures the external structural-matching helper.
type MatcherConfig struct {
	// Binary is the helper executable; "ast-grep" on PATH when empty.
	Binary string `yaml:"binary,omitempty"`

	// Timeout bounds one helper invocation.
	// Format: Go duration string (e.g., "10s")
	// Default: 10s
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout parses the matcher timeout and returns a duration.
// Returns the default value if not set or invalid.
func (m *MatcherConfig) GetTimeout() time.Duration {
	if m == nil || m.Timeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetParallelism returns the configured parallelism or the default value.
func (d *DiscoveryConfig) GetParallelism() int {
	if d == nil || d.Parallelism <= 0 {
		return 4
	}
	return d.Parallelism
}

// CacheConfig selects and configures the manifest cache backend.
type CacheConfig struct {
	// Kind is "memory" or "redis". Default: "memory"
	Kind string `yaml:"kind,omitempty"`

	// Redis configures the redis backend when Kind is "redis".
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string `yaml:"url,omitempty"`

	// TTL is how long cached manifests live.
	// Format: Go duration string (e.g., "1h"). Default: no expiry.
	TTL string `yaml:"ttl,omitempty"`
}

// GetKind returns the cache backend name or the default value.
func (c *CacheConfig) GetKind() string {
	if c == nil || c.Kind == "" {
		return "memory"
	}
	return c.Kind
}

// GetTTL parses the cache TTL and returns a duration. Zero means entries
// do not expire.
func (r *RedisConfig) GetTTL() time.Duration {
	if r == nil || r.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0
	}
	return d
}

// StoreConfig selects and configures the manifest store backend.
type StoreConfig struct {
	// Kind is "file" or "etcd". Default: "file"
	Kind string `yaml:"kind,omitempty"`

	// File configures the file backend when Kind is "file".
	File *FileStoreConfig `yaml:"file,omitempty"`

	// Etcd configures the etcd backend when Kind is "etcd".
	Etcd *EtcdStoreConfig `yaml:"etcd,omitempty"`
}

// FileStoreConfig configures the file store backend.
type FileStoreConfig struct {
	// Dir is the directory holding one manifest file per package.
	Dir string `yaml:"dir,omitempty"`
}

// EtcdStoreConfig configures the etcd store backend.
type EtcdStoreConfig struct {
	// Endpoints are the etcd cluster endpoints.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace prefixes every key; "trellis" when empty.
	Namespace string `yaml:"namespace,omitempty"`
}

// GetKind returns the store backend name or the default value.
func (s *StoreConfig) GetKind() string {
	if s == nil || s.Kind == "" {
		return "file"
	}
	return s.Kind
}

// GetDir returns the manifest directory or the default value.
func (f *FileStoreConfig) GetDir() string {
	if f == nil || f.Dir == "" {
		return "manifests"
	}
	return f.Dir
}

// StaticEnabled reports whether the static engine is opted in.
func (c *Config) StaticEnabled() bool {
	return c != nil && c.Discovery != nil && c.Discovery.Static
}

// Load reads and parses a pluginkit.yaml file from the given path.
// If the path is a directory, it looks for pluginkit.yaml or pluginkit.yml
// in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "pluginkit.yaml")
		ymlPath := filepath.Join(path, "pluginkit.yml")
		switch {
		case fileExists(yamlPath):
			configPath = yamlPath
		case fileExists(ymlPath):
			configPath = ymlPath
		default:
			return nil, fmt.Errorf("no pluginkit.yaml or pluginkit.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// LoadFromDir searches for pluginkit.yaml starting from the given
// directory and walking up to parent directories until found or root is
// reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}
		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no pluginkit.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
