package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleConfig = `discovery:
  static: true
  parallelism: 8
  matcher:
    binary: /usr/local/bin/ast-grep
    timeout: 30s
cache:
  kind: redis
  redis:
    url: redis://cache:6379
    ttl: 1h
store:
  kind: etcd
  etcd:
    endpoints:
      - etcd-a:2379
      - etcd-b:2379
    namespace: trellis
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "pluginkit.yaml", sampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.StaticEnabled() {
		t.Error("static should be enabled")
	}
	if got := cfg.Discovery.GetParallelism(); got != 8 {
		t.Errorf("parallelism = %d", got)
	}
	if got := cfg.Discovery.Matcher.GetTimeout(); got != 30*time.Second {
		t.Errorf("matcher timeout = %v", got)
	}
	if cfg.Discovery.Matcher.Binary != "/usr/local/bin/ast-grep" {
		t.Errorf("matcher binary = %q", cfg.Discovery.Matcher.Binary)
	}
	if got := cfg.Cache.GetKind(); got != "redis" {
		t.Errorf("cache kind = %q", got)
	}
	if got := cfg.Cache.Redis.GetTTL(); got != time.Hour {
		t.Errorf("cache ttl = %v", got)
	}
	if got := cfg.Store.GetKind(); got != "etcd" {
		t.Errorf("store kind = %q", got)
	}
	if len(cfg.Store.Etcd.Endpoints) != 2 {
		t.Errorf("endpoints = %v", cfg.Store.Etcd.Endpoints)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "pluginkit.yml", "discovery:\n  static: true\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir): %v", err)
	}
	if !cfg.StaticEnabled() {
		t.Error("static should be enabled")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("empty directory must fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "pluginkit.yaml", "discovery: [not: a map\n")
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML must fail")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config

	if cfg.StaticEnabled() {
		t.Error("static defaults to off")
	}
	if got := cfg.Discovery.GetParallelism(); got != 4 {
		t.Errorf("default parallelism = %d", got)
	}
	if got := cfg.Cache.GetKind(); got != "memory" {
		t.Errorf("default cache kind = %q", got)
	}
	if got := cfg.Store.GetKind(); got != "file" {
		t.Errorf("default store kind = %q", got)
	}
	if got := (&StoreConfig{}).File.GetDir(); got != "manifests" {
		t.Errorf("default manifest dir = %q", got)
	}
	if got := (&MatcherConfig{Timeout: "bogus"}).GetTimeout(); got != 10*time.Second {
		t.Errorf("invalid timeout should fall back, got %v", got)
	}
	if got := (&RedisConfig{}).GetTTL(); got != 0 {
		t.Errorf("default ttl = %v", got)
	}
}

func TestLoadFromDirWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pluginkit.yaml", "discovery:\n  static: true\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(nested)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if !cfg.StaticEnabled() {
		t.Error("config from ancestor directory not loaded")
	}
}
