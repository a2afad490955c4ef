package pluginkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/trellis-data/pluginkit/cache"
	"github.com/trellis-data/pluginkit/discerr"
	"github.com/trellis-data/pluginkit/pysrc"
	"github.com/trellis-data/pluginkit/store"
	"github.com/trellis-data/pluginkit/telemetry"
)

// Fallback is the dynamic discovery path: interpreter bootstrap, package
// import, descriptor introspection. It returns the serialized manifest.
// Implementations are typically a single shared interpreter per process;
// the Manager serializes its fallback calls accordingly.
type Fallback interface {
	Discover(ctx context.Context, root, name string) ([]byte, error)
}

// ErrNoFallback is returned when a package needs the dynamic path and no
// Fallback is configured.
var ErrNoFallback = errors.New("no dynamic discovery fallback configured")

// Manager wraps the Engine with the caller-side concerns the engine
// itself stays free of: the opt-in switch, the fingerprint-keyed cache,
// manifest persistence, and fallback to dynamic discovery.
type Manager struct {
	engine        *Engine
	logger        *slog.Logger
	metrics       *telemetry.Metrics
	cache         cache.Cache
	store         store.Store
	fallback      Fallback
	staticEnabled bool
	parallelism   int

	// The dynamic path is one shared interpreter; its invocations are
	// serialized here so concurrent DiscoverAll workers never overlap
	// on it.
	fallbackMu sync.Mutex
}

// NewManager creates a Manager around an engine.
func NewManager(engine *Engine, opts ...ManagerOption) *Manager {
	cfg := managerConfig{parallelism: 4}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var metrics *telemetry.Metrics
	if cfg.meter != nil {
		m, err := telemetry.NewMetrics(cfg.meter)
		if err != nil {
			logger.Warn("failed to create manager metrics", "error", err)
		} else {
			metrics = m
		}
	}

	return &Manager{
		engine:        engine,
		logger:        logger,
		metrics:       metrics,
		cache:         cfg.cache,
		store:         cfg.store,
		fallback:      cfg.fallback,
		staticEnabled: cfg.staticEnabled,
		parallelism:   cfg.parallelism,
	}
}

// Discover returns the serialized manifest for one package, consulting
// the cache first, then the static engine (when enabled), then the
// dynamic fallback. Successful results are persisted to the manifest
// store and cached against the registration file fingerprint.
func (m *Manager) Discover(ctx context.Context, root, name string) ([]byte, error) {
	log := m.logger.With("package", name)

	fingerprint := m.fingerprint(root, name)
	if m.cache != nil && fingerprint != "" {
		data, hit, err := m.cache.Get(ctx, name, fingerprint)
		switch {
		case err != nil:
			log.Warn("cache read failed", "error", err)
		case hit:
			m.metrics.RecordCacheHit(ctx, name)
			return data, nil
		}
	}

	data, err := m.discover(ctx, log, root, name)
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		if err := m.store.Put(ctx, name, data); err != nil {
			return nil, fmt.Errorf("failed to persist manifest for %s: %w", name, err)
		}
	}
	if m.cache != nil && fingerprint != "" {
		if err := m.cache.Put(ctx, name, fingerprint, data); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	return data, nil
}

func (m *Manager) discover(ctx context.Context, log *slog.Logger, root, name string) ([]byte, error) {
	if !m.staticEnabled {
		return m.dynamic(ctx, root, name)
	}

	pkg, err := m.engine.Discover(ctx, root, name)
	if err == nil {
		return json.Marshal(pkg)
	}
	if !discerr.TriggersFallback(err) {
		return nil, err
	}

	m.metrics.RecordFallback(ctx, name, discerr.CodeOf(err))
	log.Info("falling back to dynamic discovery", "code", discerr.CodeOf(err), "error", err)
	return m.dynamic(ctx, root, name)
}

func (m *Manager) dynamic(ctx context.Context, root, name string) ([]byte, error) {
	if m.fallback == nil {
		return nil, fmt.Errorf("%w: package %s", ErrNoFallback, name)
	}
	m.fallbackMu.Lock()
	defer m.fallbackMu.Unlock()
	return m.fallback.Discover(ctx, root, name)
}

// fingerprint hashes the registration file content, or returns empty when
// the file cannot be located; the cache is simply skipped then and the
// discovery paths report the real error.
func (m *Manager) fingerprint(root, name string) string {
	path, err := pysrc.Locate(root, name)
	if err != nil {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return cache.Fingerprint(content)
}

// Result is one package's outcome from DiscoverAll.
type Result struct {
	Package  string
	Manifest []byte
	Err      error
}

// DiscoverAll discovers every named package under root, at most
// parallelism packages at a time, and returns one Result per name in
// input order. Packages are independent, so a failure in one never
// affects the others.
func (m *Manager) DiscoverAll(ctx context.Context, root string, names []string) []Result {
	results := make([]Result, len(names))
	sem := make(chan struct{}, m.parallelism)

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			manifest, err := m.Discover(ctx, root, name)
			results[i] = Result{Package: name, Manifest: manifest, Err: err}
		}(i, name)
	}
	wg.Wait()
	return results
}

// Stored returns the persisted manifest for a package, or
// store.ErrNotFound when discovery has not run for it yet.
func (m *Manager) Stored(ctx context.Context, name string) ([]byte, error) {
	if m.store == nil {
		return nil, store.ErrNotFound
	}
	return m.store.Get(ctx, name)
}
