package pluginkit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trellis-data/pluginkit/astgrep"
	"github.com/trellis-data/pluginkit/discerr"
	"github.com/trellis-data/pluginkit/enum"
	"github.com/trellis-data/pluginkit/manifest"
	"github.com/trellis-data/pluginkit/pyscan"
	"github.com/trellis-data/pluginkit/pysrc"
	"github.com/trellis-data/pluginkit/resolve"
	"github.com/trellis-data/pluginkit/telemetry"
)

// DefaultEntryPoint is the registration function plugin packages define.
const DefaultEntryPoint = "register_plugin"

// ioTypeMembers is the serialization table for the IOType enumeration in
// the plugin descriptor models. It must match the interpreter's own enum
// serialization exactly.
var ioTypeMembers = map[string]string{
	"STDIN":  "stdin",
	"STDOUT": "stdout",
	"BOTH":   "both",
}

// Engine is the static discovery engine. A single Engine is safe for
// concurrent use: discovery of one package is a pure computation over an
// immutable copy of the registration file, so packages can be discovered
// fully in parallel.
type Engine struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *telemetry.Metrics
	matcher    astgrep.Matcher
	entryPoint string
}

// NewEngine creates a static discovery engine.
func NewEngine(opts ...EngineOption) *Engine {
	cfg := engineConfig{entryPoint: DefaultEntryPoint}
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
			logger.Warn("failed to create discovery metrics", "error", err)
		} else {
			metrics = m
		}
	}

	enum.Register("IOType", ioTypeMembers)

	return &Engine{
		logger:     logger,
		tracer:     cfg.tracer,
		metrics:    metrics,
		matcher:    cfg.matcher,
		entryPoint: cfg.entryPoint,
	}
}

// Discover statically discovers the plugins of the package installed
// under root. name is the package's declared full name. It performs no
// I/O beyond reading the registration file and package metadata (and
// invoking the structural-match helper, when one is configured).
//
// On any typed discovery error the caller should rerun the package
// through the dynamic path; no partial manifest is ever returned.
func (e *Engine) Discover(ctx context.Context, root, name string) (*manifest.Package, error) {
	start := time.Now()
	log := e.logger.With("discovery_id", uuid.NewString(), "package", name)

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "discovery.static",
			trace.WithAttributes(attribute.String("package", name)))
		defer span.End()
	}

	pkg, err := e.discover(ctx, log, root, name)
	e.metrics.RecordAttempt(ctx, name, time.Since(start), err == nil)

	if err != nil {
		log.Debug("static discovery failed",
			"code", discerr.CodeOf(err), "error", err, "duration", time.Since(start))
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, discerr.CodeOf(err))
		}
		return nil, err
	}

	log.Debug("static discovery succeeded",
		"plugins", len(pkg.Plugins), "duration", time.Since(start))
	if span != nil {
		span.SetAttributes(attribute.Int("plugins", len(pkg.Plugins)))
		span.SetStatus(codes.Ok, "")
	}
	return pkg, nil
}

func (e *Engine) discover(ctx context.Context, log *slog.Logger, root, name string) (*manifest.Package, error) {
	path, err := pysrc.Locate(root, name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, discerr.New(name, "locate", discerr.CodeSourceNotFound,
			"registration file is not readable").WithCause(err)
	}
	src := string(content)

	imports, warnings := pyscan.BuildImportMap(src)
	for _, w := range warnings {
		log.Warn("skipped unrecognized import",
			"code", discerr.CodeUnrecognizedImportSyntax, "line", w.Line, "text", w.Text)
	}

	body, err := pyscan.ExtractRegistrationBody(name, src, e.entryPoint)
	if err != nil {
		return nil, err
	}

	var sites []pyscan.Site
	if e.matcher != nil {
		sites, err = e.matchSites(ctx, name, path, body)
		if err != nil {
			return nil, err
		}
	} else {
		sites = pyscan.FindSites(body, manifest.Constructors())
	}

	resolved := make([]manifest.ResolvedSite, 0, len(sites))
	for _, site := range sites {
		rs, err := resolve.Site(name, site, imports)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rs)
	}

	return manifest.Build(name, pysrc.Dependencies(root), resolved)
}

// matchSites extracts registration sites with the external structural
// matcher, keeping only matches inside the entry point body and ordering
// them by source position.
func (e *Engine) matchSites(ctx context.Context, name, path string, body pyscan.Body) ([]pyscan.Site, error) {
	var sites []pyscan.Site
	for _, constructor := range manifest.Constructors() {
		matches, err := e.matcher.Match(ctx, astgrep.CallPattern(constructor), path)
		if err != nil {
			var de *discerr.Error
			if errors.As(err, &de) && de.Package == "" {
				de.Package = name
			}
			return nil, err
		}
		for _, m := range matches {
			if m.Start < body.Offset || m.End > body.Offset+len(body.Text) {
				continue
			}
			open := strings.Index(m.Text, "(")
			closing := strings.LastIndex(m.Text, ")")
			if open < 0 || closing <= open {
				return nil, discerr.New(name, "match", discerr.CodeStructuralMatchToolFailure,
					"helper returned a span that is not a call expression").
					WithDetails(map[string]any{"text": m.Text})
			}
			sites = append(sites, pyscan.Site{
				Constructor: constructor,
				ArgsText:    m.Text[open+1 : closing],
				Start:       m.Start,
				End:         m.End,
			})
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Start < sites[j].Start })
	return sites, nil
}
