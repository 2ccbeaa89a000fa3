// Package app runs the scan, graph, order, summarize and deduplicate pipeline
// over one source tree.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"ccat/internal/config"
	cerrors "ccat/internal/core/errors"
	"ccat/internal/dedup"
	"ccat/internal/graph"
	"ccat/internal/parser"
	"ccat/internal/resolver"
	"ccat/internal/shared/observability"
	"ccat/internal/shared/util"
	"ccat/internal/summary"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options configure a pipeline. Zero values mean no exclusions and no
// summarization.
type Options struct {
	Root            string
	ExcludeDirs     []string
	ExcludeFiles    []string
	ExcludePatterns []string
	// SkipPaths are files never scanned, typically the tool's own outputs.
	SkipPaths []string
	Level     summary.Level
	Rules     summary.Rules
}

// OptionsFromConfig derives pipeline options from a validated config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	rules, err := cfg.SummaryRules()
	if err != nil {
		return Options{}, cerrors.Wrap(err, cerrors.CodeValidationError, "build summary rules")
	}
	return Options{
		Root:            cfg.SourceDir,
		ExcludeDirs:     cfg.Exclude.Dirs,
		ExcludeFiles:    cfg.Exclude.Files,
		ExcludePatterns: cfg.Exclude.Patterns,
		SkipPaths: []string{
			cfg.Output.Concat,
			cfg.Output.Notebook,
		},
		Level: cfg.SummaryLevel(),
		Rules: rules,
	}, nil
}

type App struct {
	opts       Options
	parser     *parser.Parser
	match      *matcher
	summarizer *summary.Summarizer
}

func New(opts Options) (*App, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	opts.Root = filepath.Clean(opts.Root)

	p, err := parser.NewPythonParser()
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeInternal, "load python grammar")
	}

	m, err := newMatcher(opts.ExcludeDirs, opts.ExcludeFiles, opts.ExcludePatterns, opts.SkipPaths)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeValidationError, "compile exclusions")
	}

	return &App{
		opts:       opts,
		parser:     p,
		match:      m,
		summarizer: summary.New(opts.Level, opts.Rules),
	}, nil
}

func (a *App) Root() string { return a.opts.Root }

// Run executes one complete pass. Every run starts from scratch; nothing is
// carried over from earlier runs. The only error that aborts a run with
// readable input is a tree without any scannable file.
func (a *App) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("root", a.opts.Root),
		attribute.String("summary_level", a.opts.Level.String()),
	))
	defer span.End()

	start := time.Now()
	log := slog.With("run_id", runID)
	log.Debug("run started", "root", a.opts.Root, "level", a.opts.Level)

	res := &Result{
		RunID:       runID,
		Root:        a.opts.Root,
		Level:       a.opts.Level,
		GeneratedAt: start,
		Stats:       make(map[string]ModuleStats),
	}

	files, err := a.scan(ctx, log, res)
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}
	if len(files) == 0 {
		observability.RunsTotal.WithLabelValues("no_sources").Inc()
		err := cerrors.NoSources(a.opts.Root, len(res.Diagnostics))
		span.RecordError(err)
		return nil, err
	}

	res.Graph = a.buildGraph(ctx, files, res)
	a.order(ctx, res)
	a.assemble(ctx, log, res)

	observability.GraphNodes.Set(float64(res.Graph.ModuleCount()))
	observability.GraphEdges.Set(float64(res.Graph.EdgeCount()))
	observability.BrokenEdges.Set(float64(len(res.Ordering.BrokenEdges)))
	observability.DuplicatesSuppressed.Add(float64(len(res.Suppressed)))
	for _, applied := range res.Applied {
		observability.RulesApplied.WithLabelValues(applied.Rule).Inc()
	}
	observability.RunDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	observability.RunsTotal.WithLabelValues("ok").Inc()

	log.Info("run finished",
		"modules", res.Graph.ModuleCount(),
		"edges", res.Graph.EdgeCount(),
		"broken_edges", len(res.Ordering.BrokenEdges),
		"suppressed", len(res.Suppressed),
		"skipped", len(res.Diagnostics),
		"duration", time.Since(start),
		"heap_mb", util.GetHeapAllocMB(),
	)
	return res, nil
}

func (a *App) scan(ctx context.Context, log *slog.Logger, res *Result) ([]*parser.File, error) {
	_, span := observability.Tracer.Start(ctx, "app.scan")
	defer span.End()
	defer observeStage("scan", time.Now())

	paths, diags, err := a.ScanDirectories(a.opts.Root)
	if err != nil {
		return nil, cerrors.AddContext(
			cerrors.Wrap(err, cerrors.CodeIO, "walk source tree"),
			cerrors.CtxPath, a.opts.Root,
		)
	}
	for _, d := range diags {
		log.Warn("failed to read directory", "path", d.Path, "error", d.Message)
	}
	res.Diagnostics = append(res.Diagnostics, diags...)

	files := make([]*parser.File, 0, len(paths))
	for _, path := range paths {
		f, err := a.ProcessFile(path)
		if err != nil {
			log.Warn("failed to process file", "path", path, "error", err)
			observability.FilesSkipped.Inc()
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Path: a.rel(path), Message: err.Error()})
			continue
		}
		if f.HasErrors {
			log.Debug("file has syntax errors", "path", path)
		}
		observability.FilesScanned.Inc()
		files = append(files, f)
		res.Files = append(res.Files, a.rel(path))
	}
	sort.Strings(res.Files)
	span.SetAttributes(attribute.Int("files", len(files)), attribute.Int("skipped", len(res.Diagnostics)))
	return files, nil
}

func (a *App) buildGraph(ctx context.Context, files []*parser.File, res *Result) *graph.Graph {
	_, span := observability.Tracer.Start(ctx, "app.buildGraph")
	defer span.End()
	defer observeStage("graph", time.Now())

	r := resolver.NewPythonResolver(a.opts.Root)
	for _, f := range files {
		f.Module = r.GetModuleName(f.Path)
	}

	g := graph.Build(files, r)

	collisions := g.Collisions()
	for _, module := range util.SortedStringKeys(collisions) {
		kept, _ := g.File(module)
		for _, path := range collisions[module] {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Path:    a.rel(path),
				Message: fmt.Sprintf("module %s already provided by %s", module, a.rel(kept.Path)),
			})
		}
	}

	span.SetAttributes(attribute.Int("modules", g.ModuleCount()), attribute.Int("edges", g.EdgeCount()))
	return g
}

func (a *App) order(ctx context.Context, res *Result) {
	_, span := observability.Tracer.Start(ctx, "app.order")
	defer span.End()
	defer observeStage("order", time.Now())

	res.Ordering = res.Graph.Order()
	res.Cycles = res.Graph.DetectCycles()
	for _, e := range res.Ordering.BrokenEdges {
		slog.Info("import cycle broken", "from", e.From, "to", e.To, "run_id", res.RunID)
	}
	span.SetAttributes(attribute.Int("broken_edges", len(res.Ordering.BrokenEdges)))
}

// assemble summarizes, deduplicates and rewrites imports of every module in
// concatenation order.
func (a *App) assemble(ctx context.Context, log *slog.Logger, res *Result) {
	_, span := observability.Tracer.Start(ctx, "app.assemble")
	defer span.End()
	defer observeStage("assemble", time.Now())

	metrics := res.Graph.ComputeModuleMetrics()
	inCycle := graph.InCycle(res.Cycles)
	hoisted := newImportSet()
	seen := dedup.Seen{}

	for i, module := range res.Ordering.Modules {
		f, ok := res.Graph.File(module)
		if !ok {
			continue
		}

		blocks, applied := a.summarizer.Summarize(module, f.Blocks)
		blocks, next, suppressed := dedup.Apply(seen, module, blocks)
		seen = next
		for _, s := range suppressed {
			log.Debug("duplicate definition suppressed", "module", s.Module, "name", s.Name, "original", s.Original)
		}

		blocks = rewriteImports(res.Graph, f, blocks, hoisted)

		res.Sections = append(res.Sections, Section{
			Module: module,
			Path:   a.rel(f.Path),
			Text:   trimSection(parser.JoinBlocks(blocks, f.Trailer)),
		})
		res.Applied = append(res.Applied, applied...)
		res.Suppressed = append(res.Suppressed, suppressed...)
		res.Stats[module] = moduleStats(f, a.rel(f.Path), i+1, metrics[module], inCycle[module], len(suppressed), len(applied))
	}

	res.Imports = hoisted.sorted()
}

func moduleStats(f *parser.File, rel string, pos int, m graph.ModuleMetrics, inCycle bool, suppressed, applied int) ModuleStats {
	s := ModuleStats{
		Module:     f.Module,
		Path:       rel,
		Position:   pos,
		Metrics:    m,
		InCycle:    inCycle,
		Suppressed: suppressed,
		Summarized: applied,
		HasErrors:  f.HasErrors,
	}
	for _, d := range f.Definitions {
		if d.Kind == parser.KindClass {
			s.Classes = append(s.Classes, d.Name)
		} else {
			s.Functions = append(s.Functions, d.Name)
		}
	}
	seen := make(map[string]bool)
	for _, imp := range f.Imports {
		if !seen[imp.RawImport] {
			seen[imp.RawImport] = true
			s.Imports = append(s.Imports, imp.RawImport)
		}
	}
	return s
}

func (a *App) rel(path string) string {
	rel, err := filepath.Rel(a.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func observeStage(stage string, start time.Time) {
	observability.RunDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
