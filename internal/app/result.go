package app

import (
	"time"

	"ccat/internal/dedup"
	"ccat/internal/graph"
	"ccat/internal/summary"
)

// Section is the merged text of one module, in concatenation order.
type Section struct {
	Module string
	Path   string // Slash-separated path relative to the scan root
	Text   string
}

// ModuleStats describes one module for reports.
type ModuleStats struct {
	Module     string
	Path       string
	Position   int // 1-based index in the concatenation order
	Classes    []string
	Functions  []string
	Imports    []string // References as written
	Metrics    graph.ModuleMetrics
	InCycle    bool
	Suppressed int
	Summarized int
	HasErrors  bool
}

// Diagnostic is a non-fatal problem met during a run.
type Diagnostic struct {
	Path    string
	Message string
}

// Result is everything one run produced. It is not modified after Run
// returns.
type Result struct {
	RunID       string
	Root        string
	Level       summary.Level
	GeneratedAt time.Time

	Graph    *graph.Graph
	Ordering graph.Ordering
	Cycles   [][]string

	Sections []Section
	// Imports are the hoisted external import statements, future imports
	// first, then sorted.
	Imports []string
	Files   []string // Scanned files relative to Root, sorted
	Stats   map[string]ModuleStats

	Suppressed  []dedup.Suppressed
	Applied     []summary.Application
	Diagnostics []Diagnostic
}

// OrderedStats returns module statistics in concatenation order.
func (r *Result) OrderedStats() []ModuleStats {
	out := make([]ModuleStats, 0, len(r.Ordering.Modules))
	for _, m := range r.Ordering.Modules {
		if s, ok := r.Stats[m]; ok {
			out = append(out, s)
		}
	}
	return out
}

// PathOf returns the relative path of module, or the module name when it is
// unknown.
func (r *Result) PathOf(module string) string {
	if s, ok := r.Stats[module]; ok {
		return s.Path
	}
	return module
}
