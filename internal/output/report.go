package output

import (
	"fmt"
	"sort"
	"strings"

	"ccat/internal/app"
	"ccat/internal/graph"
	"ccat/internal/resolver"
)

// DependencySection renders the directory listing, the labelled dependency
// graph and the import summary. It opens the merged file and the report.
func DependencySection(res *app.Result, opts Options) string {
	var b strings.Builder

	b.WriteString("Directory Structure:\n")
	for _, f := range res.Files {
		b.WriteString("  ")
		b.WriteString(f)
		b.WriteString("\n")
	}

	b.WriteString("\nModule Dependencies:\n\n")
	b.WriteString(dependencyDiagram(res, opts))

	b.WriteString("\nImport Summary:\n")
	b.WriteString(importSummary(res))
	return b.String()
}

func dependencyDiagram(res *app.Result, opts Options) string {
	visible := make(map[string]bool)
	for _, m := range res.Graph.VisibleNodes(opts.RemoveDisconnected) {
		visible[m] = true
	}

	var nodes []string
	for _, m := range res.Ordering.Modules {
		if visible[m] {
			nodes = append(nodes, m)
		}
	}

	labels := make(map[string]string, len(nodes))
	width := 0
	for i, m := range nodes {
		labels[m] = ShortLabel(i, opts.NodeLabels)
		width = max(width, len(labels[m]))
	}

	broken := make(map[graph.Edge]bool, len(res.Ordering.BrokenEdges))
	for _, e := range res.Ordering.BrokenEdges {
		broken[e] = true
	}

	var b strings.Builder
	b.WriteString("Legend:\n")
	for _, m := range nodes {
		b.WriteString(fmt.Sprintf("%s: %s (%s)\n", labels[m], m, res.PathOf(m)))
	}
	b.WriteString("\n")
	if opts.RemoveDisconnected {
		b.WriteString("non-dependent modules elided\n\n")
	} else {
		b.WriteString("node names printed in isolation are not connected and likely unused.\n\n")
	}

	for _, m := range nodes {
		deps := res.Graph.DependenciesOf(m)
		if len(deps) == 0 {
			b.WriteString(labels[m])
			b.WriteString("\n")
			continue
		}
		targets := make([]string, 0, len(deps))
		for _, d := range deps {
			t := labels[d]
			if broken[graph.Edge{From: m, To: d}] {
				t += " (cycle)"
			}
			targets = append(targets, t)
		}
		b.WriteString(fmt.Sprintf("%-*s --> %s\n", width, labels[m], strings.Join(targets, ", ")))
	}
	return b.String()
}

func importSummary(res *app.Result) string {
	var stdlib, thirdParty, unresolved []string
	for _, ref := range res.Graph.Externals() {
		switch {
		case strings.HasPrefix(ref, "."):
			unresolved = append(unresolved, ref)
		case resolver.IsStdlib(ref):
			stdlib = append(stdlib, ref)
		default:
			thirdParty = append(thirdParty, ref)
		}
	}

	internal := make(map[string]bool)
	for _, e := range res.Graph.Edges() {
		internal[e.To] = true
	}
	internalNames := make([]string, 0, len(internal))
	for m := range internal {
		internalNames = append(internalNames, m)
	}
	sort.Strings(internalNames)

	var b strings.Builder
	b.WriteString("  External Dependencies:\n")
	b.WriteString("    Standard library: " + joinOrNone(stdlib) + "\n")
	b.WriteString("    Third-party: " + joinOrNone(thirdParty) + "\n")
	if len(unresolved) > 0 {
		b.WriteString("    Unresolved relative: " + joinOrNone(unresolved) + "\n")
	}
	b.WriteString("  Internal Dependencies:\n")
	b.WriteString("    " + joinOrNone(internalNames) + "\n")
	return b.String()
}

// Report renders the full dependency analysis report.
func Report(res *app.Result, opts Options) string {
	var b strings.Builder

	b.WriteString("Dependency Analysis Report\n")
	b.WriteString("==========================\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", res.RunID))
	b.WriteString(fmt.Sprintf("Generated: %s\n", res.GeneratedAt.Format(timeLayout)))
	b.WriteString(fmt.Sprintf("Source: %s\n", res.Root))
	b.WriteString(fmt.Sprintf("Summary Level: %s\n\n", res.Level))

	b.WriteString(DependencySection(res, opts))

	b.WriteString("\nModule Statistics:\n")
	b.WriteString(fmt.Sprintf("Total modules: %d\n", res.Graph.ModuleCount()))
	b.WriteString(fmt.Sprintf("Total dependencies: %d\n", res.Graph.EdgeCount()))
	b.WriteString(fmt.Sprintf("External imports: %d\n", len(res.Graph.Externals())))
	b.WriteString(fmt.Sprintf("Cycles: %d\n", len(res.Cycles)))
	b.WriteString(fmt.Sprintf("Duplicates suppressed: %d\n", len(res.Suppressed)))
	b.WriteString(fmt.Sprintf("Summary rewrites: %d\n", len(res.Applied)))
	b.WriteString(fmt.Sprintf("Skipped files: %d\n", len(res.Diagnostics)))

	b.WriteString("\nDependency Chains:\n")
	b.WriteString("------------------\n")
	for _, s := range res.OrderedStats() {
		b.WriteString(fmt.Sprintf("%d. %s\n", s.Position, s.Path))
		if deps := res.Graph.DependenciesOf(s.Module); len(deps) > 0 {
			paths := make([]string, len(deps))
			for i, d := range deps {
				paths[i] = res.PathOf(d)
			}
			b.WriteString(fmt.Sprintf("   Depends on: %s\n", strings.Join(paths, ", ")))
		}
	}

	b.WriteString("\nCycles:\n")
	b.WriteString("-------\n")
	if len(res.Cycles) == 0 {
		b.WriteString("None\n")
	}
	for _, cycle := range res.Cycles {
		paths := make([]string, 0, len(cycle)+1)
		for _, m := range cycle {
			paths = append(paths, res.PathOf(m))
		}
		paths = append(paths, res.PathOf(cycle[0]))
		b.WriteString("  " + strings.Join(paths, " -> ") + "\n")
	}
	for _, e := range res.Ordering.BrokenEdges {
		b.WriteString(fmt.Sprintf("  Broken for ordering: %s -> %s\n", res.PathOf(e.From), res.PathOf(e.To)))
	}

	b.WriteString("\nModule Details:\n")
	b.WriteString("---------------\n")
	for _, s := range res.OrderedStats() {
		b.WriteString(fmt.Sprintf("\n%s (%s):\n", s.Path, s.Module))
		b.WriteString("  Classes: " + joinOrNone(s.Classes) + "\n")
		b.WriteString("  Functions: " + joinOrNone(s.Functions) + "\n")
		b.WriteString("  Imports: " + joinOrNone(s.Imports) + "\n")
		b.WriteString(fmt.Sprintf("  Depth: %d  Fan-in: %d  Fan-out: %d\n", s.Metrics.Depth, s.Metrics.FanIn, s.Metrics.FanOut))
		if s.Summarized > 0 {
			b.WriteString(fmt.Sprintf("  Summarized blocks: %d\n", s.Summarized))
		}
		if s.HasErrors {
			b.WriteString("  Contains syntax errors\n")
		}
	}

	if len(res.Suppressed) > 0 {
		b.WriteString("\nSuppressed Definitions:\n")
		for _, s := range res.Suppressed {
			b.WriteString(fmt.Sprintf("  %s:%d %s (first defined in %s)\n", res.PathOf(s.Module), s.Location.Line, s.Name, res.PathOf(s.Original)))
		}
	}

	if len(res.Diagnostics) > 0 {
		b.WriteString("\nDiagnostics:\n")
		for _, d := range res.Diagnostics {
			b.WriteString(fmt.Sprintf("  %s: %s\n", d.Path, d.Message))
		}
	}

	return b.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
