package graph

import (
	"sort"

	"ccat/internal/parser"
	"ccat/internal/resolver"
)

// Build constructs the dependency graph from scanned files. Every file must
// already carry its module name. When two files claim the same module a
// package __init__.py wins, as it does for the Python import system, then the
// lexicographically smaller path. The others are recorded as collisions.
func Build(files []*parser.File, r *resolver.PythonResolver) *Graph {
	g := newGraph()

	sorted := append([]*parser.File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].IsPackage != sorted[j].IsPackage {
			return sorted[i].IsPackage
		}
		return sorted[i].Path < sorted[j].Path
	})

	for _, f := range sorted {
		if f == nil || f.Module == "" {
			continue
		}
		if _, taken := g.files[f.Module]; taken {
			g.collisions[f.Module] = append(g.collisions[f.Module], f.Path)
			continue
		}
		g.files[f.Module] = f
		r.Register(f.Module, f.IsPackage)
	}

	for _, module := range g.Nodes() {
		f := g.files[module]
		for _, imp := range f.Imports {
			targets := r.Resolve(module, f.IsPackage, imp)

			if imp.IsRelative || len(targets) > 0 {
				if imp.TopLevel {
					markInternal(g.internalBlocks, module, imp.Block)
				} else {
					markInternal(g.internalNested, module, imp.Offset)
				}
			}

			if len(targets) == 0 {
				g.addExternal(module, imp.RawImport)
				continue
			}
			// A module importing itself is neither an edge nor external.
			for _, to := range targets {
				g.addEdge(module, to, imp)
			}
		}
	}

	return g
}

func markInternal(set map[string]map[int]bool, module string, key int) {
	if set[module] == nil {
		set[module] = make(map[int]bool)
	}
	set[module][key] = true
}
