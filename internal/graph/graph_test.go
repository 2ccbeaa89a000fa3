// # internal/graph/graph_test.go
package graph

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"ccat/internal/parser"
	"ccat/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pyFile(module string, imports ...parser.Import) *parser.File {
	path := strings.ReplaceAll(module, ".", "/") + ".py"
	for i := range imports {
		if imports[i].RawImport == "" {
			imports[i].RawImport = strings.Repeat(".", imports[i].Level) + imports[i].Module
		}
		if !imports[i].TopLevel {
			imports[i].Block = -1
		}
	}
	return &parser.File{Path: path, Module: module, Imports: imports}
}

func imp(module string) parser.Import {
	return parser.Import{Module: module, TopLevel: true}
}

func build(t *testing.T, files ...*parser.File) *Graph {
	t.Helper()
	return Build(files, resolver.NewPythonResolver(t.TempDir()))
}

func indexOf(order []string) map[string]int {
	idx := make(map[string]int, len(order))
	for i, m := range order {
		idx[m] = i
	}
	return idx
}

func assertExactlyOnce(t *testing.T, g *Graph, order []string) {
	t.Helper()
	require.Len(t, order, g.ModuleCount())
	seen := make(map[string]bool)
	for _, m := range order {
		require.False(t, seen[m], "module %s emitted twice", m)
		seen[m] = true
	}
	for _, m := range g.Nodes() {
		require.True(t, seen[m], "module %s missing from order", m)
	}
}

func TestBuild_EdgesAndExternals(t *testing.T) {
	g := build(t,
		pyFile("app", imp("lib"), imp("lib"), imp("os"), imp("numpy")),
		pyFile("lib", imp("lib")),
	)

	assert.Equal(t, []string{"app", "lib"}, g.Nodes())
	assert.Equal(t, []Edge{{From: "app", To: "lib"}}, g.Edges())
	assert.Equal(t, 1, g.EdgeCount())
	assert.False(t, g.HasEdge("lib", "lib"), "self import must not create an edge")
	assert.Equal(t, []string{"numpy", "os"}, g.Externals())
	assert.Equal(t, []string{"numpy", "os"}, g.ExternalsOf("app"))
	assert.Empty(t, g.ExternalsOf("lib"))
	assert.Equal(t, []string{"app"}, g.DependentsOf("lib"))
}

func TestBuild_ResolvesParentRelativeImport(t *testing.T) {
	g := build(t,
		pyFile("pkg.a"),
		pyFile("pkg.sub.b", parser.Import{Module: "a", IsRelative: true, Level: 2, Items: []string{"thing"}, TopLevel: true}),
	)

	assert.True(t, g.HasEdge("pkg.sub.b", "pkg.a"))
	assert.Empty(t, g.Externals())
	assert.True(t, g.IsInternalImportBlock("pkg.sub.b", 0))
}

func TestBuild_UnresolvedRelativeImportIsExternal(t *testing.T) {
	g := build(t,
		pyFile("pkg.a", parser.Import{Module: "missing", IsRelative: true, Level: 1, TopLevel: true}),
	)

	assert.Equal(t, []string{".missing"}, g.Externals())
	assert.Zero(t, g.EdgeCount())
	assert.True(t, g.IsInternalImportBlock("pkg.a", 0), "relative imports never survive concatenation")
}

func TestBuild_NestedImportsAreTrackedByOffset(t *testing.T) {
	g := build(t,
		pyFile("pkg.a"),
		pyFile("pkg.b",
			parser.Import{Module: "a", IsRelative: true, Level: 1, Enclosing: 1, Offset: 40},
			parser.Import{Module: "json", Enclosing: 2, Offset: 90},
		),
	)

	assert.True(t, g.HasEdge("pkg.b", "pkg.a"))
	assert.True(t, g.IsInternalNestedImport("pkg.b", 40))
	assert.False(t, g.IsInternalNestedImport("pkg.b", 90))
	assert.False(t, g.IsInternalImportBlock("pkg.b", -1))
	assert.Equal(t, []string{"json"}, g.ExternalsOf("pkg.b"))
}

func TestBuild_ModuleCollision(t *testing.T) {
	first := pyFile("pkg")
	first.Path = "pkg.py"
	second := pyFile("pkg")
	second.Path = "pkg/__init__.py"
	second.IsPackage = true

	g := build(t, first, second)

	f, ok := g.File("pkg")
	require.True(t, ok)
	assert.Equal(t, "pkg/__init__.py", f.Path)
	assert.Equal(t, map[string][]string{"pkg": {"pkg.py"}}, g.Collisions())

	a := pyFile("mod")
	a.Path = "a/mod.py"
	b := pyFile("mod")
	b.Path = "b/mod.py"
	g = build(t, b, a)
	f, _ = g.File("mod")
	assert.Equal(t, "a/mod.py", f.Path)
}

func TestOrder_Scenario(t *testing.T) {
	g := build(t,
		pyFile("top", imp("mid")),
		pyFile("mid", imp("base")),
		pyFile("base"),
	)

	order := g.Order()
	assert.Equal(t, []string{"base", "mid", "top"}, order.Modules)
	assert.Empty(t, order.BrokenEdges)
}

func TestOrder_TopologicalOnRandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 2 + rng.Intn(12)
		files := make([]*parser.File, 0, n)
		for i := 0; i < n; i++ {
			var imports []parser.Import
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					imports = append(imports, imp(fmt.Sprintf("m%02d", j)))
				}
			}
			files = append(files, pyFile(fmt.Sprintf("m%02d", i), imports...))
		}
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })

		g := build(t, files...)
		order := g.Order()
		assertExactlyOnce(t, g, order.Modules)
		require.Empty(t, order.BrokenEdges)

		pos := indexOf(order.Modules)
		for _, e := range g.Edges() {
			require.Less(t, pos[e.To], pos[e.From], "dependency %s must precede %s", e.To, e.From)
		}
	}
}

func TestOrder_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		files []*parser.File
	}{
		{
			name:  "self import",
			files: []*parser.File{pyFile("a", imp("a"))},
		},
		{
			name:  "mutual",
			files: []*parser.File{pyFile("a", imp("b")), pyFile("b", imp("a"))},
		},
		{
			name: "three cycle with tail",
			files: []*parser.File{
				pyFile("a", imp("b")),
				pyFile("b", imp("c")),
				pyFile("c", imp("a"), imp("d")),
				pyFile("d"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.files...)
			order := g.Order()
			assertExactlyOnce(t, g, order.Modules)
		})
	}
}

func TestOrder_MutualCycleIsDeterministic(t *testing.T) {
	g := build(t, pyFile("b", imp("a")), pyFile("a", imp("b")))
	order := g.Order()

	assert.Equal(t, []string{"b", "a"}, order.Modules)
	assert.Equal(t, []Edge{{From: "b", To: "a"}}, order.BrokenEdges)

	again := build(t, pyFile("a", imp("b")), pyFile("b", imp("a"))).Order()
	assert.Equal(t, order, again)
}

func TestOrder_DisconnectedNodes(t *testing.T) {
	g := build(t,
		pyFile("app", imp("lib")),
		pyFile("lib"),
		pyFile("lonely"),
	)

	assert.Equal(t, []string{"lonely"}, g.Isolated())
	assert.Equal(t, []string{"app", "lib", "lonely"}, g.VisibleNodes(false))
	assert.Equal(t, []string{"app", "lib"}, g.VisibleNodes(true))

	order := g.Order()
	assertExactlyOnce(t, g, order.Modules)
	assert.Contains(t, order.Modules, "lonely")
}

func TestGraph_DetectCycles(t *testing.T) {
	// A -> B -> C -> A
	g := build(t,
		pyFile("A", imp("B")),
		pyFile("B", imp("C")),
		pyFile("C", imp("A")),
	)

	cycles := g.DetectCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B", "C"}, cycles[0])
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, InCycle(cycles))
}

func TestGraph_ComputeModuleMetrics(t *testing.T) {
	// C -> B -> A, plus B <-> D
	g := build(t,
		pyFile("A"),
		pyFile("B", imp("A"), imp("D")),
		pyFile("C", imp("B")),
		pyFile("D", imp("B")),
	)

	metrics := g.ComputeModuleMetrics()
	assert.Equal(t, ModuleMetrics{Depth: 0, FanIn: 1, FanOut: 0}, metrics["A"])
	assert.Equal(t, ModuleMetrics{Depth: 1, FanIn: 2, FanOut: 2}, metrics["B"])
	assert.Equal(t, ModuleMetrics{Depth: 2, FanIn: 0, FanOut: 1}, metrics["C"])
	assert.Equal(t, metrics["B"].Depth, metrics["D"].Depth)
}
