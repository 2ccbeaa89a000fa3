// # internal/graph/graph.go
package graph

import (
	"ccat/internal/parser"
	"ccat/internal/shared/util"
)

// Graph is the module dependency graph of one run. Nodes are the scanned
// modules; an edge From -> To means From imports the internal module To.
// It is built once by Build and only read afterwards.
type Graph struct {
	files map[string]*parser.File // module -> file

	// Relationships
	imports    map[string]map[string]*ImportEdge // from -> to -> edge
	importedBy map[string]map[string]bool        // to -> from

	// Unresolved import references, keyed by importing module.
	externals map[string]map[string]bool

	// Top-level import blocks that reference scanned modules (or relative
	// paths) and must not survive concatenation.
	internalBlocks map[string]map[int]bool
	// Nested import statements of the same kind, keyed by source offset.
	internalNested map[string]map[int]bool

	// Files whose module name was already taken by another file.
	collisions map[string][]string
}

type ImportEdge struct {
	From      string
	To        string
	RawImport string
	Location  parser.Location
}

type Edge struct {
	From string
	To   string
}

func newGraph() *Graph {
	return &Graph{
		files:          make(map[string]*parser.File),
		imports:        make(map[string]map[string]*ImportEdge),
		importedBy:     make(map[string]map[string]bool),
		externals:      make(map[string]map[string]bool),
		internalBlocks: make(map[string]map[int]bool),
		internalNested: make(map[string]map[int]bool),
		collisions:     make(map[string][]string),
	}
}

func (g *Graph) addEdge(from, to string, imp parser.Import) {
	if from == to {
		return
	}
	if g.imports[from] == nil {
		g.imports[from] = make(map[string]*ImportEdge)
	}
	if _, exists := g.imports[from][to]; exists {
		return
	}
	g.imports[from][to] = &ImportEdge{
		From:      from,
		To:        to,
		RawImport: imp.RawImport,
		Location:  imp.Location,
	}
	if g.importedBy[to] == nil {
		g.importedBy[to] = make(map[string]bool)
	}
	g.importedBy[to][from] = true
}

func (g *Graph) addExternal(from, ref string) {
	if g.externals[from] == nil {
		g.externals[from] = make(map[string]bool)
	}
	g.externals[from][ref] = true
}

// Nodes returns every module in lexicographic order.
func (g *Graph) Nodes() []string {
	return util.SortedStringKeys(g.files)
}

func (g *Graph) ModuleCount() int {
	return len(g.files)
}

func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.imports {
		n += len(targets)
	}
	return n
}

func (g *Graph) HasNode(module string) bool {
	_, ok := g.files[module]
	return ok
}

func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.imports[from][to]
	return ok
}

// File returns the scan record of module.
func (g *Graph) File(module string) (*parser.File, bool) {
	f, ok := g.files[module]
	return f, ok
}

// Edges returns all edges sorted by (From, To).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, from := range util.SortedStringKeys(g.imports) {
		for _, to := range util.SortedStringKeys(g.imports[from]) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// GetImports returns a copy of the edge map.
func (g *Graph) GetImports() map[string]map[string]*ImportEdge {
	res := make(map[string]map[string]*ImportEdge, len(g.imports))
	for from, targets := range g.imports {
		res[from] = make(map[string]*ImportEdge, len(targets))
		for to, edge := range targets {
			c := *edge
			res[from][to] = &c
		}
	}
	return res
}

// DependenciesOf returns the modules imported by module, sorted.
func (g *Graph) DependenciesOf(module string) []string {
	return util.SortedStringKeys(g.imports[module])
}

// DependentsOf returns the modules importing module, sorted.
func (g *Graph) DependentsOf(module string) []string {
	return util.SortedStringKeys(g.importedBy[module])
}

// Externals returns every unresolved import reference, sorted.
func (g *Graph) Externals() []string {
	all := make(map[string]bool)
	for _, refs := range g.externals {
		for ref := range refs {
			all[ref] = true
		}
	}
	return util.SortedStringKeys(all)
}

// ExternalsOf returns the unresolved references of one module, sorted.
func (g *Graph) ExternalsOf(module string) []string {
	return util.SortedStringKeys(g.externals[module])
}

// IsInternalImportBlock reports whether the top-level block idx of module is an
// import statement that references a scanned module or a relative path.
func (g *Graph) IsInternalImportBlock(module string, idx int) bool {
	return g.internalBlocks[module][idx]
}

// IsInternalNestedImport reports whether the import statement starting at
// offset, inside a function, class or compound statement of module, references
// a scanned module or a relative path.
func (g *Graph) IsInternalNestedImport(module string, offset int) bool {
	return g.internalNested[module][offset]
}

// Collisions returns module -> paths of files skipped because an earlier file
// already claimed the module name.
func (g *Graph) Collisions() map[string][]string {
	res := make(map[string][]string, len(g.collisions))
	for m, paths := range g.collisions {
		res[m] = append([]string(nil), paths...)
	}
	return res
}

// Isolated returns the modules without incoming or outgoing edges, sorted.
func (g *Graph) Isolated() []string {
	var res []string
	for _, m := range g.Nodes() {
		if len(g.imports[m]) == 0 && len(g.importedBy[m]) == 0 {
			res = append(res, m)
		}
	}
	return res
}

// VisibleNodes returns the nodes shown in graph views. Disconnected modules
// are omitted when removeDisconnected is set; the concatenation order is not
// affected by this.
func (g *Graph) VisibleNodes(removeDisconnected bool) []string {
	if !removeDisconnected {
		return g.Nodes()
	}
	isolated := make(map[string]bool)
	for _, m := range g.Isolated() {
		isolated[m] = true
	}
	res := make([]string, 0, len(g.files))
	for _, m := range g.Nodes() {
		if !isolated[m] {
			res = append(res, m)
		}
	}
	return res
}
