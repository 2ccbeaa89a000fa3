package output

import (
	"fmt"
	"strings"
	"unicode"

	"ccat/internal/app"
	"ccat/internal/graph"
)

const (
	externalAggregationThreshold = 10
	externalAggregateNodeID      = "__external_aggregate__"
)

// view is the node and edge selection shared by the graph renderers.
type view struct {
	res *app.Result

	modules   []string // visible modules in concatenation order
	moduleSet map[string]bool
	edges     []graph.Edge

	broken     map[graph.Edge]bool
	cycleEdges map[string]bool
	inCycle    map[string]bool

	externals     []string
	externalsOf   map[string][]string
	aggregateExt  bool
	externalCount map[string]int
}

func newView(res *app.Result, opts Options) *view {
	v := &view{
		res:           res,
		moduleSet:     make(map[string]bool),
		broken:        make(map[graph.Edge]bool, len(res.Ordering.BrokenEdges)),
		cycleEdges:    cycleEdgeSet(res.Cycles),
		inCycle:       graph.InCycle(res.Cycles),
		externalsOf:   make(map[string][]string),
		externalCount: make(map[string]int),
	}

	for _, m := range res.Graph.VisibleNodes(opts.RemoveDisconnected) {
		v.moduleSet[m] = true
	}
	for _, m := range res.Ordering.Modules {
		if v.moduleSet[m] {
			v.modules = append(v.modules, m)
		}
	}
	for _, e := range res.Ordering.BrokenEdges {
		v.broken[e] = true
	}

	externalSet := make(map[string]bool)
	for _, m := range v.modules {
		for _, dep := range res.Graph.DependenciesOf(m) {
			if v.moduleSet[dep] {
				v.edges = append(v.edges, graph.Edge{From: m, To: dep})
			}
		}
		for _, ref := range res.Graph.ExternalsOf(m) {
			if strings.HasPrefix(ref, ".") {
				continue
			}
			v.externalsOf[m] = append(v.externalsOf[m], ref)
			v.externalCount[m]++
			externalSet[ref] = true
		}
	}
	for _, ref := range res.Graph.Externals() {
		if externalSet[ref] {
			v.externals = append(v.externals, ref)
		}
	}
	v.aggregateExt = len(v.externals) > externalAggregationThreshold
	return v
}

// nodeNames lists every node that needs an identifier.
func (v *view) nodeNames() []string {
	names := append([]string{}, v.modules...)
	names = append(names, v.externals...)
	if v.aggregateExt {
		names = append(names, externalAggregateNodeID)
	}
	return names
}

func (v *view) isCycleEdge(e graph.Edge) bool {
	return v.broken[e] || v.cycleEdges[e.From+"->"+e.To]
}

// moduleLabel is the multi-line node caption, with lines joined by sep.
func (v *view) moduleLabel(module, sep string) string {
	s := v.res.Stats[module]
	return strings.Join([]string{
		module,
		fmt.Sprintf("(%d funcs, %d classes)", len(s.Functions), len(s.Classes)),
		fmt.Sprintf("(d=%d in=%d out=%d)", s.Metrics.Depth, s.Metrics.FanIn, s.Metrics.FanOut),
	}, sep)
}

func cycleEdgeSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		if len(cycle) < 2 {
			continue
		}
		for i := range cycle {
			out[cycle[i]+"->"+cycle[(i+1)%len(cycle)]] = true
		}
	}
	return out
}

// sanitizeID maps a module name to an identifier made of letters, digits and
// underscores that does not start with a digit.
func sanitizeID(module string) string {
	var b strings.Builder
	for _, r := range module {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "m"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "m_" + out
	}
	return out
}

// makeIDs assigns unique identifiers, suffixing repeated sanitized names.
func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
