package graph

// Ordering is the concatenation order of one run.
type Ordering struct {
	// Modules lists every node exactly once, dependencies before dependents
	// wherever no cycle prevents it.
	Modules []string
	// BrokenEdges are the import edges that closed a cycle during traversal
	// and were treated as already satisfied.
	BrokenEdges []Edge
}

// Order linearizes the graph with a depth-first post-order traversal. Roots
// and dependencies are visited in lexicographic order, so the result only
// depends on the graph. A dependency that is still being visited when it is
// reached again closes a cycle: the edge is recorded as broken and not
// followed, which guarantees termination on any graph.
func (g *Graph) Order() Ordering {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(g.files))
	order := Ordering{Modules: make([]string, 0, len(g.files))}

	var visit func(string)
	visit = func(m string) {
		state[m] = visiting
		for _, dep := range g.DependenciesOf(m) {
			switch state[dep] {
			case visiting:
				order.BrokenEdges = append(order.BrokenEdges, Edge{From: m, To: dep})
			case unvisited:
				visit(dep)
			}
		}
		state[m] = done
		order.Modules = append(order.Modules, m)
	}

	for _, m := range g.Nodes() {
		if state[m] == unvisited {
			visit(m)
		}
	}

	return order
}
