// # internal/graph/detect.go
package graph

// DetectCycles lists the import cycles found by a depth-first search. Each
// cycle starts at the module where the search entered it. Roots and
// neighbours are visited in lexicographic order so the result is stable.
// Cycles are informational; the orderer breaks them on its own.
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	for _, modName := range g.Nodes() {
		if !visited[modName] {
			g.findCycles(modName, visited, onStack, []string{}, &cycles)
		}
	}

	return cycles
}

func (g *Graph) findCycles(curr string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range g.DependenciesOf(curr) {
		if onStack[next] {
			// Found a cycle
			cycleStart := -1
			for i, mod := range path {
				if mod == next {
					cycleStart = i
					break
				}
			}
			if cycleStart != -1 {
				cycle := make([]string, len(path)-cycleStart)
				copy(cycle, path[cycleStart:])
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// InCycle returns the set of modules that take part in at least one cycle.
func InCycle(cycles [][]string) map[string]bool {
	res := make(map[string]bool)
	for _, cycle := range cycles {
		for _, m := range cycle {
			res[m] = true
		}
	}
	return res
}
