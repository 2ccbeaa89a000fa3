// Package dedup suppresses repeated top-level definitions while modules are
// merged in order. The first module to define a name wins for the whole run.
package dedup

import (
	"fmt"

	"ccat/internal/parser"
)

// Seen maps an emitted definition name to the module that emitted it.
// A run starts from an empty Seen and threads it through every Apply call.
type Seen map[string]string

// Suppressed records one definition that was not emitted.
type Suppressed struct {
	Name     string
	Module   string // module whose definition was dropped
	Original string // module whose definition was kept
	Location parser.Location
}

// Apply filters the blocks of module against seen. Definition blocks whose
// name is already present are replaced by a marker comment; the others are
// emitted and their names added. The input slice and map are not modified:
// the updated set is returned.
func Apply(seen Seen, module string, blocks []parser.Block) ([]parser.Block, Seen, []Suppressed) {
	next := make(Seen, len(seen))
	for name, origin := range seen {
		next[name] = origin
	}

	out := make([]parser.Block, 0, len(blocks))
	var suppressed []Suppressed

	for _, block := range blocks {
		if !block.IsDefinition() {
			out = append(out, block)
			continue
		}

		if origin, ok := next[block.Name]; ok {
			suppressed = append(suppressed, Suppressed{
				Name:     block.Name,
				Module:   module,
				Original: origin,
				Location: block.Location,
			})
			out = append(out, parser.Block{
				Kind:     parser.BlockComment,
				NodeKind: "comment",
				Prefix:   block.Prefix,
				Text:     Marker(block, origin),
				Location: block.Location,
			})
			continue
		}

		next[block.Name] = module
		out = append(out, block)
	}

	return out, next, suppressed
}

// Marker is the comment left in place of a suppressed definition.
func Marker(block parser.Block, origin string) string {
	return fmt.Sprintf("# ccat: duplicate %s %q omitted, first defined in %s", block.Kind, block.Name, origin)
}
