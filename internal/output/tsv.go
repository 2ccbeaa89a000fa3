package output

import (
	"fmt"
	"strings"

	"ccat/internal/app"
)

// TSVGenerator lists every import edge and every external reference, one
// per line, in concatenation order of the importing module.
type TSVGenerator struct {
	res *app.Result
}

func NewTSVGenerator(res *app.Result) *TSVGenerator {
	return &TSVGenerator{res: res}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Kind\tFrom\tTo\tImport\tFile\tLine\tColumn\tBroken\n")

	broken := make(map[string]bool, len(t.res.Ordering.BrokenEdges))
	for _, e := range t.res.Ordering.BrokenEdges {
		broken[e.From+"->"+e.To] = true
	}

	imports := t.res.Graph.GetImports()
	for _, from := range t.res.Ordering.Modules {
		for _, to := range t.res.Graph.DependenciesOf(from) {
			edge := imports[from][to]
			buf.WriteString(fmt.Sprintf("internal\t%s\t%s\t%s\t%s\t%d\t%d\t%t\n",
				from, to, edge.RawImport, t.res.PathOf(from),
				edge.Location.Line, edge.Location.Column, broken[from+"->"+to]))
		}
	}
	for _, from := range t.res.Ordering.Modules {
		for _, ref := range t.res.Graph.ExternalsOf(from) {
			buf.WriteString(fmt.Sprintf("external\t%s\t\t%s\t%s\t\t\tfalse\n", from, ref, t.res.PathOf(from)))
		}
	}

	return buf.String(), nil
}
