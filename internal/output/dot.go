package output

import (
	"fmt"
	"strings"

	"ccat/internal/app"
)

type DOTGenerator struct {
	view *view
}

func NewDOTGenerator(res *app.Result, opts Options) *DOTGenerator {
	return &DOTGenerator{view: newView(res, opts)}
}

func (d *DOTGenerator) Generate() (string, error) {
	v := d.view
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  overlap=false;\n\n")

	buf.WriteString("  subgraph cluster_internal {\n")
	buf.WriteString("    label=\"Internal Modules\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")
	for _, m := range v.modules {
		label := escapeLabel(v.moduleLabel(m, "\\n"))
		if v.inCycle[m] {
			buf.WriteString(fmt.Sprintf("    %q [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", m, label))
		} else {
			buf.WriteString(fmt.Sprintf("    %q [label=\"%s\", color=\"darkslategrey\"];\n", m, label))
		}
	}
	buf.WriteString("  }\n\n")

	if len(v.externals) > 0 {
		buf.WriteString("  // External and Standard Library\n")
		buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
		if v.aggregateExt {
			buf.WriteString(fmt.Sprintf("  %q [label=\"External/Stdlib\\n(%d modules)\"];\n", externalAggregateNodeID, len(v.externals)))
		} else {
			for _, ref := range v.externals {
				buf.WriteString(fmt.Sprintf("  %q [label=\"%s\"];\n", ref, escapeLabel(ref)))
			}
		}
		buf.WriteString("\n")
	}

	for _, e := range v.edges {
		if v.isCycleEdge(e) {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", e.From, e.To))
			continue
		}
		buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"forestgreen\", penwidth=1.8];\n", e.From, e.To))
	}
	for _, m := range v.modules {
		if v.aggregateExt {
			if n := v.externalCount[m]; n > 0 {
				buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"grey\", style=dashed, label=\"ext:%d\"];\n", m, externalAggregateNodeID, n))
			}
			continue
		}
		for _, ref := range v.externalsOf[m] {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"grey\", style=dashed];\n", m, ref))
		}
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_internal [label=\"Internal Module\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_external [label=\"External/Stdlib\", fillcolor=\"gainsboro\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Import\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("  }\n")

	buf.WriteString("}\n")
	return buf.String(), nil
}
