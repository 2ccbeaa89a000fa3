package output

import (
	"fmt"
	"strings"

	"ccat/internal/app"
)

type MermaidGenerator struct {
	view *view
}

func NewMermaidGenerator(res *app.Result, opts Options) *MermaidGenerator {
	return &MermaidGenerator{view: newView(res, opts)}
}

func (m *MermaidGenerator) Generate() (string, error) {
	v := m.view
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	ids := makeIDs(v.nodeNames())

	for _, mod := range v.modules {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[mod], escapeLabel(v.moduleLabel(mod, "\\n"))))
	}
	if v.aggregateExt {
		b.WriteString(fmt.Sprintf("  %s[\"External/Stdlib\\n(%d modules)\"]\n", ids[externalAggregateNodeID], len(v.externals)))
	} else {
		for _, ref := range v.externals {
			b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[ref], escapeLabel(ref)))
		}
	}

	b.WriteString("\n")
	if len(v.modules) > 0 {
		b.WriteString("  classDef internalNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px;\n")
		b.WriteString("  class " + strings.Join(toIDs(v.modules, ids), ",") + " internalNode;\n")
	}
	if len(v.externals) > 0 {
		b.WriteString("  classDef externalNode fill:#efefef,stroke:#808080,stroke-dasharray:4 3;\n")
		if v.aggregateExt {
			b.WriteString(fmt.Sprintf("  class %s externalNode;\n", ids[externalAggregateNodeID]))
		} else {
			b.WriteString("  class " + strings.Join(toIDs(v.externals, ids), ",") + " externalNode;\n")
		}
	}
	var cycleNames []string
	for _, mod := range v.modules {
		if v.inCycle[mod] {
			cycleNames = append(cycleNames, mod)
		}
	}
	if len(cycleNames) > 0 {
		b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px;\n")
		b.WriteString("  class " + strings.Join(toIDs(cycleNames, ids), ",") + " cycleNode;\n")
	}

	b.WriteString("\n")
	var (
		linkIndex           int
		cycleLinkIndexes    []int
		externalLinkIndexes []int
	)
	for _, e := range v.edges {
		label := ""
		if v.isCycleEdge(e) {
			label = "|CYCLE|"
			cycleLinkIndexes = append(cycleLinkIndexes, linkIndex)
		}
		b.WriteString(fmt.Sprintf("  %s -->%s %s\n", ids[e.From], label, ids[e.To]))
		linkIndex++
	}
	for _, mod := range v.modules {
		if v.aggregateExt {
			if n := v.externalCount[mod]; n > 0 {
				b.WriteString(fmt.Sprintf("  %s -->|ext:%d| %s\n", ids[mod], n, ids[externalAggregateNodeID]))
				externalLinkIndexes = append(externalLinkIndexes, linkIndex)
				linkIndex++
			}
			continue
		}
		for _, ref := range v.externalsOf[mod] {
			b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[mod], ids[ref]))
			externalLinkIndexes = append(externalLinkIndexes, linkIndex)
			linkIndex++
		}
	}

	if len(cycleLinkIndexes) > 0 || len(externalLinkIndexes) > 0 {
		b.WriteString("\n")
	}
	if len(cycleLinkIndexes) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinkIndexes)))
	}
	if len(externalLinkIndexes) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#777777,stroke-dasharray:4 3;\n", joinInts(externalLinkIndexes)))
	}

	b.WriteString("\n")
	b.WriteString("  subgraph legend_info[\"Legend\"]\n")
	b.WriteString("    legend_metrics[\"Node line 1: module\\nline 2: funcs/classes\\n(d=depth in=fan-in out=fan-out)\"]\n")
	b.WriteString("    legend_edges[\"Edge labels: CYCLE=import cycle, ext:N=external dependency count\"]\n")
	b.WriteString("  end\n")
	b.WriteString("  classDef legendNode fill:#fff8dc,stroke:#b8a24c,stroke-width:1px;\n")
	b.WriteString("  class legend_metrics,legend_edges legendNode;\n")

	return b.String(), nil
}
