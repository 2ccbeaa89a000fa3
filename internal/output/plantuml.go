package output

import (
	"fmt"
	"strings"

	"ccat/internal/app"
)

type PlantUMLGenerator struct {
	view *view
}

func NewPlantUMLGenerator(res *app.Result, opts Options) *PlantUMLGenerator {
	return &PlantUMLGenerator{view: newView(res, opts)}
}

func (p *PlantUMLGenerator) Generate() (string, error) {
	v := p.view
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("skinparam componentStyle rectangle\n")
	b.WriteString("skinparam linetype ortho\n")
	b.WriteString("skinparam nodesep 80\n")
	b.WriteString("skinparam ranksep 100\n")
	b.WriteString("left to right direction\n\n")

	aliases := makeIDs(v.nodeNames())

	for _, mod := range v.modules {
		color := ""
		if v.inCycle[mod] {
			color = " #FFECEC"
		}
		b.WriteString(fmt.Sprintf("component \"%s\" as %s%s\n", escapeLabel(v.moduleLabel(mod, "\\n")), aliases[mod], color))
	}
	if v.aggregateExt {
		b.WriteString(fmt.Sprintf("component \"External/Stdlib\\n(%d modules)\" as %s #DDDDDD\n", len(v.externals), aliases[externalAggregateNodeID]))
	} else {
		for _, ref := range v.externals {
			b.WriteString(fmt.Sprintf("component \"%s\" as %s #DDDDDD\n", escapeLabel(ref), aliases[ref]))
		}
	}

	b.WriteString("\n")
	hasCycle := false
	for _, e := range v.edges {
		if v.isCycleEdge(e) {
			hasCycle = true
			b.WriteString(fmt.Sprintf("%s -[#red,thickness=2]-> %s : CYCLE\n", aliases[e.From], aliases[e.To]))
			continue
		}
		b.WriteString(fmt.Sprintf("%s --> %s\n", aliases[e.From], aliases[e.To]))
	}
	for _, mod := range v.modules {
		if v.aggregateExt {
			if n := v.externalCount[mod]; n > 0 {
				b.WriteString(fmt.Sprintf("%s -[#777777,dashed]-> %s : ext:%d\n", aliases[mod], aliases[externalAggregateNodeID], n))
			}
			continue
		}
		for _, ref := range v.externalsOf[mod] {
			b.WriteString(fmt.Sprintf("%s -[#777777,dashed]-> %s\n", aliases[mod], aliases[ref]))
		}
	}

	b.WriteString("\nlegend right\n")
	b.WriteString("|= Item |= Meaning |\n")
	b.WriteString("|Node line 1|Module name|\n")
	b.WriteString("|Node line 2|Function and class count|\n")
	b.WriteString("|d|Dependency depth|\n")
	b.WriteString("|in|Fan-in (number of internal modules importing this module)|\n")
	b.WriteString("|out|Fan-out (number of internal modules this module imports)|\n")
	if len(v.externals) > 0 {
		b.WriteString("|<color:#DDDDDD>Component</color>|External module|\n")
	}
	if hasCycle {
		b.WriteString("|<color:#cc0000>Red edge</color>|Cycle edge|\n")
	}
	if v.aggregateExt {
		b.WriteString("|ext:N|Count of external dependencies from that module|\n")
	}
	b.WriteString("endlegend\n")

	b.WriteString("\n@enduml\n")
	return b.String(), nil
}
