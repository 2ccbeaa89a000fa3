package output

import (
	"fmt"
	"strconv"

	"ccat/internal/app"
	"ccat/internal/config"
	cerrors "ccat/internal/core/errors"
	"ccat/internal/shared/util"
)

// Options control rendering. They never change the concatenation order.
type Options struct {
	Version            string
	NodeLabels         string // config.LabelsAlpha or config.LabelsNumeric
	RemoveDisconnected bool
}

func OptionsFromConfig(cfg *config.Config, version string) Options {
	return Options{
		Version:            version,
		NodeLabels:         cfg.Graph.NodeLabels,
		RemoveDisconnected: cfg.Graph.RemoveDisconnected,
	}
}

// ShortLabel returns the legend label of the index-th node: A..Z, AA, AB...
// for alpha labels and 1..N for numeric ones.
func ShortLabel(index int, style string) string {
	if style == config.LabelsNumeric {
		return strconv.Itoa(index + 1)
	}
	label := ""
	for index >= 0 {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
	}
	return label
}

// Write stores rendered content at path, creating parent directories.
func Write(path, content string) error {
	if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
		return cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeIO, "write output"), cerrors.CtxPath, path)
	}
	return nil
}

// Render produces one named artifact: concat, notebook, report, dot,
// mermaid, plantuml or tsv.
func Render(kind string, res *app.Result, opts Options) (string, error) {
	switch kind {
	case "concat":
		return Concat(res, opts), nil
	case "notebook":
		return Notebook(res, opts)
	case "report":
		return Report(res, opts), nil
	case "dot":
		return NewDOTGenerator(res, opts).Generate()
	case "mermaid":
		return NewMermaidGenerator(res, opts).Generate()
	case "plantuml":
		return NewPlantUMLGenerator(res, opts).Generate()
	case "tsv":
		return NewTSVGenerator(res).Generate()
	}
	return "", cerrors.New(cerrors.CodeNotSupported, fmt.Sprintf("unknown output format %q", kind))
}
