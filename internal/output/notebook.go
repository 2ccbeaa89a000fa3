package output

import (
	"encoding/json"
	"strings"
	"time"

	"ccat/internal/app"
)

type notebook struct {
	Cells         []any            `json:"cells"`
	Metadata      notebookMetadata `json:"metadata"`
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
}

type notebookMetadata struct {
	KernelSpec   kernelSpec   `json:"kernelspec"`
	LanguageInfo languageInfo `json:"language_info"`
	Ccat         runMetadata  `json:"ccat"`
}

type kernelSpec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

type languageInfo struct {
	Name string `json:"name"`
}

type runMetadata struct {
	RunID        string `json:"run_id"`
	SummaryLevel string `json:"summary_level"`
	Generated    string `json:"generated"`
}

type markdownCell struct {
	CellType string         `json:"cell_type"`
	Metadata map[string]any `json:"metadata"`
	Source   []string       `json:"source"`
}

type codeCell struct {
	CellType       string         `json:"cell_type"`
	Metadata       map[string]any `json:"metadata"`
	Source         []string       `json:"source"`
	ExecutionCount *int           `json:"execution_count"`
	Outputs        []any          `json:"outputs"`
}

// Notebook renders an nbformat 4.4 notebook: a title cell, one code cell
// holding the merged file and a cell repeating the banner.
func Notebook(res *app.Result, opts Options) (string, error) {
	nb := notebook{
		Cells: []any{
			markdownCell{
				CellType: "markdown",
				Metadata: map[string]any{},
				Source:   []string{"## Notebook generated by ccat\n"},
			},
			codeCell{
				CellType: "code",
				Metadata: map[string]any{},
				Source:   splitLines(Concat(res, opts)),
				Outputs:  []any{},
			},
			markdownCell{
				CellType: "markdown",
				Metadata: map[string]any{},
				Source:   append(append([]string{"```\n"}, splitLines(Banner(res, opts)+"\n")...), "```\n"),
			},
		},
		Metadata: notebookMetadata{
			KernelSpec:   kernelSpec{DisplayName: "Python 3", Language: "python", Name: "python3"},
			LanguageInfo: languageInfo{Name: "python"},
			Ccat: runMetadata{
				RunID:        res.RunID,
				SummaryLevel: res.Level.String(),
				Generated:    res.GeneratedAt.Format(time.RFC3339),
			},
		},
		NBFormat:      4,
		NBFormatMinor: 4,
	}

	data, err := json.MarshalIndent(nb, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// splitLines splits text into lines that keep their trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
