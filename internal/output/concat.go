package output

import (
	"fmt"
	"strings"

	"ccat/internal/app"
)

const timeLayout = "2006-01-02 15:04:05"

// Banner is the comment header shared by the merged file and the notebook.
func Banner(res *app.Result, opts Options) string {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	lines := []string{
		"# Generated by ccat",
		`#  /\___/\   ccat`,
		"# ( o   o )  smart code concatenator/summarizer",
		fmt.Sprintf("# (  =^=  )  ccat %s", version),
		fmt.Sprintf("#  (______)  Generated: %s", res.GeneratedAt.Format(timeLayout)),
		fmt.Sprintf("# Summary Level: %s", res.Level),
		fmt.Sprintf("# Run: %s", res.RunID),
	}
	return strings.Join(lines, "\n")
}

// Concat renders the merged Python file: banner, dependency overview,
// hoisted external imports, then every module in concatenation order.
func Concat(res *app.Result, opts Options) string {
	var b strings.Builder

	b.WriteString(Banner(res, opts))
	b.WriteString("\n\"\"\"\n")
	b.WriteString(strings.ReplaceAll(DependencySection(res, opts), `"""`, `'''`))
	b.WriteString("\"\"\"\n\n")

	b.WriteString("# External imports\n")
	for _, imp := range res.Imports {
		b.WriteString(imp)
		b.WriteString("\n")
	}

	b.WriteString("\n# Combined module code\n")
	for _, s := range res.Sections {
		b.WriteString(fmt.Sprintf("\n# From %s\n", s.Path))
		if s.Text != "" {
			b.WriteString(s.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
