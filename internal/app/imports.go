package app

import (
	"sort"
	"strings"

	"ccat/internal/graph"
	"ccat/internal/parser"
)

// InternalImportMarker prefixes every line of a neutralized internal import.
const InternalImportMarker = "# ccat: internal import: "

// importSet collects hoisted external import statements. Statements that
// differ only in whitespace are kept once.
type importSet struct {
	seen  map[string]bool
	items []string
}

func newImportSet() *importSet {
	return &importSet{seen: make(map[string]bool)}
}

func (s *importSet) add(stmt string) {
	stmt = strings.TrimSpace(stmt)
	key := strings.Join(strings.Fields(stmt), " ")
	if key == "" || s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, stmt)
}

// sorted returns future imports first, then the rest in lexicographic order.
func (s *importSet) sorted() []string {
	out := append([]string(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := isFutureImport(out[i]), isFutureImport(out[j])
		if fi != fj {
			return fi
		}
		return out[i] < out[j]
	})
	return out
}

func isFutureImport(stmt string) bool {
	return strings.HasPrefix(strings.Join(strings.Fields(stmt), " "), "from __future__ ")
}

// rewriteImports removes top-level import blocks from a module. External
// imports are moved into hoisted; imports of scanned modules are left in
// place as comments, since the merged file has no package structure. Imports
// of scanned modules nested in functions, classes or compound statements
// become pass statements. Blocks must be index-aligned with f.Blocks.
func rewriteImports(g *graph.Graph, f *parser.File, blocks []parser.Block, hoisted *importSet) []parser.Block {
	nested := nestedImports(f)
	out := make([]parser.Block, 0, len(blocks))
	for i, b := range blocks {
		if b.Kind != parser.BlockImport {
			if stmts := nested[i]; len(stmts) > 0 && b.Kind != parser.BlockComment {
				b.Text = neutralizeNested(g, f.Module, b.Text, stmts)
			}
			out = append(out, b)
			continue
		}

		if !g.IsInternalImportBlock(f.Module, i) {
			hoisted.add(b.Text)
			continue
		}

		// "import os, pkg.a" still needs os.
		if b.NodeKind == "import_statement" {
			external := make(map[string]bool)
			for _, ref := range g.ExternalsOf(f.Module) {
				external[ref] = true
			}
			for _, imp := range f.Imports {
				if imp.Block == i && !imp.IsRelative && external[imp.RawImport] {
					hoisted.add(plainImport(imp))
				}
			}
		}

		b.Kind = parser.BlockComment
		b.Text = neutralize(b.Text)
		out = append(out, b)
	}
	return out
}

func plainImport(imp parser.Import) string {
	return "import " + importName(imp)
}

func importName(imp parser.Import) string {
	if imp.Alias != "" {
		return imp.RawImport + " as " + imp.Alias
	}
	return imp.RawImport
}

// nestedStatement is one import statement below the module body. "import a, b"
// yields several Import records that share the statement.
type nestedStatement struct {
	offset  int
	text    string
	from    bool
	imports []parser.Import
}

// nestedImports groups the nested import statements of f by enclosing block,
// in source order.
func nestedImports(f *parser.File) map[int][]*nestedStatement {
	byOffset := make(map[int]*nestedStatement)
	res := make(map[int][]*nestedStatement)
	for _, imp := range f.Imports {
		if imp.TopLevel || imp.Enclosing < 0 || imp.Statement == "" {
			continue
		}
		stmt, ok := byOffset[imp.Offset]
		if !ok {
			stmt = &nestedStatement{
				offset: imp.Offset,
				text:   imp.Statement,
				from:   strings.HasPrefix(imp.Statement, "from"),
			}
			byOffset[imp.Offset] = stmt
			res[imp.Enclosing] = append(res[imp.Enclosing], stmt)
		}
		stmt.imports = append(stmt.imports, imp)
	}
	for _, stmts := range res {
		sort.Slice(stmts, func(i, j int) bool { return stmts[i].offset < stmts[j].offset })
	}
	return res
}

// neutralizeNested replaces every internal import statement found in text. A
// statement the summarizer already removed is skipped.
func neutralizeNested(g *graph.Graph, module, text string, stmts []*nestedStatement) string {
	external := make(map[string]bool)
	for _, ref := range g.ExternalsOf(module) {
		external[ref] = true
	}

	var sb strings.Builder
	cursor := 0
	for _, stmt := range stmts {
		if !g.IsInternalNestedImport(module, stmt.offset) {
			continue
		}
		idx := strings.Index(text[cursor:], stmt.text)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(stmt.text)

		// "import os, pkg.a" keeps os in place.
		head := "pass"
		if !stmt.from {
			var kept []string
			for _, imp := range stmt.imports {
				if !imp.IsRelative && external[imp.RawImport] {
					kept = append(kept, importName(imp))
				}
			}
			if len(kept) > 0 {
				head = "import " + strings.Join(kept, ", ")
			}
		}

		sb.WriteString(text[cursor:start])
		sb.WriteString(replaceStatement(text, start, end, head, stmt.text))
		cursor = end
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

// replaceStatement renders head followed by the original statement as marker
// comments. When code follows the statement on the same line ("...; f()") only
// head is written.
func replaceStatement(text string, start, end int, head, stmt string) string {
	rest := text[end:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	if r := strings.TrimSpace(rest); r != "" && !strings.HasPrefix(r, "#") {
		return head
	}

	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	indent := text[lineStart:start]
	if strings.TrimSpace(indent) != "" {
		indent = indent[:len(indent)-len(strings.TrimLeft(indent, " \t"))]
	}

	lines := strings.Split(stmt, "\n")
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString("  ")
	sb.WriteString(InternalImportMarker)
	sb.WriteString(strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		sb.WriteString("\n")
		sb.WriteString(indent)
		sb.WriteString(InternalImportMarker)
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String()
}

func neutralize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = InternalImportMarker + strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// trimSection drops leading blank lines and trailing whitespace left behind
// by removed imports.
func trimSection(text string) string {
	text = strings.TrimRight(text, " \t\r\n")
	for {
		line, rest, ok := strings.Cut(text, "\n")
		if !ok || strings.TrimSpace(line) != "" {
			return text
		}
		text = rest
	}
}
