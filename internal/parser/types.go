// # internal/parser/types.go
package parser

import (
	"strings"
	"time"
)

// File is the scan result for one source module. It is not modified after
// ParseFile returns, except for Module which the resolver assigns once.
type File struct {
	Path        string
	Language    string
	Module      string // Dotted module name relative to the scan root
	IsPackage   bool   // __init__.py
	Imports     []Import
	Definitions []Definition
	Blocks      []Block
	Trailer     string // Source text after the last block
	HasErrors   bool   // The syntax tree contains error nodes
	ParsedAt    time.Time
}

type Import struct {
	Module     string   // Module reference without leading dots
	RawImport  string   // Reference as written, dots included
	Alias      string   // Optional alias
	Items      []string // For "from X import Y, Z"
	IsRelative bool
	Level      int  // Number of leading dots
	TopLevel   bool // Statement sits directly in the module body
	Block      int  // Index into File.Blocks, -1 when nested
	Enclosing  int  // Top-level block holding the statement, -1 if unknown
	Statement  string
	Offset     int // Byte offset of the statement in the source
	Location   Location
}

type Definition struct {
	Name     string
	Kind     DefinitionKind
	Block    int
	Exported bool
	Location Location
}

type DefinitionKind int

const (
	KindFunction DefinitionKind = iota
	KindClass
)

func (k DefinitionKind) String() string {
	switch k {
	case KindClass:
		return "class"
	default:
		return "function"
	}
}

type BlockKind int

const (
	BlockStatement BlockKind = iota
	BlockImport
	BlockClass
	BlockFunction
	BlockComment
)

func (k BlockKind) String() string {
	switch k {
	case BlockImport:
		return "import"
	case BlockClass:
		return "class"
	case BlockFunction:
		return "function"
	case BlockComment:
		return "comment"
	default:
		return "statement"
	}
}

// Block is one top-level statement of a module (or one method of a class).
// Prefix holds the whitespace and stray text between the previous block and
// this one so that joining Prefix+Text of every block plus File.Trailer yields
// the original source.
type Block struct {
	Kind     BlockKind
	NodeKind string // tree-sitter node kind of the statement
	Name     string // Definition name for class/function blocks
	Prefix   string
	Text     string
	Indent   string // Leading whitespace of the first line (members only)
	Shape    *Shape // nil for non-definition blocks or unparseable definitions
	HasError bool
	Location Location
}

// IsDefinition reports whether the block declares a named class or function.
func (b Block) IsDefinition() bool {
	return (b.Kind == BlockClass || b.Kind == BlockFunction) && b.Name != ""
}

// Shape is the structural breakdown of a definition block.
type Shape struct {
	Header     string   // Decorators and signature up to the body, ends at ':'
	Decorators []string // Decorator lines, '@' included
	Docstring  string   // Docstring literal as written, empty when absent
	Body       []Statement
	BodyIndent string
	Fields     []string // Annotated class attributes
	Members    []Block  // Methods of a class
}

type Statement struct {
	Kind string
	Text string
}

// HasDecorator reports whether the definition carries the named decorator.
func (s *Shape) HasDecorator(name string) bool {
	if s == nil {
		return false
	}
	for _, d := range s.Decorators {
		d = strings.TrimSpace(strings.TrimPrefix(d, "@"))
		if d == name || strings.HasPrefix(d, name+"(") {
			return true
		}
	}
	return false
}

type Location struct {
	File   string
	Line   int
	Column int
}

// Source reassembles the module text from its blocks.
func (f *File) Source() string {
	return JoinBlocks(f.Blocks, f.Trailer)
}

// JoinBlocks concatenates Prefix+Text of every block followed by trailer.
func JoinBlocks(blocks []Block, trailer string) string {
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(block.Prefix)
		b.WriteString(block.Text)
	}
	b.WriteString(trailer)
	return b.String()
}

// ClassCount returns the number of top-level class definitions.
func (f *File) ClassCount() int {
	n := 0
	for _, d := range f.Definitions {
		if d.Kind == KindClass {
			n++
		}
	}
	return n
}

// FunctionCount returns the number of top-level function definitions.
func (f *File) FunctionCount() int {
	return len(f.Definitions) - f.ClassCount()
}
