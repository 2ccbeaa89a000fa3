package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node for a language-specific extractor.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node)

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *File

	// blockAt maps the start byte of each top-level node to its block index.
	blockAt map[uint]int
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	if handler, ok := e.handlers[node.Kind()]; ok {
		handler(ctx, node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.Walk(ctx, node.Child(i))
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}

// BlockIndex returns the top-level block a node belongs to when the node is
// itself a top-level statement, or -1.
func (c *ExtractionContext) BlockIndex(node *sitter.Node) int {
	if node == nil {
		return -1
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "module" {
		return -1
	}
	if idx, ok := c.blockAt[node.StartByte()]; ok {
		return idx
	}
	return -1
}

// EnclosingBlock returns the top-level block that contains node, or -1.
func (c *ExtractionContext) EnclosingBlock(node *sitter.Node) int {
	for node != nil {
		parent := node.Parent()
		if parent == nil {
			return -1
		}
		if parent.Kind() == "module" {
			if idx, ok := c.blockAt[node.StartByte()]; ok {
				return idx
			}
			return -1
		}
		node = parent
	}
	return -1
}

// LineIndent returns the whitespace between the start of the line holding
// pos and pos. It returns "" when non-blank text precedes pos on that line.
func (c *ExtractionContext) LineIndent(pos uint) string {
	start := pos
	for start > 0 && c.Source[start-1] != '\n' {
		start--
	}
	for i := start; i < pos; i++ {
		if c.Source[i] != ' ' && c.Source[i] != '\t' {
			return ""
		}
	}
	return string(c.Source[start:pos])
}
