package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// shapeOf breaks a definition into header, docstring and body statements.
// outer is the decorated node when decorators are present, def otherwise.
// It returns nil when the definition has no parseable body.
func (e *PythonExtractor) shapeOf(ctx *ExtractionContext, outer, def *sitter.Node) *Shape {
	body := def.ChildByFieldName("body")
	if body == nil || body.StartByte() < outer.StartByte() {
		return nil
	}

	shape := &Shape{
		Header: strings.TrimRight(string(ctx.Source[outer.StartByte():body.StartByte()]), " \t\r\n"),
	}

	if outer.Kind() == "decorated_definition" {
		for i := uint(0); i < outer.NamedChildCount(); i++ {
			child := outer.NamedChild(i)
			if child.Kind() == "decorator" {
				shape.Decorators = append(shape.Decorators, ctx.Text(child))
			}
		}
	}

	first := true
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if shape.BodyIndent == "" {
			shape.BodyIndent = ctx.LineIndent(stmt.StartByte())
		}
		if first {
			first = false
			if doc := docstringOf(stmt); doc != nil {
				shape.Docstring = ctx.Text(doc)
				continue
			}
		}

		shape.Body = append(shape.Body, Statement{Kind: stmt.Kind(), Text: ctx.Text(stmt)})

		if def.Kind() != "class_definition" {
			continue
		}
		switch stmt.Kind() {
		case "function_definition", "decorated_definition":
			if member := e.memberOf(ctx, stmt); member != nil {
				shape.Members = append(shape.Members, *member)
			}
		case "expression_statement":
			if isAnnotatedAssignment(stmt) {
				shape.Fields = append(shape.Fields, ctx.Text(stmt))
			}
		}
	}

	if shape.BodyIndent == "" {
		shape.BodyIndent = ctx.LineIndent(outer.StartByte()) + "    "
	}
	return shape
}

func (e *PythonExtractor) memberOf(ctx *ExtractionContext, node *sitter.Node) *Block {
	def := definitionNode(node)
	if def == nil || def.Kind() != "function_definition" {
		return nil
	}
	return &Block{
		Kind:     BlockFunction,
		NodeKind: node.Kind(),
		Name:     ctx.Text(def.ChildByFieldName("name")),
		Text:     ctx.Text(node),
		Indent:   ctx.LineIndent(node.StartByte()),
		Shape:    e.shapeOf(ctx, node, def),
		HasError: node.HasError(),
		Location: ctx.Location(node),
	}
}

// docstringOf returns the string node when stmt is a bare string literal.
func docstringOf(stmt *sitter.Node) *sitter.Node {
	if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	child := stmt.NamedChild(0)
	switch child.Kind() {
	case "string", "concatenated_string":
		return child
	}
	return nil
}

func isAnnotatedAssignment(stmt *sitter.Node) bool {
	if stmt.NamedChildCount() != 1 {
		return false
	}
	child := stmt.NamedChild(0)
	return child.Kind() == "assignment" && child.ChildByFieldName("type") != nil
}
