// # internal/parser/python.go
package parser

import (
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:      filePath,
		Language:  LanguagePython,
		IsPackage: filepath.Base(filePath) == "__init__.py",
		HasErrors: root.HasError(),
		ParsedAt:  time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file, blockAt: make(map[uint]int)}
	e.collectBlocks(ctx, root)

	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
	})
	engine.Walk(ctx, root)

	return file, nil
}

// collectBlocks splits the module body into top-level blocks and records the
// module-scope class and function definitions.
func (e *PythonExtractor) collectBlocks(ctx *ExtractionContext, root *sitter.Node) {
	file := ctx.File
	offset := uint(0)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil || node.StartByte() < offset {
			continue
		}

		block := Block{
			Kind:     BlockStatement,
			NodeKind: node.Kind(),
			Prefix:   string(ctx.Source[offset:node.StartByte()]),
			Text:     ctx.Text(node),
			HasError: node.HasError() || node.IsError(),
			Location: ctx.Location(node),
		}

		switch node.Kind() {
		case "import_statement", "import_from_statement", "future_import_statement":
			block.Kind = BlockImport
		case "comment":
			block.Kind = BlockComment
		case "function_definition", "class_definition", "decorated_definition":
			e.describeDefinition(ctx, node, &block)
		}

		idx := len(file.Blocks)
		ctx.blockAt[node.StartByte()] = idx
		file.Blocks = append(file.Blocks, block)

		if block.IsDefinition() {
			kind := KindFunction
			if block.Kind == BlockClass {
				kind = KindClass
			}
			file.Definitions = append(file.Definitions, Definition{
				Name:     block.Name,
				Kind:     kind,
				Block:    idx,
				Exported: !strings.HasPrefix(block.Name, "_"),
				Location: block.Location,
			})
		}

		offset = node.EndByte()
	}

	file.Trailer = string(ctx.Source[offset:])
}

// describeDefinition fills kind, name and shape for a (possibly decorated)
// class or function node.
func (e *PythonExtractor) describeDefinition(ctx *ExtractionContext, node *sitter.Node, block *Block) {
	def := definitionNode(node)
	if def == nil {
		return
	}

	switch def.Kind() {
	case "class_definition":
		block.Kind = BlockClass
	case "function_definition":
		block.Kind = BlockFunction
	default:
		return
	}

	block.Name = ctx.Text(def.ChildByFieldName("name"))
	if block.Name == "" {
		block.Name = ctx.ChildText(def, "identifier")
	}
	block.Shape = e.shapeOf(ctx, node, def)
}

func definitionNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() != "decorated_definition" {
		return node
	}
	if def := node.ChildByFieldName("definition"); def != nil {
		return def
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "function_definition" || child.Kind() == "class_definition" {
			return child
		}
	}
	return nil
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	blockIdx := ctx.BlockIndex(node)
	enclosing := ctx.EnclosingBlock(node)
	stmt := ctx.Text(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		if child.Kind() == "dotted_name" || child.Kind() == "identifier" {
			module := ctx.Text(child)
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				TopLevel:  blockIdx >= 0,
				Block:     blockIdx,
				Enclosing: enclosing,
				Statement: stmt,
				Offset:    int(node.StartByte()),
				Location:  ctx.Location(child),
			})
		} else if child.Kind() == "aliased_import" {
			module := ctx.Text(child.ChildByFieldName("name"))
			alias := ctx.Text(child.ChildByFieldName("alias"))
			if module == "" {
				continue
			}
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				Alias:     alias,
				TopLevel:  blockIdx >= 0,
				Block:     blockIdx,
				Enclosing: enclosing,
				Statement: stmt,
				Offset:    int(node.StartByte()),
				Location:  ctx.Location(child),
			})
		}
	}
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) {
	imp := Import{
		Block:     ctx.BlockIndex(node),
		Enclosing: ctx.EnclosingBlock(node),
		Statement: ctx.Text(node),
		Offset:    int(node.StartByte()),
		Location:  ctx.Location(node),
	}
	imp.TopLevel = imp.Block >= 0

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		if moduleNode.Kind() == "relative_import" {
			imp.IsRelative = true
			imp.RawImport = strings.Join(strings.Fields(ctx.Text(moduleNode)), "")
			imp.Level = len(imp.RawImport) - len(strings.TrimLeft(imp.RawImport, "."))
			imp.Module = ctx.ChildText(moduleNode, "dotted_name")
		} else {
			imp.Module = ctx.Text(moduleNode)
			imp.RawImport = imp.Module
		}
	}

	afterImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Kind() {
		case "import":
			afterImport = true
		case "wildcard_import":
			imp.Items = append(imp.Items, "*")
		case "dotted_name", "identifier":
			if afterImport {
				imp.Items = append(imp.Items, ctx.Text(child))
			}
		case "aliased_import":
			if afterImport {
				imp.Items = append(imp.Items, ctx.Text(child.ChildByFieldName("name")))
			}
		}
	}

	if imp.RawImport == "" && !imp.IsRelative {
		return
	}
	ctx.File.Imports = append(ctx.File.Imports, imp)
}
