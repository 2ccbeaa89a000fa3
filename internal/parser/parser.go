// # internal/parser/parser.go
package parser

import (
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrBinaryContent       = errors.New("content is not valid UTF-8 text")
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// Supported reports whether path has a registered language.
func (p *Parser) Supported(path string) bool {
	lang := p.loader.DetectLanguage(path)
	return lang != "" && p.extractors[lang] != nil
}

// ParseFile scans content and returns its module record. Syntax errors do not
// fail the scan; the affected blocks are flagged instead.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.loader.DetectLanguage(path)
	if lang == "" {
		return nil, ErrUnsupportedLanguage
	}
	if !utf8.Valid(content) {
		return nil, ErrBinaryContent
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, fmt.Errorf("grammar not loaded: %s", lang)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, fmt.Errorf("no extractor for: %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	return extractor.Extract(tree.RootNode(), content, path)
}

// NewPythonParser returns a parser with the Python extractor registered.
func NewPythonParser() (*Parser, error) {
	loader, err := NewGrammarLoader()
	if err != nil {
		return nil, err
	}
	p := NewParser(loader)
	p.RegisterExtractor(LanguagePython, &PythonExtractor{})
	return p, nil
}
