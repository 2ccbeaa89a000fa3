// # internal/parser/loader.go
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string // extension -> language
}

func NewGrammarLoader() (*GrammarLoader, error) {
	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}

	pythonLang := sitter.NewLanguage(tree_sitter_python.Language())
	if pythonLang == nil {
		return nil, fmt.Errorf("load grammar: %s", LanguagePython)
	}
	gl.languages[LanguagePython] = pythonLang
	gl.extensions[".py"] = LanguagePython

	return gl, nil
}

// Language returns the loaded grammar for lang, or nil.
func (gl *GrammarLoader) Language(lang string) *sitter.Language {
	return gl.languages[lang]
}

// DetectLanguage maps a file path to a loaded language by extension.
func (gl *GrammarLoader) DetectLanguage(path string) string {
	return gl.extensions[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether path has an extension with a loaded grammar.
func (gl *GrammarLoader) Supported(path string) bool {
	return gl.DetectLanguage(path) != ""
}
