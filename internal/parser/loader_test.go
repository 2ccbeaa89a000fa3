package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammarLoader_DetectLanguage(t *testing.T) {
	gl, err := NewGrammarLoader()
	require.NoError(t, err)

	assert.Equal(t, LanguagePython, gl.DetectLanguage("pkg/mod.py"))
	assert.Equal(t, LanguagePython, gl.DetectLanguage("SETUP.PY"))
	assert.Empty(t, gl.DetectLanguage("main.go"))
	assert.Empty(t, gl.DetectLanguage("notebook.ipynb"))
	assert.Empty(t, gl.DetectLanguage("Makefile"))

	assert.True(t, gl.Supported("a.py"))
	assert.False(t, gl.Supported("a.pyc"))
	assert.NotNil(t, gl.Language(LanguagePython))
	assert.Nil(t, gl.Language("go"))
}
