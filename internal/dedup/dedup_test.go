package dedup

import (
	"strings"
	"testing"

	"ccat/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type module struct {
	name   string
	source string
}

func scan(t *testing.T, p *parser.Parser, m module) []parser.Block {
	t.Helper()
	f, err := p.ParseFile(m.name+".py", []byte(m.source))
	require.NoError(t, err)
	return f.Blocks
}

// run applies the filter to modules in order starting from an empty set and
// returns the merged text of each module.
func run(t *testing.T, p *parser.Parser, modules []module) ([]string, []Suppressed) {
	t.Helper()
	seen := Seen{}
	var all []Suppressed
	texts := make([]string, 0, len(modules))
	for _, m := range modules {
		blocks, next, suppressed := Apply(seen, m.name, scan(t, p, m))
		seen = next
		all = append(all, suppressed...)
		texts = append(texts, parser.JoinBlocks(blocks, ""))
	}
	return texts, all
}

func TestApply_FirstWriterWins(t *testing.T) {
	p, err := parser.NewPythonParser()
	require.NoError(t, err)

	modules := []module{
		{name: "base", source: "def helper():\n    return 'base'\n\nclass Shared:\n    pass\n"},
		{name: "mid", source: "import base\n\ndef middle():\n    return helper()\n"},
		{name: "top", source: "import mid\n\ndef helper():\n    return 'top'\n\ndef main():\n    return middle()\n"},
	}

	texts, suppressed := run(t, p, modules)

	assert.Contains(t, texts[0], "return 'base'")
	assert.NotContains(t, texts[2], "return 'top'")
	assert.Contains(t, texts[2], `# ccat: duplicate function "helper" omitted, first defined in base`)
	assert.Contains(t, texts[2], "def main():")

	require.Len(t, suppressed, 1)
	assert.Equal(t, Suppressed{
		Name:     "helper",
		Module:   "top",
		Original: "base",
		Location: suppressed[0].Location,
	}, suppressed[0])
	assert.Equal(t, 3, suppressed[0].Location.Line)
}

func TestApply_DuplicateWithinOneModule(t *testing.T) {
	p, err := parser.NewPythonParser()
	require.NoError(t, err)

	blocks := scan(t, p, module{name: "m", source: "def f():\n    return 1\n\ndef f():\n    return 2\n"})
	out, seen, suppressed := Apply(Seen{}, "m", blocks)

	text := parser.JoinBlocks(out, "")
	assert.Contains(t, text, "return 1")
	assert.NotContains(t, text, "return 2")
	assert.Equal(t, Seen{"f": "m"}, seen)
	require.Len(t, suppressed, 1)
	assert.Equal(t, "m", suppressed[0].Original)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	p, err := parser.NewPythonParser()
	require.NoError(t, err)

	in := Seen{"f": "other"}
	blocks := scan(t, p, module{name: "m", source: "def f():\n    pass\n\ndef g():\n    pass\n"})
	_, next, _ := Apply(in, "m", blocks)

	assert.Equal(t, Seen{"f": "other"}, in)
	assert.Equal(t, Seen{"f": "other", "g": "m"}, next)
}

func TestApply_Idempotent(t *testing.T) {
	p, err := parser.NewPythonParser()
	require.NoError(t, err)

	modules := []module{
		{name: "a", source: "class A:\n    pass\n\ndef shared():\n    return 'a'\n"},
		{name: "b", source: "def shared():\n    return 'b'\n\nclass A:\n    x = 1\n\ndef only_b():\n    pass\n"},
		{name: "c", source: "from a import A\n\n@decorate\ndef shared():\n    return 'c'\n"},
	}

	once, _ := run(t, p, modules)

	again := make([]module, len(modules))
	for i, m := range modules {
		again[i] = module{name: m.name, source: once[i]}
	}
	twice, suppressed := run(t, p, again)

	assert.Equal(t, once, twice)
	assert.Empty(t, suppressed)

	merged := strings.Join(once, "\n")
	assert.Equal(t, 1, strings.Count(merged, "def shared("))
	assert.Equal(t, 1, strings.Count(merged, "class A:"))
	assert.NotContains(t, merged, "@decorate")
}
