// # internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ccat/internal/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccat.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source_dir = "./pkg"

[exclude]
dirs = ["tools", "cats"]
files = ["*_test.py"]
patterns = ["legacy/"]

[summary]
level = "core"
disable = ["core.logging-setup"]

[[summary.rules]]
id = "strip-prints"
level = "core"
order = 50
pattern = '^(\s*)print\(.*\)$'
replacement = "${1}pass"
explanation = "print removed"

[graph]
remove_disconnected = true
node_labels = "numeric"

[output]
concat = "out.py"
report = "report.txt"
dot = "graph.dot"

[watch]
debounce = "1s"

[tracing]
otlp_endpoint = "localhost:4317"
insecure = true

[metrics]
addr = ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./pkg", cfg.SourceDir)
	assert.Equal(t, []string{"tools", "cats"}, cfg.Exclude.Dirs)
	assert.Equal(t, []string{"legacy/"}, cfg.Exclude.Patterns)
	assert.Equal(t, summary.LevelCore, cfg.SummaryLevel())
	assert.True(t, cfg.Graph.RemoveDisconnected)
	assert.Equal(t, LabelsNumeric, cfg.Graph.NodeLabels)
	assert.Equal(t, "out.py", cfg.Output.Concat)
	assert.Equal(t, "colab_combined.ipynb", cfg.Output.Notebook)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
	assert.Equal(t, "ccat", cfg.Tracing.ServiceName)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	rules, err := cfg.SummaryRules()
	require.NoError(t, err)
	ids := rules.IDs()
	assert.Contains(t, ids, "strip-prints")
	assert.NotContains(t, ids, "core.logging-setup")
	assert.Contains(t, ids, "core.trivial-getter")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `source_dir = "lib"`))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, summary.LevelNone, cfg.SummaryLevel())
	assert.Equal(t, LabelsAlpha, cfg.Graph.NodeLabels)
	assert.Equal(t, "colab_combined.py", cfg.Output.Concat)
	assert.Contains(t, cfg.Exclude.Dirs, "__pycache__")
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(writeConfig(t, `[summary]
level = "everything"`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "[summary]\nlevel = \"full\""},
		{"bad labels", "[graph]\nnode_labels = \"roman\""},
		{"bad glob", "[exclude]\ndirs = [\"[\"]"},
		{"rule without id", "[[summary.rules]]\nlevel = \"core\"\npattern = \"x\""},
		{"rule at none", "[[summary.rules]]\nid = \"r\"\nlevel = \"none\"\npattern = \"x\""},
		{"rule bad regex", "[[summary.rules]]\nid = \"r\"\nlevel = \"core\"\npattern = \"(\""},
		{"duplicate rule", "[[summary.rules]]\nid = \"r\"\nlevel = \"core\"\npattern = \"x\"\n[[summary.rules]]\nid = \"r\"\nlevel = \"core\"\npattern = \"y\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "ccat.example.toml"))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.SourceDir)
	assert.Equal(t, summary.LevelNone, cfg.SummaryLevel())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{"tools/", "cats/"}, cfg.Exclude.Patterns)

	rules, err := cfg.SummaryRules()
	require.NoError(t, err)
	assert.Contains(t, rules.IDs(), "core.strip-prints")
	assert.Contains(t, rules.IDs(), "main-guard")
}
