package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ccat/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"base.py": "import os\n\n\ndef helper():\n    return os.getcwd()\n",
		"top.py":  "import base\n\n\ndef main():\n    return base.helper()\n\n\nif __name__ == \"__main__\":\n    main()\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{}
	cmd := c.rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	// Keep tests independent of a ccat.toml in the working directory.
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := c.execute(context.Background(), cmd)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ccat v"+VERSION+"\n", out)
}

func TestConcatCommand(t *testing.T) {
	root := writeProject(t)
	target := filepath.Join(t.TempDir(), "merged.py")

	_, stderr, err := execute(t, "concat", root, "-o", target)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote "+target)
	assert.Contains(t, stderr, "No import cycles")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	merged := string(data)
	assert.Contains(t, merged, "# From base.py\n")
	assert.Contains(t, merged, "# From top.py\n")
	assert.Less(t, bytes.Index(data, []byte("# From base.py")), bytes.Index(data, []byte("# From top.py")))
	assert.Contains(t, merged, "if __name__ == \"__main__\":")
}

func TestConcatCommand_LevelOverride(t *testing.T) {
	root := writeProject(t)
	target := filepath.Join(t.TempDir(), "merged.py")

	_, _, err := execute(t, "--level", "interface", "concat", root, "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Summary Level: interface")
	assert.Contains(t, string(data), "# Entry point guard removed")
	assert.Contains(t, string(data), "...  # Function signature preserved")
}

func TestConcatCommand_BadLevel(t *testing.T) {
	root := writeProject(t)
	_, _, err := execute(t, "--level", "everything", "concat", root)
	require.Error(t, err)
	assert.Equal(t, exitError, exitCode(err))
}

func TestNotebookCommand(t *testing.T) {
	root := writeProject(t)
	target := filepath.Join(t.TempDir(), "out", "merged.ipynb")

	_, _, err := execute(t, "notebook", root, "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var nb map[string]any
	require.NoError(t, json.Unmarshal(data, &nb))
	assert.EqualValues(t, 4, nb["nbformat"])
}

func TestReportCommand_Stdout(t *testing.T) {
	root := writeProject(t)

	out, stderr, err := execute(t, "report", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Dependency Analysis Report")
	assert.Contains(t, out, "B --> A")
	assert.NotContains(t, stderr, "Wrote")
}

func TestGraphCommand(t *testing.T) {
	root := writeProject(t)

	out, _, err := execute(t, "graph", root, "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph dependencies {")
	assert.Contains(t, out, `"top" -> "base"`)

	_, _, err = execute(t, "graph", root, "--format", "svg")
	require.Error(t, err)
}

func TestNoSourcesExitCode(t *testing.T) {
	_, _, err := execute(t, "concat", t.TempDir(), "-o", filepath.Join(t.TempDir(), "x.py"))
	require.Error(t, err)
	assert.Equal(t, exitNoSources, exitCode(err))
}

func TestExecute_FlushesTracesAfterFailedRun(t *testing.T) {
	c := &cli{}
	cmd := c.rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "concat", t.TempDir()})

	var flushed int
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := c.setup(cmd, args); err != nil {
			return err
		}
		c.shutdown = func(context.Context) error {
			flushed++
			return nil
		}
		return nil
	}

	err := c.execute(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, exitNoSources, exitCode(err))
	assert.Equal(t, 1, flushed)
	assert.Nil(t, c.shutdown)
}

func TestConfigFile(t *testing.T) {
	root := writeProject(t)
	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "ccat.toml")
	cfgText := "source_dir = " + quote(root) + "\n\n[summary]\nlevel = \"core\"\n\n[output]\nconcat = " + quote(filepath.Join(outDir, "c.py")) + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgText), 0o644))

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", cfgPath, "concat"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(filepath.Join(outDir, "c.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Summary Level: core")
}

func TestWatch_WritesOutputsBeforeBlocking(t *testing.T) {
	root := writeProject(t)
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.SourceDir = root
	cfg.Output.Concat = filepath.Join(outDir, "merged.py")
	cfg.Output.Notebook = filepath.Join(outDir, "merged.ipynb")
	cfg.Output.Mermaid = filepath.Join(outDir, "graph.mmd")
	cfg.Watch.Debounce = 10 * time.Millisecond
	c := &cli{cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var summary bytes.Buffer
	require.NoError(t, c.watch(ctx, &summary, ""))

	for _, name := range []string{"merged.py", "merged.ipynb", "graph.mmd"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, summary.String(), "Wrote "+cfg.Output.Mermaid)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
