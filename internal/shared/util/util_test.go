package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./pkg/sub  ", expected: "pkg/sub"},
		{name: "Relative", input: "pkg/../tools", expected: "tools"},
		{name: "Backslashes", input: `pkg\sub\mod.py`, expected: "pkg/sub/mod.py"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NormalizePatternPath(tc.input))
		})
	}
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		path     string
		prefix   string
		expected bool
	}{
		{name: "Exact", path: "tools/gen.py", prefix: "tools/gen.py", expected: true},
		{name: "Nested", path: "tools/gen/main.py", prefix: "tools", expected: true},
		{name: "Neighbor", path: "toolsx/main.py", prefix: "tools", expected: false},
		{name: "Shorter", path: "pkg", prefix: "pkg/sub", expected: false},
		{name: "MixedSeparators", path: `pkg\sub\mod.py`, prefix: "pkg/sub", expected: true},
		{name: "TrailingSlash", path: "cats/a.py", prefix: "cats/", expected: true},
		{name: "EmptyPrefix", path: "a.py", prefix: "", expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, HasPathPrefix(tc.path, tc.prefix))
		})
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	keys := SortedStringKeys(map[string]bool{"pkg.b": true, "pkg.a": true, "base": false})
	assert.Equal(t, []string{"base", "pkg.a", "pkg.b"}, keys)
	assert.Empty(t, SortedStringKeys(map[string]int(nil)))
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "colab_combined.py")

	require.NoError(t, WriteFileWithDirs(path, []byte("first\n"), 0o644))
	require.NoError(t, WriteFileWithDirs(path, []byte("second\n"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteStringWithDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "report.txt")
	require.NoError(t, WriteStringWithDirs(path, "hello", 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
