// # internal/watcher/watcher_test.go
package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func contains(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	output := filepath.Join(tmpDir, "combined.py")

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(Options{
		Debounce:     100 * time.Millisecond,
		ExcludeDirs:  []string{"exclude_dir"},
		ExcludeFiles: []string{"*_skip.py"},
		Extensions:   []string{".py"},
		Ignore:       []string{output},
	}, func(paths []string) {
		changedFiles <- paths
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch([]string{tmpDir}))

	testFile := filepath.Join(tmpDir, "mod.py")
	require.NoError(t, os.WriteFile(testFile, []byte("x = 1\n"), 0o644))

	select {
	case paths := <-changedFiles:
		if !contains(paths, testFile) {
			t.Errorf("Expected to find %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for file change event")
	}

	// Excluded globs, other extensions and ignored outputs never trigger.
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a_skip.py"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("x"), 0o644))

	select {
	case paths := <-changedFiles:
		t.Errorf("Excluded files triggered event: %v", paths)
	case <-time.After(500 * time.Millisecond):
		// Expected
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "newpkg")
	require.NoError(t, os.MkdirAll(subdir, 0o755))
	subFile := filepath.Join(subdir, "nested.py")
	require.NoError(t, os.WriteFile(subFile, []byte("y = 2\n"), 0o644))

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			if contains(paths, subFile) {
				return
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for nested file event for %s", subFile)
		}
	}
}

func TestWatcherRejectsBadGlob(t *testing.T) {
	_, err := NewWatcher(Options{ExcludeDirs: []string{"["}}, func([]string) {})
	require.Error(t, err)
}

func TestWatcherSkipsExcludedDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	excluded := filepath.Join(tmpDir, "venv")
	require.NoError(t, os.MkdirAll(excluded, 0o755))

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(Options{
		Debounce:    50 * time.Millisecond,
		ExcludeDirs: []string{"venv"},
		Extensions:  []string{".py"},
	}, func(paths []string) { changedFiles <- paths })
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{tmpDir}))

	require.NoError(t, os.WriteFile(filepath.Join(excluded, "lib.py"), []byte("z = 3\n"), 0o644))

	select {
	case paths := <-changedFiles:
		t.Errorf("Excluded directory triggered event: %v", paths)
	case <-time.After(400 * time.Millisecond):
	}
}
