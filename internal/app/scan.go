package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ccat/internal/parser"
	"ccat/internal/shared/observability"
	"ccat/internal/shared/util"

	"github.com/gobwas/glob"
)

type matcher struct {
	dirs     []glob.Glob
	files    []glob.Glob
	patterns []string
	skip     map[string]bool
}

func newMatcher(excludeDirs, excludeFiles, patterns, skipPaths []string) (*matcher, error) {
	m := &matcher{skip: make(map[string]bool, len(skipPaths))}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		m.dirs = append(m.dirs, g)
	}

	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		m.files = append(m.files, g)
	}

	for _, p := range patterns {
		if p = strings.TrimSpace(filepath.ToSlash(p)); p != "" {
			m.patterns = append(m.patterns, p)
		}
	}

	for _, p := range skipPaths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			m.skip[filepath.Clean(abs)] = true
		}
	}
	return m, nil
}

func (m *matcher) excludeDir(base string) bool {
	for _, g := range m.dirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (m *matcher) excludeFile(path, rel string) bool {
	base := filepath.Base(path)
	for _, g := range m.files {
		if g.Match(base) {
			return true
		}
	}
	for _, p := range m.patterns {
		if strings.Contains(rel, p) || util.HasPathPrefix(rel, p) {
			return true
		}
	}
	if abs, err := filepath.Abs(path); err == nil && m.skip[filepath.Clean(abs)] {
		return true
	}
	return false
}

// ScanDirectories lists the Python files below root in walk order. The root
// itself is never excluded. Unreadable subdirectories are skipped and
// reported.
func (a *App) ScanDirectories(root string) ([]string, []Diagnostic, error) {
	var (
		files []string
		diags []Diagnostic
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			diags = append(diags, Diagnostic{Path: path, Message: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && a.match.excludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !a.parser.Supported(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if a.match.excludeFile(path, filepath.ToSlash(rel)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, diags, err
	}

	return files, diags, nil
}

// ProcessFile reads and parses one file.
func (a *App) ProcessFile(path string) (*parser.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	file, err := a.parser.ParseFile(path, content)
	if err != nil {
		return nil, err
	}
	observability.ParsingDuration.WithLabelValues(file.Language).Observe(time.Since(start).Seconds())
	return file, nil
}
