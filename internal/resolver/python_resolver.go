// # internal/resolver/python_resolver.go
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ccat/internal/parser"
)

// PythonResolver maps file paths to dotted module names and import
// references to the scanned modules they name.
type PythonResolver struct {
	projectRoot string
	// rootPackage is the root directory name when the root itself holds an
	// __init__.py, so that "import root.mod" resolves.
	rootPackage string

	modules   map[string]bool // module -> is package
	bySuffix  map[string][]string
	finalized bool
}

func NewPythonResolver(projectRoot string) *PythonResolver {
	r := &PythonResolver{
		projectRoot: projectRoot,
		modules:     make(map[string]bool),
		bySuffix:    make(map[string][]string),
	}
	if _, err := os.Stat(filepath.Join(projectRoot, "__init__.py")); err == nil {
		if abs, err := filepath.Abs(projectRoot); err == nil {
			r.rootPackage = filepath.Base(abs)
		}
	}
	return r
}

// GetModuleName returns the dotted module name of filePath relative to the
// project root. "pkg/__init__.py" maps onto "pkg".
func (r *PythonResolver) GetModuleName(filePath string) string {
	rel, err := filepath.Rel(r.projectRoot, filePath)
	if err != nil {
		return ""
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], ".py")

	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if r.rootPackage != "" {
		parts = append([]string{r.rootPackage}, parts...)
	}
	if len(parts) == 0 {
		return "__init__"
	}

	return strings.Join(parts, ".")
}

// Register makes module resolvable as an import target.
func (r *PythonResolver) Register(module string, isPackage bool) {
	if module == "" {
		return
	}
	r.modules[module] = isPackage
	r.finalized = false
}

func (r *PythonResolver) IsInternal(module string) bool {
	_, ok := r.modules[module]
	return ok
}

// Resolve returns the scanned modules an import statement depends on, sorted.
// An empty result means the import is external. The importing module itself
// may be part of the result; callers drop self edges.
func (r *PythonResolver) Resolve(fromModule string, fromIsPackage bool, imp parser.Import) []string {
	r.finalize()

	base := imp.Module
	if imp.IsRelative {
		pkg, ok := packageOf(fromModule, fromIsPackage, imp.Level)
		if !ok {
			return nil
		}
		base = joinModule(pkg, imp.Module)
	}

	targets := make(map[string]bool)
	needBase := len(imp.Items) == 0
	for _, item := range imp.Items {
		if item == "*" {
			needBase = true
			continue
		}
		if target, ok := r.lookup(joinModule(base, item), imp.IsRelative); ok {
			targets[target] = true
			continue
		}
		needBase = true
	}
	if needBase && base != "" {
		if target, ok := r.lookup(base, imp.IsRelative); ok {
			targets[target] = true
		}
	}

	res := make([]string, 0, len(targets))
	for t := range targets {
		res = append(res, t)
	}
	sort.Strings(res)
	return res
}

// lookup finds the module named ref. Absolute references may also match the
// single module whose name ends with ref, which covers scans rooted above the
// import root (e.g. "src/pkg/mod.py" imported as "pkg.mod"). Standard library
// names and ambiguous suffixes never fall back.
func (r *PythonResolver) lookup(ref string, exact bool) (string, bool) {
	if ref == "" {
		return "", false
	}
	if _, ok := r.modules[ref]; ok {
		return ref, true
	}
	if exact || IsStdlib(ref) {
		return "", false
	}
	candidates := r.bySuffix[ref]
	if len(candidates) != 1 {
		return "", false
	}
	return candidates[0], true
}

func (r *PythonResolver) finalize() {
	if r.finalized {
		return
	}
	r.bySuffix = make(map[string][]string)
	for module := range r.modules {
		parts := strings.Split(module, ".")
		for i := 1; i < len(parts); i++ {
			suffix := strings.Join(parts[i:], ".")
			r.bySuffix[suffix] = append(r.bySuffix[suffix], module)
		}
	}
	r.finalized = true
}

// packageOf climbs level-1 packages up from the package containing module.
func packageOf(module string, isPackage bool, level int) (string, bool) {
	if level < 1 {
		return "", false
	}
	var parts []string
	if module != "" && module != "__init__" {
		parts = strings.Split(module, ".")
	}
	if !isPackage && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	up := level - 1
	if up > len(parts) {
		return "", false
	}
	return strings.Join(parts[:len(parts)-up], "."), true
}

func joinModule(base, name string) string {
	switch {
	case base == "":
		return name
	case name == "":
		return base
	default:
		return base + "." + name
	}
}
