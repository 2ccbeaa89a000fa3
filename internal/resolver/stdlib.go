// # internal/resolver/stdlib.go
package resolver

import (
	_ "embed"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

var pythonStdlib = map[string]bool{}

func init() {
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			pythonStdlib[line] = true
		}
	}
}

// IsStdlib reports whether an absolute module reference names a standard
// library module, e.g. "os.path" or "collections.abc".
func IsStdlib(module string) bool {
	module = strings.TrimSpace(module)
	if module == "" || strings.HasPrefix(module, ".") {
		return false
	}
	root, _, _ := strings.Cut(module, ".")
	return pythonStdlib[root]
}
