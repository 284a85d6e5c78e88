package probe

import (
	"path/filepath"
	"strings"
)

// Relative shortens path against root for display. Paths outside root,
// or an empty root, come back unchanged.
func Relative(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
