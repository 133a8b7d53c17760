package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvePath maps a manifest path onto the data root. Leading dots are
// stripped, so "./a/b.json" and "a/b.json" resolve to the same file.
// Paths that still land outside root return ErrPathOutsideRoot.
func ResolvePath(root, path string) (string, error) {
	resolved := filepath.Join(root, strings.TrimLeft(path, "."))
	rel, err := filepath.Rel(filepath.Clean(root), resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}
	return resolved, nil
}
