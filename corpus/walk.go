package corpus

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Walk collects the JSON song files under root as manifest paths
// ("./"-prefixed, slash separated, relative to root) in lexical order.
// limit caps the number of paths returned; zero means no limit.
func Walk(root string, limit int) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if limit > 0 && len(paths) >= limit {
			return filepath.SkipAll
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, "./"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
