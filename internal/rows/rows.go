// Package rows derives the flattened, renderable view of the workspace tree.
// It holds no state: the projection is recomputed from the tree snapshot on
// every change, which is cheap relative to the I/O behind the children cache.
package rows

import "github.com/dotkaio/kIDE/internal/disk"

// Row is one visible line of the tree panel. Depth is 0 for immediate
// children of the workspace root.
type Row struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Depth int    `json:"depth"`
}

// Flatten walks the tree depth-first in pre-order. A directory's children
// follow it immediately only when expanded reports true for it; a collapsed
// subtree is never recursed into, so cost is bounded by what is visible.
// children is expected to be the tree's cached lookup and must return entries
// already ordered for display.
func Flatten(root string, expanded func(dir string) bool, children func(dir string) []disk.Entry) []Row {
	if root == "" {
		return nil
	}
	var out []Row
	appendDir(&out, root, 0, expanded, children)
	return out
}

func appendDir(out *[]Row, dir string, depth int, expanded func(string) bool, children func(string) []disk.Entry) {
	for _, e := range children(dir) {
		*out = append(*out, Row{
			Path:  e.Path,
			Name:  e.Name,
			IsDir: e.IsDir,
			Depth: depth,
		})
		if e.IsDir && expanded(e.Path) {
			appendDir(out, e.Path, depth+1, expanded, children)
		}
	}
}
