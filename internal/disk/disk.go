package disk

import (
	"context"
)

// Entry is a single member of a directory listing.
type Entry struct {
	Path  string `json:"path"` // absolute
	Name  string `json:"name"` // base name
	IsDir bool   `json:"is_dir"`
}

// Provider is the filesystem boundary the state stores talk to. All paths are
// absolute; all text is UTF-8 (the single supported encoding). Implementations
// must make WriteText atomic: a concurrent reader sees either the old content
// or the new content, never a partial file.
type Provider interface {
	List(ctx context.Context, dir string) ([]Entry, error)
	ReadText(ctx context.Context, path string) (string, error)
	WriteText(ctx context.Context, path string, content string) error
	IsDir(ctx context.Context, path string) (bool, error)
}
