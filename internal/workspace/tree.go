package workspace

import (
	"context"
	"sort"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dotkaio/kIDE/internal/disk"
	"github.com/dotkaio/kIDE/internal/scope"
)

var log = logging.Logger("workspace")

// Event is broadcast to subscribers after a tree mutation so the
// presentation layer can re-render.
type Event struct {
	Type string `json:"type"` // "open", "close", "select", "expand", "collapse"
	Path string `json:"path,omitempty"`
}

// Tree is the workspace-tree state store: the open root folder, the tree
// selection, the set of expanded directories and the per-directory children
// cache. All mutation is serialized under one mutex (single-writer); the
// expanded set and the children cache are advisory and always cleared
// together on a root change so nothing from a previous workspace leaks into
// rendering.
type Tree struct {
	mu    sync.Mutex
	fs    disk.Provider
	guard scope.Guard
	coll  *collate.Collator

	root      string
	selection string
	expanded  map[string]struct{}
	children  map[string][]disk.Entry

	listeners []chan Event
}

func NewTree(fs disk.Provider, guard scope.Guard) *Tree {
	return &Tree{
		fs:       fs,
		guard:    guard,
		coll:     collate.New(language.Und, collate.IgnoreCase),
		expanded: map[string]struct{}{},
		children: map[string][]disk.Entry{},
	}
}

// Open switches the workspace to folder. Any previously held security scope
// is released before the new one is acquired; a failed acquisition is
// non-fatal — listings will simply come back empty.
func (t *Tree) Open(ctx context.Context, folder string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root != "" {
		t.guard.Release(t.root)
	}
	if !t.guard.Acquire(folder) {
		log.Warnw("security scope not granted", "folder", folder)
	}

	t.root = folder
	t.selection = ""
	t.expanded = map[string]struct{}{}
	t.children = map[string][]disk.Entry{}
	t.notifyListeners(Event{Type: "open", Path: folder})
}

// Close releases the security scope and resets every field. Idempotent.
func (t *Tree) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root == "" {
		return
	}
	t.guard.Release(t.root)
	t.root = ""
	t.selection = ""
	t.expanded = map[string]struct{}{}
	t.children = map[string][]disk.Entry{}
	t.notifyListeners(Event{Type: "close"})
}

// Children returns the ordered listing of dir: directories before files,
// names compared case-insensitively with locale-aware collation, hidden
// (dot-prefixed) entries excluded. Results are cached per directory. A
// listing failure degrades to an empty list and is NOT cached, so a
// transient failure is retried on the next call.
func (t *Tree) Children(ctx context.Context, dir string) []disk.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.childrenLocked(ctx, dir)
}

func (t *Tree) childrenLocked(ctx context.Context, dir string) []disk.Entry {
	if cached, ok := t.children[dir]; ok {
		return append([]disk.Entry(nil), cached...)
	}

	entries, err := t.fs.List(ctx, dir)
	if err != nil {
		log.Debugw("list failed", "dir", dir, "err", err)
		return nil
	}

	out := make([]disk.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return t.coll.CompareString(a.Name, b.Name) < 0
	})

	t.children[dir] = out
	return append([]disk.Entry(nil), out...)
}

// Toggle flips the expanded state of path. A no-op unless path is a
// directory per a live provider check.
func (t *Tree) Toggle(ctx context.Context, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.expanded[path]; ok {
		delete(t.expanded, path)
		t.notifyListeners(Event{Type: "collapse", Path: path})
		return
	}
	if !t.isDirLocked(ctx, path) {
		return
	}
	t.expanded[path] = struct{}{}
	t.notifyListeners(Event{Type: "expand", Path: path})
}

// Expand marks path expanded if it is a directory; otherwise a no-op.
func (t *Tree) Expand(ctx context.Context, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.expanded[path]; ok {
		return
	}
	if !t.isDirLocked(ctx, path) {
		return
	}
	t.expanded[path] = struct{}{}
	t.notifyListeners(Event{Type: "expand", Path: path})
}

// Collapse removes path from the expanded set. Unconditional; removing a
// non-member is a no-op.
func (t *Tree) Collapse(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.expanded[path]; !ok {
		return
	}
	delete(t.expanded, path)
	t.notifyListeners(Event{Type: "collapse", Path: path})
}

// IsDir reports whether path is a directory. Fails closed: a provider
// failure reads as false so an inaccessible node is never treated as
// expandable.
func (t *Tree) IsDir(ctx context.Context, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isDirLocked(ctx, path)
}

func (t *Tree) isDirLocked(ctx context.Context, path string) bool {
	isDir, err := t.fs.IsDir(ctx, path)
	if err != nil {
		return false
	}
	return isDir
}

func (t *Tree) Select(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection = path
	t.notifyListeners(Event{Type: "select", Path: path})
}

func (t *Tree) Selection() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection
}

func (t *Tree) Root() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

func (t *Tree) IsExpanded(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.expanded[path]
	return ok
}

// ExpandedPaths returns a copy of the expanded set, for session persistence.
func (t *Tree) ExpandedPaths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.expanded))
	for p := range t.expanded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (t *Tree) Subscribe() chan Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan Event, 16)
	t.listeners = append(t.listeners, ch)
	return ch
}

func (t *Tree) Unsubscribe(ch chan Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, listener := range t.listeners {
		if listener == ch {
			close(listener)
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

func (t *Tree) notifyListeners(evt Event) {
	for _, ch := range t.listeners {
		select {
		case ch <- evt:
		default:
		}
	}
}
