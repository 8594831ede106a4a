// app.go
package main

import (
	"context"
	"log"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/dotkaio/kIDE/internal/config"
	"github.com/dotkaio/kIDE/internal/disk"
	"github.com/dotkaio/kIDE/internal/document"
	"github.com/dotkaio/kIDE/internal/rows"
	"github.com/dotkaio/kIDE/internal/scope"
	"github.com/dotkaio/kIDE/internal/storage"
	"github.com/dotkaio/kIDE/internal/util"
	"github.com/dotkaio/kIDE/internal/workspace"
)

const recentWorkspacesKeep = 20

// App is the Wails bound struct: it owns the two state stores and routes UI
// events into them. The stores never reference each other — a tree selection
// that lands on a file is forwarded to the document set here, and nowhere
// else.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.RWMutex

	cfg     config.Config
	cfgPath string
	cfgDir  string

	tree  *workspace.Tree
	docs  *document.Set
	db    *storage.DB
	focus string // "tree" or "editor"; never part of the core model
}

// DocView is the document shape handed to the frontend.
type DocView struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Text  string `json:"text"`
	Dirty bool   `json:"dirty"`
}

func NewApp(cfg config.Config, cfgPath, cfgDir string) *App {
	fs := disk.NewOS()
	return &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		cfgDir:  cfgDir,
		tree:    workspace.NewTree(fs, scope.NoGuard{}),
		docs:    document.NewSet(fs),
		focus:   "tree",
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if dbRel := a.cfg.Paths.HistoryDB; dbRel != "" {
		db, err := storage.Open(util.ResolvePath(a.cfgDir, dbRel))
		if err != nil {
			log.Printf("history db: %v", err)
		} else {
			a.mu.Lock()
			a.db = db
			a.mu.Unlock()
		}
	}

	// Forward store events to the frontend for re-rendering.
	go a.forwardTreeEvents(a.tree.Subscribe())
	go a.forwardDocEvents(a.docs.Subscribe())

	if lw := a.cfg.Paths.LastWorkspace; lw != "" {
		a.OpenWorkspace(lw)
	}
}

func (a *App) shutdown(ctx context.Context) {
	// Scope release on every exit path: CloseWorkspace releases the held
	// security scope even when shutdown races a dirty editor.
	a.saveSession()
	a.tree.Close()
	a.docs.Clear()

	a.mu.Lock()
	db := a.db
	a.db = nil
	a.mu.Unlock()
	if db != nil {
		if err := db.Close(); err != nil {
			log.Printf("history db close: %v", err)
		}
	}

	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) forwardTreeEvents(ch chan workspace.Event) {
	for evt := range ch {
		runtime.EventsEmit(a.ctx, "tree:"+evt.Type, evt)
	}
}

func (a *App) forwardDocEvents(ch chan document.Event) {
	for evt := range ch {
		runtime.EventsEmit(a.ctx, "doc:"+evt.Type, evt)
	}
}

// -------------------------
// Workspace API
// -------------------------

// SelectWorkspaceFolder opens a native directory picker and returns the
// chosen path. Returns empty string if the user cancels.
func (a *App) SelectWorkspaceFolder() (string, error) {
	dir, err := runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Choose workspace folder",
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// OpenWorkspace replaces the current workspace with folder. The previous
// workspace's session is snapshotted first; open documents are cleared (the
// frontend prompts when HasDirtyDocs says edits would be lost) and the new
// folder's session is restored best-effort.
func (a *App) OpenWorkspace(folder string) {
	a.saveSession()
	a.docs.Clear()
	a.tree.Open(a.ctx, folder)
	a.rememberWorkspace(folder)

	a.mu.RLock()
	db := a.db
	a.mu.RUnlock()
	if db == nil {
		return
	}

	if err := db.TouchWorkspace(folder, recentWorkspacesKeep); err != nil {
		log.Printf("touch workspace: %v", err)
	}

	sess, ok := db.GetSession(folder)
	if !ok {
		return
	}
	for _, dir := range sess.Expanded {
		a.tree.Expand(a.ctx, dir)
	}
	for _, p := range sess.OpenPaths {
		a.docs.Open(a.ctx, p)
	}
	if sess.ActivePath != "" {
		a.docs.Open(a.ctx, sess.ActivePath)
		a.tree.Select(sess.ActivePath)
	}
}

// CloseWorkspace snapshots the session, clears all open documents and resets
// the tree.
func (a *App) CloseWorkspace() {
	a.saveSession()
	a.docs.Clear()
	a.tree.Close()
	a.rememberWorkspace("")
}

// rememberWorkspace records the folder to reopen on the next launch.
func (a *App) rememberWorkspace(folder string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cfg.Paths.LastWorkspace == folder {
		return
	}
	a.cfg.Paths.LastWorkspace = folder
	if err := config.Save(a.cfgPath, a.cfg); err != nil {
		log.Printf("save config: %v", err)
	}
}

func (a *App) saveSession() {
	root := a.tree.Root()

	a.mu.RLock()
	db := a.db
	a.mu.RUnlock()
	if db == nil || root == "" {
		return
	}

	sess := storage.Session{
		Workspace: root,
		Expanded:  a.tree.ExpandedPaths(),
		OpenPaths: a.docs.Paths(),
	}
	if d, ok := a.docs.Active(); ok {
		sess.ActivePath = d.Path
	}
	if err := db.SaveSession(sess); err != nil {
		log.Printf("save session: %v", err)
	}
}

// RecentWorkspaces returns the launcher's recent-folders list, newest first.
func (a *App) RecentWorkspaces() []string {
	a.mu.RLock()
	db := a.db
	a.mu.RUnlock()
	if db == nil {
		return nil
	}
	recents, err := db.RecentWorkspaces()
	if err != nil {
		log.Printf("recent workspaces: %v", err)
		return nil
	}
	out := make([]string, 0, len(recents))
	for _, r := range recents {
		out = append(out, r.Path)
	}
	return out
}

// -------------------------
// Tree API
// -------------------------

// TreeRows returns the flattened projection of the visible tree.
func (a *App) TreeRows() []rows.Row {
	return rows.Flatten(a.tree.Root(), a.tree.IsExpanded, func(dir string) []disk.Entry {
		return a.tree.Children(a.ctx, dir)
	})
}

// SelectEntry routes a click on a tree row: the selection always moves; a
// directory toggles its expansion, a file opens (or re-activates) a
// document. Returns the active document view, or nil when a directory was
// selected with no document active.
func (a *App) SelectEntry(path string) *DocView {
	a.tree.Select(path)
	if a.tree.IsDir(a.ctx, path) {
		a.tree.Toggle(a.ctx, path)
		return a.ActiveDocument()
	}
	d := a.docs.Open(a.ctx, path)
	return &DocView{ID: d.ID, Path: d.Path, Text: d.Text, Dirty: d.Dirty()}
}

func (a *App) ToggleExpanded(path string) { a.tree.Toggle(a.ctx, path) }
func (a *App) CollapseEntry(path string)  { a.tree.Collapse(path) }
func (a *App) Selection() string          { return a.tree.Selection() }
func (a *App) WorkspaceRoot() string      { return a.tree.Root() }

// -------------------------
// Document API
// -------------------------

// OpenDocuments lists the open documents in tab order, without buffer text.
func (a *App) OpenDocuments() []DocView {
	docs := a.docs.Docs()
	out := make([]DocView, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocView{ID: d.ID, Path: d.Path, Dirty: d.Dirty()})
	}
	return out
}

// ActiveDocument returns the focused document, or nil.
func (a *App) ActiveDocument() *DocView {
	d, ok := a.docs.Active()
	if !ok {
		return nil
	}
	return &DocView{ID: d.ID, Path: d.Path, Text: d.Text, Dirty: d.Dirty()}
}

// ActivateDocument makes an already-open document the active one.
func (a *App) ActivateDocument(path string) *DocView {
	d := a.docs.Open(a.ctx, path)
	return &DocView{ID: d.ID, Path: d.Path, Text: d.Text, Dirty: d.Dirty()}
}

// UpdateActiveText replaces the active document's buffer with the editor's
// current text.
func (a *App) UpdateActiveText(text string) {
	a.docs.UpdateActiveText(text)
}

// SaveActive writes the active document to disk. A failure leaves the
// document dirty and is returned to the frontend; the store also broadcasts
// it as a doc:save_error event so it can never go unnoticed.
func (a *App) SaveActive() error {
	return a.docs.SaveActive(a.ctx)
}

// HasDirtyDocs reports whether any open document has unsaved edits, so the
// frontend can confirm before a workspace switch discards them.
func (a *App) HasDirtyDocs() bool {
	for _, d := range a.docs.Docs() {
		if d.Dirty() {
			return true
		}
	}
	return false
}

// -------------------------
// Host commands
// -------------------------

// ToggleFocus flips keyboard focus between the tree panel and the editor.
// Focus is a host concern; the stores never see it.
func (a *App) ToggleFocus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.focus == "tree" {
		a.focus = "editor"
	} else {
		a.focus = "tree"
	}
	runtime.EventsEmit(a.ctx, "focus", a.focus)
	return a.focus
}

func (a *App) Focus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.focus
}

// -------------------------
// Settings API
// -------------------------

func (a *App) GetConfig() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) SetTheme(theme string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Viewer.Theme = theme
	return config.Save(a.cfgPath, a.cfg)
}
