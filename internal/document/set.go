package document

import (
	"context"
	"sync"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/dotkaio/kIDE/internal/disk"
)

var log = logging.Logger("document")

// Document is one open editor buffer. Dirty state is never stored: it is
// derived from the two text fields so the flag can never desync.
type Document struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Text      string `json:"text"`
	savedText string
}

// Dirty reports whether the buffer differs from its last saved content.
func (d *Document) Dirty() bool { return d.Text != d.savedText }

// Event is broadcast to subscribers after a document mutation.
type Event struct {
	Type  string `json:"type"` // "open", "active", "edit", "saved", "save_error", "clear"
	DocID string `json:"doc_id,omitempty"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// Set is the open-document state store: an ordered list of documents, unique
// by ID and by path, plus the active document. Mutation is serialized under
// one mutex.
type Set struct {
	mu sync.Mutex
	fs disk.Provider

	docs     []*Document
	activeID string

	listeners []chan Event
}

func NewSet(fs disk.Provider) *Set {
	return &Set{fs: fs}
}

// Open makes the document for path active, creating it first if needed. An
// already-open path is reused and never re-read from disk, so in-memory edits
// survive re-selection in the tree. A read failure degrades to an empty
// initial buffer; Open itself never fails. The returned Document is a
// snapshot copy.
func (s *Set) Open(ctx context.Context, path string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.docs {
		if d.Path == path {
			if s.activeID != d.ID {
				s.activeID = d.ID
				s.notifyListeners(Event{Type: "active", DocID: d.ID, Path: d.Path})
			}
			return *d
		}
	}

	text, err := s.fs.ReadText(ctx, path)
	if err != nil {
		log.Warnw("read failed, opening empty buffer", "path", path, "err", err)
		text = ""
	}

	d := &Document{
		ID:        uuid.NewString(),
		Path:      path,
		Text:      text,
		savedText: text,
	}
	s.docs = append(s.docs, d)
	s.activeID = d.ID
	s.notifyListeners(Event{Type: "open", DocID: d.ID, Path: d.Path})
	return *d
}

// UpdateActiveText replaces the active document's buffer. No-op when nothing
// is active.
func (s *Set) UpdateActiveText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.activeLocked()
	if d == nil {
		return
	}
	d.Text = text
	s.notifyListeners(Event{Type: "edit", DocID: d.ID, Path: d.Path})
}

// SaveActive writes the active document's buffer to disk atomically. On
// success the saved baseline advances and the document is clean. On failure
// nothing changes — the document stays dirty — and the error is both
// returned and broadcast, so a failed save is always user-visible.
func (s *Set) SaveActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.activeLocked()
	if d == nil {
		return nil
	}

	if err := s.fs.WriteText(ctx, d.Path, d.Text); err != nil {
		log.Errorw("save failed", "path", d.Path, "err", err)
		s.notifyListeners(Event{Type: "save_error", DocID: d.ID, Path: d.Path, Error: err.Error()})
		return err
	}

	d.savedText = d.Text
	s.notifyListeners(Event{Type: "saved", DocID: d.ID, Path: d.Path})
	return nil
}

// Clear discards every open document, unsaved edits included. Callers own
// any confirm-before-discard prompt; by the time Clear runs the data loss is
// intentional.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.docs) == 0 && s.activeID == "" {
		return
	}
	s.docs = nil
	s.activeID = ""
	s.notifyListeners(Event{Type: "clear"})
}

// Active returns a snapshot of the active document, or false when nothing
// is active.
func (s *Set) Active() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.activeLocked()
	if d == nil {
		return Document{}, false
	}
	return *d, true
}

func (s *Set) activeLocked() *Document {
	if s.activeID == "" {
		return nil
	}
	for _, d := range s.docs {
		if d.ID == s.activeID {
			return d
		}
	}
	return nil
}

// Get returns a snapshot of the document with the given ID.
func (s *Set) Get(id string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == id {
			return *d, true
		}
	}
	return Document{}, false
}

// Docs returns snapshots of the open documents in open order.
func (s *Set) Docs() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, *d)
	}
	return out
}

// Paths returns the open document paths in open order, for session
// persistence.
func (s *Set) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Path)
	}
	return out
}

func (s *Set) Subscribe() chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, 16)
	s.listeners = append(s.listeners, ch)
	return ch
}

func (s *Set) Unsubscribe(ch chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, listener := range s.listeners {
		if listener == ch {
			close(listener)
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Set) notifyListeners(evt Event) {
	for _, ch := range s.listeners {
		select {
		case ch <- evt:
		default:
		}
	}
}
