package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotkaio/kIDE/internal/disk"
)

// stubProvider overrides writes; reads go to the real filesystem.
type stubProvider struct {
	os      *disk.OS
	writeFn func(ctx context.Context, path, content string) error
	readFn  func(ctx context.Context, path string) (string, error)
}

func newStub() *stubProvider { return &stubProvider{os: disk.NewOS()} }

func (s *stubProvider) List(ctx context.Context, dir string) ([]disk.Entry, error) {
	return s.os.List(ctx, dir)
}

func (s *stubProvider) ReadText(ctx context.Context, path string) (string, error) {
	if s.readFn != nil {
		return s.readFn(ctx, path)
	}
	return s.os.ReadText(ctx, path)
}

func (s *stubProvider) WriteText(ctx context.Context, path, content string) error {
	if s.writeFn != nil {
		return s.writeFn(ctx, path, content)
	}
	return s.os.WriteText(ctx, path, content)
}

func (s *stubProvider) IsDir(ctx context.Context, path string) (bool, error) {
	return s.os.IsDir(ctx, path)
}

func mkFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenReadsFile(t *testing.T) {
	path := mkFile(t, "x")
	set := NewSet(disk.NewOS())

	d := set.Open(context.Background(), path)
	if d.Text != "x" {
		t.Fatalf("expected %q, got %q", "x", d.Text)
	}
	if d.Dirty() {
		t.Fatal("expected freshly opened document to be clean")
	}
	if d.ID == "" {
		t.Fatal("expected a document ID")
	}

	active, ok := set.Active()
	if !ok || active.ID != d.ID {
		t.Fatalf("expected opened document active, got %v %v", active, ok)
	}
}

func TestOpenTwiceReusesDocument(t *testing.T) {
	path := mkFile(t, "x")
	set := NewSet(disk.NewOS())
	ctx := context.Background()

	first := set.Open(ctx, path)
	set.UpdateActiveText("y")
	second := set.Open(ctx, path)

	if first.ID != second.ID {
		t.Fatalf("expected one document per path, got %q and %q", first.ID, second.ID)
	}
	if second.Text != "y" {
		t.Fatalf("expected in-memory edits preserved, got %q", second.Text)
	}
	if got := set.Docs(); len(got) != 1 {
		t.Fatalf("expected 1 open document, got %d", len(got))
	}
}

func TestOpenReadFailureYieldsEmptyDocument(t *testing.T) {
	stub := newStub()
	stub.readFn = func(context.Context, string) (string, error) {
		return "", errors.New("io failure")
	}
	set := NewSet(stub)

	d := set.Open(context.Background(), "/nowhere/b.txt")
	if d.Text != "" {
		t.Fatalf("expected empty buffer, got %q", d.Text)
	}
	if d.Dirty() {
		t.Fatal("expected clean document after degraded open")
	}
}

func TestDirtyDerivation(t *testing.T) {
	path := mkFile(t, "x")
	set := NewSet(disk.NewOS())
	ctx := context.Background()
	set.Open(ctx, path)

	set.UpdateActiveText("y")
	if d, _ := set.Active(); !d.Dirty() {
		t.Fatal("expected dirty after edit")
	}

	// editing back to the saved content makes it clean again
	set.UpdateActiveText("x")
	if d, _ := set.Active(); d.Dirty() {
		t.Fatal("expected clean when text matches last saved")
	}
}

func TestSaveActive(t *testing.T) {
	path := mkFile(t, "x")
	p := disk.NewOS()
	set := NewSet(p)
	ctx := context.Background()

	set.Open(ctx, path)
	set.UpdateActiveText("y")

	if err := set.SaveActive(ctx); err != nil {
		t.Fatal(err)
	}
	if d, _ := set.Active(); d.Dirty() {
		t.Fatal("expected clean after save")
	}

	onDisk, err := p.ReadText(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if onDisk != "y" {
		t.Fatalf("expected %q on disk, got %q", "y", onDisk)
	}
}

func TestSaveActiveFailure(t *testing.T) {
	path := mkFile(t, "x")
	stub := newStub()
	stub.writeFn = func(context.Context, string, string) error {
		return errors.New("disk full")
	}
	set := NewSet(stub)
	ctx := context.Background()

	ch := set.Subscribe()
	defer set.Unsubscribe(ch)

	set.Open(ctx, path)
	<-ch // open
	set.UpdateActiveText("y")
	<-ch // edit

	if err := set.SaveActive(ctx); err == nil {
		t.Fatal("expected save error")
	}

	d, _ := set.Active()
	if d.Text != "y" || !d.Dirty() {
		t.Fatalf("expected state unchanged and dirty, got text=%q dirty=%v", d.Text, d.Dirty())
	}

	evt := <-ch
	if evt.Type != "save_error" || evt.Path != path || evt.Error == "" {
		t.Fatalf("expected save_error event, got %+v", evt)
	}
}

func TestNoActiveDocumentNoOps(t *testing.T) {
	set := NewSet(disk.NewOS())
	ctx := context.Background()

	set.UpdateActiveText("y")
	if err := set.SaveActive(ctx); err != nil {
		t.Fatalf("expected nil from save with no active document, got %v", err)
	}
	if _, ok := set.Active(); ok {
		t.Fatal("expected no active document")
	}
}

func TestClear(t *testing.T) {
	path := mkFile(t, "x")
	set := NewSet(disk.NewOS())
	ctx := context.Background()

	set.Open(ctx, path)
	set.UpdateActiveText("unsaved")
	set.Clear()

	if got := set.Docs(); len(got) != 0 {
		t.Fatalf("expected no documents after clear, got %d", len(got))
	}
	if _, ok := set.Active(); ok {
		t.Fatal("expected no active document after clear")
	}

	// reopening reads from disk: the unsaved edit is gone
	d := set.Open(ctx, path)
	if d.Text != "x" {
		t.Fatalf("expected disk content %q after clear, got %q", "x", d.Text)
	}
}
