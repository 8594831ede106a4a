package disk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOSListAndRead(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewOS()
	ctx := context.Background()

	entries, err := p.List(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Path != filepath.Join(dir, e.Name) {
			t.Fatalf("expected absolute child path, got %q", e.Path)
		}
		switch e.Name {
		case "sub":
			if !e.IsDir {
				t.Fatalf("expected sub to be a directory")
			}
		case "a.txt":
			if e.IsDir {
				t.Fatalf("expected a.txt to be a file")
			}
		default:
			t.Fatalf("unexpected entry %q", e.Name)
		}
	}

	text, err := p.ReadText(ctx, filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "x" {
		t.Fatalf("expected %q, got %q", "x", text)
	}
}

func TestOSReadStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFhello"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := NewOS().ReadText(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello" {
		t.Fatalf("expected BOM stripped, got %q", text)
	}
}

func TestOSWriteTextAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	p := NewOS()
	ctx := context.Background()

	if err := p.WriteText(ctx, path, "one"); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteText(ctx, path, "two"); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("expected %q, got %q", "two", string(b))
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".kide-") {
			t.Fatalf("leftover temp file %q", e.Name())
		}
	}
}

func TestOSWriteTextMissingParent(t *testing.T) {
	dir := t.TempDir()
	err := NewOS().WriteText(context.Background(), filepath.Join(dir, "nope", "f.txt"), "x")
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}

func TestOSIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewOS()
	ctx := context.Background()

	if ok, err := p.IsDir(ctx, dir); err != nil || !ok {
		t.Fatalf("expected dir, got %v %v", ok, err)
	}
	if ok, err := p.IsDir(ctx, filepath.Join(dir, "f.txt")); err != nil || ok {
		t.Fatalf("expected file, got %v %v", ok, err)
	}
	if _, err := p.IsDir(ctx, filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}
