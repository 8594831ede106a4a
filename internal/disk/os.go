package disk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("not found")

// OS is the real-filesystem Provider.
type OS struct{}

func NewOS() *OS { return &OS{} }

func (o *OS) List(ctx context.Context, dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{
			Path:  filepath.Join(dir, e.Name()),
			Name:  e.Name(),
			IsDir: e.IsDir(),
		})
	}
	return out, nil
}

func (o *OS) ReadText(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(stripBOM(b)), nil
}

// WriteText writes atomically: temp file in the same directory, write, fsync,
// close, rename. The parent directory must already exist — the editor never
// invents directories on save.
func (o *OS) WriteText(ctx context.Context, path string, content string) error {
	dir := filepath.Dir(path)

	f, err := os.CreateTemp(dir, ".kide-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	if _, err := f.Write([]byte(content)); err != nil {
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (o *OS) IsDir(ctx context.Context, path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, ErrNotFound
		}
		return false, err
	}
	return st.IsDir(), nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
