package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dotkaio/kIDE/internal/util"
)

type Config struct {
	Viewer Viewer `json:"viewer"`
	Editor Editor `json:"editor"`
	Paths  Paths  `json:"paths"`
}

type Viewer struct {
	Theme        string `json:"theme"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`

	// Prompt before discarding dirty documents on workspace close/replace.
	ConfirmDiscard bool `json:"confirm_discard"`
}

type Editor struct {
	TabWidth  int  `json:"tab_width"`
	WrapLines bool `json:"wrap_lines"`
}

type Paths struct {
	// SQLite file for recent-workspace history and session snapshots,
	// relative to the config directory. Empty disables persistence.
	HistoryDB string `json:"history_db"`

	// Workspace folder reopened on startup. Empty means start empty.
	LastWorkspace string `json:"last_workspace"`
}

func Default() Config {
	return Config{
		Viewer: Viewer{
			Theme:          "dark",
			WindowWidth:    1200,
			WindowHeight:   800,
			ConfirmDiscard: true,
		},
		Editor: Editor{
			TabWidth:  4,
			WrapLines: false,
		},
		Paths: Paths{
			HistoryDB: "data/history.db",
		},
	}
}

func (c *Config) Validate() error {
	if c.Viewer.Theme != "dark" && c.Viewer.Theme != "light" {
		return errors.New("viewer.theme must be \"dark\" or \"light\"")
	}
	if c.Viewer.WindowWidth < 320 {
		return errors.New("viewer.window_width must be >= 320")
	}
	if c.Viewer.WindowHeight < 240 {
		return errors.New("viewer.window_height must be >= 240")
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return errors.New("editor.tab_width must be 1..16")
	}
	if lw := strings.TrimSpace(c.Paths.LastWorkspace); lw != c.Paths.LastWorkspace {
		return errors.New("paths.last_workspace must not have surrounding whitespace")
	}
	return nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Strip UTF-8 BOM if present (common when editing JSON on Windows).
	b = stripBOM(b)

	// Start from defaults so missing JSON fields remain initialized.
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadPartial reads a config file without validation. Useful for reading
// individual fields (like last_workspace) when full validation may fail.
func LoadPartial(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	b = stripBOM(b)

	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	return util.WriteJSONFile(path, cfg)
}

// Ensure loads config if it exists; otherwise creates a default config file.
// Returns (cfg, createdNew, err).
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("create default config: %w", err)
	}
	return cfg, true, nil
}
