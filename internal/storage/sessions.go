package storage

import (
	"encoding/json"
	"time"
)

// RecentWorkspace is one row of the launcher's recent-folders list.
type RecentWorkspace struct {
	Path       string
	LastOpened time.Time
}

// Session is the persisted shape of a workspace: which directories were
// expanded and which files were open. It never carries document text —
// restoring a session reopens paths from disk, it does not resurrect
// unsaved edits.
type Session struct {
	Workspace  string
	Expanded   []string
	OpenPaths  []string
	ActivePath string
}

// TouchWorkspace records that workspace was opened now and prunes the
// history to the newest keep entries.
func (d *DB) TouchWorkspace(workspace string, keep int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		INSERT INTO recent_workspaces (path, last_opened)
		VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET last_opened = CURRENT_TIMESTAMP`,
		workspace,
	)
	if err != nil {
		return err
	}

	if keep > 0 {
		_, err = d.db.Exec(`
			DELETE FROM recent_workspaces WHERE path NOT IN (
				SELECT path FROM recent_workspaces
				ORDER BY last_opened DESC LIMIT ?
			)`, keep)
	}
	return err
}

// RecentWorkspaces returns the history newest-first.
func (d *DB) RecentWorkspaces() ([]RecentWorkspace, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(`
		SELECT path, last_opened FROM recent_workspaces
		ORDER BY last_opened DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentWorkspace
	for rows.Next() {
		var rw RecentWorkspace
		var opened string
		if err := rows.Scan(&rw.Path, &opened); err != nil {
			return nil, err
		}
		rw.LastOpened, _ = time.Parse("2006-01-02 15:04:05", opened)
		out = append(out, rw)
	}
	return out, rows.Err()
}

// SaveSession stores or fully replaces the session snapshot for a workspace.
func (d *DB) SaveSession(s Session) error {
	expanded, _ := json.Marshal(s.Expanded)
	openPaths, _ := json.Marshal(s.OpenPaths)

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`
		INSERT INTO sessions (workspace, expanded_json, open_paths_json, active_path, saved_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(workspace) DO UPDATE SET
			expanded_json   = excluded.expanded_json,
			open_paths_json = excluded.open_paths_json,
			active_path     = excluded.active_path,
			saved_at        = CURRENT_TIMESTAMP`,
		s.Workspace, string(expanded), string(openPaths), s.ActivePath,
	)
	return err
}

// GetSession returns the saved session for a workspace, or false if none.
func (d *DB) GetSession(workspace string) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var s Session
	var expanded, openPaths string
	err := d.db.QueryRow(`
		SELECT workspace, expanded_json, open_paths_json, active_path
		FROM sessions WHERE workspace = ?`, workspace).
		Scan(&s.Workspace, &expanded, &openPaths, &s.ActivePath)
	if err != nil {
		return Session{}, false
	}
	json.Unmarshal([]byte(expanded), &s.Expanded)
	json.Unmarshal([]byte(openPaths), &s.OpenPaths)
	return s, true
}

// DeleteSession removes the snapshot for a workspace.
func (d *DB) DeleteSession(workspace string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`DELETE FROM sessions WHERE workspace = ?`, workspace)
	return err
}
