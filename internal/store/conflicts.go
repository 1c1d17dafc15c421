package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// Conflict records a detected scheduling problem (Conflict).
type Conflict struct {
	ID               string
	WorkspaceID      string
	Type             string // "temporal_overlap" | "slew_infeasible"
	Severity         string // "error" | "warning" | "info"
	Description      string
	AcquisitionIDs   []string
	Details          map[string]any
	CreatedAt        time.Time
	ResolvedAt       *time.Time
	ResolutionAction *string
}

// CreateConflict inserts a conflict, assigning a fresh id.
func (s *Store) CreateConflict(c Conflict) (Conflict, error) {
	c.ID = uuid.NewString()
	idsJSON, err := json.Marshal(c.AcquisitionIDs)
	if err != nil {
		return Conflict{}, coreerr.Persistence("marshal acquisition ids", err)
	}
	detailsJSON, err := json.Marshal(c.Details)
	if err != nil {
		return Conflict{}, coreerr.Persistence("marshal conflict details", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO conflicts (id, workspace_id, type, severity, description, acquisition_ids, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WorkspaceID, c.Type, c.Severity, c.Description, string(idsJSON), string(detailsJSON),
	)
	if err != nil {
		return Conflict{}, coreerr.Persistence("create conflict", err)
	}
	return s.GetConflict(c.ID)
}

func scanConflict(row interface{ Scan(dest ...any) error }) (Conflict, error) {
	var c Conflict
	var idsJSON, detailsJSON string
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Type, &c.Severity, &c.Description,
		&idsJSON, &detailsJSON, &c.CreatedAt, &c.ResolvedAt, &c.ResolutionAction)
	if err != nil {
		return Conflict{}, err
	}
	_ = json.Unmarshal([]byte(idsJSON), &c.AcquisitionIDs)
	_ = json.Unmarshal([]byte(detailsJSON), &c.Details)
	return c, nil
}

const conflictColumns = `id, workspace_id, type, severity, description, acquisition_ids, details, created_at, resolved_at, resolution_action`

// GetConflict fetches a conflict by id.
func (s *Store) GetConflict(id string) (Conflict, error) {
	row := s.db.QueryRow(`SELECT `+conflictColumns+` FROM conflicts WHERE id = ?`, id)
	c, err := scanConflict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Conflict{}, coreerr.NotFound("conflict", id)
	}
	if err != nil {
		return Conflict{}, coreerr.Persistence("get conflict", err)
	}
	return c, nil
}

// ListConflicts returns every conflict in a workspace, newest first.
func (s *Store) ListConflicts(workspaceID string) ([]Conflict, error) {
	rows, err := s.db.Query(`SELECT `+conflictColumns+` FROM conflicts WHERE workspace_id = ? ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, coreerr.Persistence("list conflicts", err)
	}
	defer rows.Close()

	var out []Conflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, coreerr.Persistence("scan conflict", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListUnresolvedErrorConflicts returns error-severity, unresolved conflicts
// referencing any of the given acquisition ids — the guardrail
// check_commit_conflicts(workspace, acquisition_ids) from .
func (s *Store) ListUnresolvedErrorConflicts(workspaceID string, acquisitionIDs []string) ([]Conflict, error) {
	all, err := s.ListConflicts(workspaceID)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(acquisitionIDs))
	for _, id := range acquisitionIDs {
		want[id] = true
	}

	var out []Conflict
	for _, c := range all {
		if c.Severity != "error" || c.ResolvedAt != nil {
			continue
		}
		for _, aid := range c.AcquisitionIDs {
			if want[aid] {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// ClearUnresolvedConflicts deletes a workspace's unresolved conflicts —
// persist(conflicts) "optionally clears previous unresolved conflicts for
// the workspace, then inserts".
func (s *Store) ClearUnresolvedConflicts(workspaceID string) error {
	_, err := s.db.Exec(`DELETE FROM conflicts WHERE workspace_id = ? AND resolved_at IS NULL`, workspaceID)
	if err != nil {
		return coreerr.Persistence("clear unresolved conflicts", err)
	}
	return nil
}

// ResolveConflict marks a conflict resolved with the given action.
func (s *Store) ResolveConflict(id, action string) error {
	res, err := s.db.Exec(`
		UPDATE conflicts SET resolved_at = datetime('now'), resolution_action = ? WHERE id = ?`,
		action, id)
	if err != nil {
		return coreerr.Persistence("resolve conflict", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coreerr.NotFound("conflict", id)
	}
	return nil
}
