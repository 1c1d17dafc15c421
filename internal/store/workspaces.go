package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// Workspace is the top-level container (Workspace): identity, name,
// timestamps, schema version, mission mode, time-window bounds, denormalized
// counts, and JSON blobs for scenario config, analysis/planning/orders/UI
// state.
type Workspace struct {
	ID               string
	Name             string
	SchemaVersion    string
	MissionMode      string
	WindowStart      *time.Time
	WindowEnd        *time.Time
	TargetCount      int
	SatelliteCount   int
	AcquisitionCount int
	ScenarioConfig   string // JSON
	AnalysisState    string // JSON
	PlanningState    string // JSON
	OrdersState      string // JSON
	UIState          string // JSON
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateWorkspace inserts a new workspace, assigning a fresh id.
func (s *Store) CreateWorkspace(w Workspace) (Workspace, error) {
	w.ID = uuid.NewString()
	if w.SchemaVersion == "" {
		w.SchemaVersion = WorkspaceSchemaVersion
	}
	if w.ScenarioConfig == "" {
		w.ScenarioConfig = "{}"
	}
	if w.AnalysisState == "" {
		w.AnalysisState = "{}"
	}
	if w.PlanningState == "" {
		w.PlanningState = "{}"
	}
	if w.OrdersState == "" {
		w.OrdersState = "{}"
	}
	if w.UIState == "" {
		w.UIState = "{}"
	}

	_, err := s.db.Exec(`
		INSERT INTO workspaces (
			id, name, schema_version, mission_mode, window_start, window_end,
			target_count, satellite_count, acquisition_count,
			scenario_config, analysis_state, planning_state, orders_state, ui_state
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.SchemaVersion, w.MissionMode, w.WindowStart, w.WindowEnd,
		w.TargetCount, w.SatelliteCount, w.AcquisitionCount,
		w.ScenarioConfig, w.AnalysisState, w.PlanningState, w.OrdersState, w.UIState,
	)
	if err != nil {
		return Workspace{}, coreerr.Persistence("create workspace", err)
	}
	return s.GetWorkspace(w.ID)
}

// GetWorkspace fetches a workspace by id (without the CZML blob).
func (s *Store) GetWorkspace(id string) (Workspace, error) {
	row := s.db.QueryRow(`
		SELECT id, name, schema_version, mission_mode, window_start, window_end,
			target_count, satellite_count, acquisition_count,
			scenario_config, analysis_state, planning_state, orders_state, ui_state,
			created_at, updated_at
		FROM workspaces WHERE id = ?`, id)

	var w Workspace
	err := row.Scan(
		&w.ID, &w.Name, &w.SchemaVersion, &w.MissionMode, &w.WindowStart, &w.WindowEnd,
		&w.TargetCount, &w.SatelliteCount, &w.AcquisitionCount,
		&w.ScenarioConfig, &w.AnalysisState, &w.PlanningState, &w.OrdersState, &w.UIState,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, coreerr.NotFound("workspace", id)
	}
	if err != nil {
		return Workspace{}, coreerr.Persistence("get workspace", err)
	}
	return w, nil
}

// ListWorkspaces returns all workspaces, newest first.
func (s *Store) ListWorkspaces() ([]Workspace, error) {
	rows, err := s.db.Query(`
		SELECT id, name, schema_version, mission_mode, window_start, window_end,
			target_count, satellite_count, acquisition_count,
			scenario_config, analysis_state, planning_state, orders_state, ui_state,
			created_at, updated_at
		FROM workspaces ORDER BY created_at DESC`)
	if err != nil {
		return nil, coreerr.Persistence("list workspaces", err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var w Workspace
		if err := rows.Scan(
			&w.ID, &w.Name, &w.SchemaVersion, &w.MissionMode, &w.WindowStart, &w.WindowEnd,
			&w.TargetCount, &w.SatelliteCount, &w.AcquisitionCount,
			&w.ScenarioConfig, &w.AnalysisState, &w.PlanningState, &w.OrdersState, &w.UIState,
			&w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, coreerr.Persistence("scan workspace", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateWorkspace overwrites the mutable fields of an existing workspace.
func (s *Store) UpdateWorkspace(w Workspace) (Workspace, error) {
	res, err := s.db.Exec(`
		UPDATE workspaces SET
			name = ?, mission_mode = ?, window_start = ?, window_end = ?,
			target_count = ?, satellite_count = ?, acquisition_count = ?,
			scenario_config = ?, analysis_state = ?, planning_state = ?,
			orders_state = ?, ui_state = ?, updated_at = datetime('now')
		WHERE id = ?`,
		w.Name, w.MissionMode, w.WindowStart, w.WindowEnd,
		w.TargetCount, w.SatelliteCount, w.AcquisitionCount,
		w.ScenarioConfig, w.AnalysisState, w.PlanningState, w.OrdersState, w.UIState,
		w.ID,
	)
	if err != nil {
		return Workspace{}, coreerr.Persistence("update workspace", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Workspace{}, coreerr.NotFound("workspace", w.ID)
	}
	return s.GetWorkspace(w.ID)
}

// DeleteWorkspace removes a workspace and, via foreign-key cascade, its
// blob and every order/plan/plan item/acquisition/conflict row it owns
// (Ownership). commit_audit_log rows carry no workspace foreign key and
// are not removed.
func (s *Store) DeleteWorkspace(id string) error {
	res, err := s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return coreerr.Persistence("delete workspace", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coreerr.NotFound("workspace", id)
	}
	return nil
}

// SetWorkspaceBlob upserts the compressed CZML visualization payload.
func (s *Store) SetWorkspaceBlob(workspaceID string, czmlCompressed []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO workspace_blobs (workspace_id, czml_compressed, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(workspace_id) DO UPDATE SET
			czml_compressed = excluded.czml_compressed,
			updated_at = datetime('now')`,
		workspaceID, czmlCompressed,
	)
	if err != nil {
		return coreerr.Persistence("set workspace blob", err)
	}
	return nil
}

// GetWorkspaceBlob fetches the compressed CZML payload, if any.
func (s *Store) GetWorkspaceBlob(workspaceID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT czml_compressed FROM workspace_blobs WHERE workspace_id = ?`, workspaceID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, coreerr.Persistence("get workspace blob", err)
	}
	return blob, nil
}

// WorkspaceExport is the portable export document: "export emits a
// portable JSON with an export_version equal to the schema version; import
// recreates a new workspace with a fresh id."
type WorkspaceExport struct {
	ExportVersion string        `json:"export_version"`
	Workspace     Workspace     `json:"workspace"`
	Acquisitions  []Acquisition `json:"acquisitions"`
	Conflicts     []Conflict    `json:"conflicts"`
	CZMLBlob      []byte        `json:"czml_blob,omitempty"`
}

// ExportWorkspace builds a WorkspaceExport for the given workspace.
func (s *Store) ExportWorkspace(id string) (WorkspaceExport, error) {
	w, err := s.GetWorkspace(id)
	if err != nil {
		return WorkspaceExport{}, err
	}
	acqs, err := s.ListAcquisitions(id)
	if err != nil {
		return WorkspaceExport{}, err
	}
	conflicts, err := s.ListConflicts(id)
	if err != nil {
		return WorkspaceExport{}, err
	}
	blob, err := s.GetWorkspaceBlob(id)
	if err != nil {
		return WorkspaceExport{}, err
	}
	return WorkspaceExport{
		ExportVersion: w.SchemaVersion,
		Workspace: w,
		Acquisitions: acqs,
		Conflicts: conflicts,
		CZMLBlob: blob,
	}, nil
}

// ImportWorkspace recreates a workspace from an export document under a
// fresh id: import always recreates a new workspace rather than
// overwriting one. Acquisitions and conflicts are reinserted with fresh
// ids of their own; plan_id linkage is dropped since the originating
// plan is not re-created.
func (s *Store) ImportWorkspace(doc WorkspaceExport) (Workspace, error) {
	w := doc.Workspace
	w.ID = ""
	created, err := s.CreateWorkspace(w)
	if err != nil {
		return Workspace{}, err
	}

	idRemap := make(map[string]string, len(doc.Acquisitions))
	for _, a := range doc.Acquisitions {
		oldID := a.ID
		a.ID = ""
		a.WorkspaceID = created.ID
		a.PlanID = nil
		created2, err := s.CreateAcquisition(a)
		if err != nil {
			return Workspace{}, err
		}
		idRemap[oldID] = created2.ID
	}

	for _, c := range doc.Conflicts {
		c.ID = ""
		c.WorkspaceID = created.ID
		remapped := make([]string, 0, len(c.AcquisitionIDs))
		for _, old := range c.AcquisitionIDs {
			if n, ok := idRemap[old]; ok {
				remapped = append(remapped, n)
			}
		}
		c.AcquisitionIDs = remapped
		if _, err := s.CreateConflict(c); err != nil {
			return Workspace{}, err
		}
	}

	if len(doc.CZMLBlob) > 0 {
		if err := s.SetWorkspaceBlob(created.ID, doc.CZMLBlob); err != nil {
			return Workspace{}, err
		}
	}

	return s.GetWorkspace(created.ID)
}
