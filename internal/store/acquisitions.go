package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// Acquisition is a committed observation slot in a workspace's timeline.
type Acquisition struct {
	ID            string
	WorkspaceID   string
	PlanID        *string
	SatelliteID   string
	TargetID      string
	StartTime     time.Time
	EndTime       time.Time
	RollAngleDeg  float64
	PitchAngleDeg float64
	Mode          string // "optical" | "sar"
	State         string // "committed" | "executing" | "complete" | "failed"
	LockLevel     string // "none" | "soft" | "hard"
	Source        string
	OpportunityID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateAcquisition inserts a new acquisition, assigning a fresh id.
func (s *Store) CreateAcquisition(a Acquisition) (Acquisition, error) {
	a.ID = uuid.NewString()
	if a.State == "" {
		a.State = "committed"
	}
	if a.LockLevel == "" {
		a.LockLevel = "none"
	}

	_, err := s.db.Exec(`
		INSERT INTO acquisitions (
			id, workspace_id, plan_id, satellite_id, target_id,
			start_time, end_time, roll_angle_deg, pitch_angle_deg,
			mode, state, lock_level, source, opportunity_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WorkspaceID, a.PlanID, a.SatelliteID, a.TargetID,
		a.StartTime, a.EndTime, a.RollAngleDeg, a.PitchAngleDeg,
		a.Mode, a.State, a.LockLevel, a.Source, a.OpportunityID,
	)
	if err != nil {
		return Acquisition{}, coreerr.Persistence("create acquisition", err)
	}
	return s.GetAcquisition(a.ID)
}

func scanAcquisition(row interface {
	Scan(dest ...any) error
}) (Acquisition, error) {
	var a Acquisition
	err := row.Scan(
		&a.ID, &a.WorkspaceID, &a.PlanID, &a.SatelliteID, &a.TargetID,
		&a.StartTime, &a.EndTime, &a.RollAngleDeg, &a.PitchAngleDeg,
		&a.Mode, &a.State, &a.LockLevel, &a.Source, &a.OpportunityID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const acquisitionColumns = `
	id, workspace_id, plan_id, satellite_id, target_id,
	start_time, end_time, roll_angle_deg, pitch_angle_deg,
	mode, state, lock_level, source, opportunity_id,
	created_at, updated_at`

// GetAcquisition fetches an acquisition by id.
func (s *Store) GetAcquisition(id string) (Acquisition, error) {
	row := s.db.QueryRow(`SELECT `+acquisitionColumns+` FROM acquisitions WHERE id = ?`, id)
	a, err := scanAcquisition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Acquisition{}, coreerr.NotFound("acquisition", id)
	}
	if err != nil {
		return Acquisition{}, coreerr.Persistence("get acquisition", err)
	}
	return a, nil
}

// ListAcquisitions returns every acquisition in a workspace, ordered by
// start_time — the conflict detector's required iteration order.
func (s *Store) ListAcquisitions(workspaceID string) ([]Acquisition, error) {
	rows, err := s.db.Query(`SELECT `+acquisitionColumns+` FROM acquisitions WHERE workspace_id = ? ORDER BY start_time ASC`, workspaceID)
	if err != nil {
		return nil, coreerr.Persistence("list acquisitions", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		a, err := scanAcquisition(rows)
		if err != nil {
			return nil, coreerr.Persistence("scan acquisition", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAcquisitionsBySatellite returns a satellite's acquisitions within a
// workspace, ordered by start_time, restricted to a time window when
// start/end are non-zero.
func (s *Store) ListAcquisitionsBySatellite(workspaceID, satelliteID string, start, end time.Time) ([]Acquisition, error) {
	query := `SELECT ` + acquisitionColumns + ` FROM acquisitions WHERE workspace_id = ? AND satellite_id = ?`
	args := []any{workspaceID, satelliteID}
	if !start.IsZero() {
		query += ` AND end_time >= ?`
		args = append(args, start)
	}
	if !end.IsZero() {
		query += ` AND start_time <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, coreerr.Persistence("list acquisitions by satellite", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		a, err := scanAcquisition(rows)
		if err != nil {
			return nil, coreerr.Persistence("scan acquisition", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAcquisitionState transitions an acquisition's state and, when
// dropping it, clears its lock level — the repair/commit "soft-delete"
// pattern.
func (s *Store) UpdateAcquisitionState(id, state, lockLevel string) error {
	res, err := s.db.Exec(`
		UPDATE acquisitions SET state = ?, lock_level = ?, updated_at = datetime('now')
		WHERE id = ?`, state, lockLevel, id)
	if err != nil {
		return coreerr.Persistence("update acquisition state", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coreerr.NotFound("acquisition", id)
	}
	return nil
}

// DeleteAcquisition hard-deletes an acquisition row (distinct from the
// soft-delete UpdateAcquisitionState performs during repair).
func (s *Store) DeleteAcquisition(id string) error {
	res, err := s.db.Exec(`DELETE FROM acquisitions WHERE id = ?`, id)
	if err != nil {
		return coreerr.Persistence("delete acquisition", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coreerr.NotFound("acquisition", id)
	}
	return nil
}
