package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// Plan is a proposed schedule (Plan): immutable after commit, committable
// at most once.
type Plan struct {
	ID             string
	WorkspaceID    string
	Algorithm      string
	SchemaVersion  string
	ConfigSnapshot string // JSON
	InputHash      string
	Metrics        string // JSON
	CreatedAt      time.Time
	CommittedAt    *time.Time
}

// PlanItem is one scheduled slot belonging to a plan (Plan Item).
type PlanItem struct {
	ID            string
	PlanID        string
	OpportunityID string
	SatelliteID   string
	TargetID      string
	StartTime     time.Time
	EndTime       time.Time
	RollAngleDeg  float64
	PitchAngleDeg float64
	ManeuverTimeS float64
	SlackTimeS    float64
	Value         float64
}

// CreatePlan inserts a plan and its items inside one transaction.
func (s *Store) CreatePlan(p Plan, items []PlanItem) (Plan, error) {
	p.ID = uuid.NewString()
	if p.SchemaVersion == "" {
		p.SchemaVersion = ScheduleSchemaVersion
	}
	if p.ConfigSnapshot == "" {
		p.ConfigSnapshot = "{}"
	}
	if p.Metrics == "" {
		p.Metrics = "{}"
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("store: create plan: begin transaction failed", "workspace_id", p.WorkspaceID, "error", err)
		return Plan{}, coreerr.Persistence("begin create plan", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO plans (id, workspace_id, algorithm, schema_version, config_snapshot, input_hash, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.WorkspaceID, p.Algorithm, p.SchemaVersion, p.ConfigSnapshot, p.InputHash, p.Metrics,
	)
	if err != nil {
		return Plan{}, coreerr.Persistence("insert plan", err)
	}

	for _, it := range items {
		it.ID = uuid.NewString()
		it.PlanID = p.ID
		_, err = tx.Exec(`
			INSERT INTO plan_items (
				id, plan_id, opportunity_id, satellite_id, target_id,
				start_time, end_time, roll_angle_deg, pitch_angle_deg,
				maneuver_time_s, slack_time_s, value
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.PlanID, it.OpportunityID, it.SatelliteID, it.TargetID,
			it.StartTime, it.EndTime, it.RollAngleDeg, it.PitchAngleDeg,
			it.ManeuverTimeS, it.SlackTimeS, it.Value,
		)
		if err != nil {
			return Plan{}, coreerr.Persistence("insert plan item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("store: create plan: commit transaction failed", "plan_id", p.ID, "error", err)
		return Plan{}, coreerr.Persistence("commit create plan", err)
	}
	return s.GetPlan(p.ID)
}

const planColumns = `id, workspace_id, algorithm, schema_version, config_snapshot, input_hash, metrics, created_at, committed_at`

func scanPlan(row interface{ Scan(dest ...any) error }) (Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Algorithm, &p.SchemaVersion, &p.ConfigSnapshot, &p.InputHash, &p.Metrics, &p.CreatedAt, &p.CommittedAt)
	return p, err
}

// GetPlan fetches a plan by id.
func (s *Store) GetPlan(id string) (Plan, error) {
	row := s.db.QueryRow(`SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, coreerr.NotFound("plan", id)
	}
	if err != nil {
		return Plan{}, coreerr.Persistence("get plan", err)
	}
	return p, nil
}

// ListPlans returns every plan in a workspace, newest first.
func (s *Store) ListPlans(workspaceID string) ([]Plan, error) {
	rows, err := s.db.Query(`SELECT `+planColumns+` FROM plans WHERE workspace_id = ? ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, coreerr.Persistence("list plans", err)
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, coreerr.Persistence("scan plan", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPlanItems returns a plan's items ordered by start_time.
func (s *Store) ListPlanItems(planID string) ([]PlanItem, error) {
	rows, err := s.db.Query(`
		SELECT id, plan_id, opportunity_id, satellite_id, target_id,
			start_time, end_time, roll_angle_deg, pitch_angle_deg,
			maneuver_time_s, slack_time_s, value
		FROM plan_items WHERE plan_id = ? ORDER BY start_time ASC`, planID)
	if err != nil {
		return nil, coreerr.Persistence("list plan items", err)
	}
	defer rows.Close()

	var out []PlanItem
	for rows.Next() {
		var it PlanItem
		if err := rows.Scan(
			&it.ID, &it.PlanID, &it.OpportunityID, &it.SatelliteID, &it.TargetID,
			&it.StartTime, &it.EndTime, &it.RollAngleDeg, &it.PitchAngleDeg,
			&it.ManeuverTimeS, &it.SlackTimeS, &it.Value,
		); err != nil {
			return nil, coreerr.Persistence("scan plan item", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// markPlanCommitted stamps committed_at; callers must run this inside the
// same transaction as the rest of the commit operation.
func markPlanCommitted(tx *sql.Tx, planID string) error {
	res, err := tx.Exec(`UPDATE plans SET committed_at = datetime('now') WHERE id = ? AND committed_at IS NULL`, planID)
	if err != nil {
		return coreerr.Persistence("mark plan committed", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return coreerr.ErrAlreadyCommitted
	}
	return nil
}
