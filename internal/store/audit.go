package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// CommitAuditRow is an immutable record of one commit operation.
type CommitAuditRow struct {
	ID                  string
	PlanID              string
	CommitType          string // "normal" | "repair"
	ConfigHash          string
	AcquisitionsCreated int
	AcquisitionsDropped int
	RepairDiff          *string // JSON
	ScoreBefore         *float64
	ScoreAfter          *float64
	ConflictsBefore     *int
	ConflictsAfter      *int
	CreatedAt           time.Time
	Notes               *string
}

// insertAuditRow writes one commit_audit_log row inside the caller's
// transaction. Within a workspace, the commit log must have a strictly
// increasing created_at — relying on SQLite's datetime('now')
// monotonicity plus the single-writer (SetMaxOpenConns(1)) serialization.
func insertAuditRow(tx execer, row CommitAuditRow) (CommitAuditRow, error) {
	row.ID = uuid.NewString()
	_, err := tx.Exec(`
		INSERT INTO commit_audit_log (
			id, plan_id, commit_type, config_hash,
			acquisitions_created, acquisitions_dropped, repair_diff,
			score_before, score_after, conflicts_before, conflicts_after, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.PlanID, row.CommitType, row.ConfigHash,
		row.AcquisitionsCreated, row.AcquisitionsDropped, row.RepairDiff,
		row.ScoreBefore, row.ScoreAfter, row.ConflictsBefore, row.ConflictsAfter, row.Notes,
	)
	if err != nil {
		return CommitAuditRow{}, coreerr.Persistence("insert commit audit row", err)
	}
	return row, nil
}

// ListAuditRows returns a plan's audit rows ordered by created_at
// ascending.
func (s *Store) ListAuditRows(planID string) ([]CommitAuditRow, error) {
	rows, err := s.db.Query(`
		SELECT id, plan_id, commit_type, config_hash,
			acquisitions_created, acquisitions_dropped, repair_diff,
			score_before, score_after, conflicts_before, conflicts_after,
			created_at, notes
		FROM commit_audit_log WHERE plan_id = ? ORDER BY created_at ASC`, planID)
	if err != nil {
		return nil, coreerr.Persistence("list audit rows", err)
	}
	defer rows.Close()

	var out []CommitAuditRow
	for rows.Next() {
		var r CommitAuditRow
		if err := rows.Scan(
			&r.ID, &r.PlanID, &r.CommitType, &r.ConfigHash,
			&r.AcquisitionsCreated, &r.AcquisitionsDropped, &r.RepairDiff,
			&r.ScoreBefore, &r.ScoreAfter, &r.ConflictsBefore, &r.ConflictsAfter,
			&r.CreatedAt, &r.Notes,
		); err != nil {
			return nil, coreerr.Persistence("scan audit row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
