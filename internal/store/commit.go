package store

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// CommitPlanItem is one item from the plan being committed; it carries the
// fields CreateAcquisition needs directly so the commit transaction never
// has to re-query plan_items mid-flight.
type CommitPlanItem struct {
	OpportunityID string
	SatelliteID   string
	TargetID      string
	Item          PlanItem
	Mode          string
}

// CommitRequest bundles everything the single commit transaction needs
//: "(a) verifies the plan is not already committed; (b) creates
// acquisitions for each plan item; (c) marks each drop_acquisition_ids as
// state=failed, lock_level=none; (d) stamps the plan with committed_at;
// (e) writes one commit_audit_log row."
type CommitRequest struct {
	PlanID             string
	WorkspaceID        string
	CommitType         string // "normal" | "repair"
	ConfigHash         string
	Items              []CommitPlanItem
	DropAcquisitionIDs []string
	RepairDiff         *string
	ScoreBefore        *float64
	ScoreAfter         *float64
	ConflictsBefore    *int
	ConflictsAfter     *int
	Notes              *string
}

// CommitResult summarizes what the transaction did, for the caller to
// relay back as the commit response.
type CommitResult struct {
	Acquisitions []Acquisition
	Audit        CommitAuditRow
}

// CommitPlan runs the commit operation as a single transaction. On any
// failure the transaction aborts and no rows become visible — callers never
// observe a partially-committed plan.
func (s *Store) CommitPlan(req CommitRequest) (CommitResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("store: commit: begin transaction failed", "plan_id", req.PlanID, "error", err)
		return CommitResult{}, coreerr.Persistence("begin commit", err)
	}
	defer tx.Rollback()

	if err := markPlanCommitted(tx, req.PlanID); err != nil {
		s.log.Warn("store: commit: plan already committed or missing", "plan_id", req.PlanID, "error", err)
		return CommitResult{}, err
	}

	created := make([]Acquisition, 0, len(req.Items))
	for _, ci := range req.Items {
		planID := req.PlanID
		oppID := ci.OpportunityID
		a := Acquisition{
			WorkspaceID: req.WorkspaceID,
			PlanID: &planID,
			SatelliteID: ci.SatelliteID,
			TargetID: ci.TargetID,
			StartTime: ci.Item.StartTime,
			EndTime: ci.Item.EndTime,
			RollAngleDeg: ci.Item.RollAngleDeg,
			PitchAngleDeg: ci.Item.PitchAngleDeg,
			Mode: ci.Mode,
			State: "committed",
			LockLevel: "none",
			Source: req.CommitType,
			OpportunityID: &oppID,
		}
		out, err := createAcquisitionTx(tx, a)
		if err != nil {
			s.log.Error("store: commit: create acquisition failed", "plan_id", req.PlanID, "opportunity_id", ci.OpportunityID, "error", err)
			return CommitResult{}, err
		}
		created = append(created, out)
	}

	for _, id := range req.DropAcquisitionIDs {
		if err := updateAcquisitionStateTx(tx, id, "failed", "none"); err != nil {
			s.log.Error("store: commit: drop acquisition failed", "plan_id", req.PlanID, "acquisition_id", id, "error", err)
			return CommitResult{}, err
		}
	}

	audit, err := insertAuditRow(tx, CommitAuditRow{
		PlanID: req.PlanID,
		CommitType: req.CommitType,
		ConfigHash: req.ConfigHash,
		AcquisitionsCreated: len(created),
		AcquisitionsDropped: len(req.DropAcquisitionIDs),
		RepairDiff: req.RepairDiff,
		ScoreBefore: req.ScoreBefore,
		ScoreAfter: req.ScoreAfter,
		ConflictsBefore: req.ConflictsBefore,
		ConflictsAfter: req.ConflictsAfter,
		Notes: req.Notes,
	})
	if err != nil {
		s.log.Error("store: commit: write audit row failed", "plan_id", req.PlanID, "error", err)
		return CommitResult{}, err
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("store: commit: final transaction commit failed", "plan_id", req.PlanID, "error", err)
		return CommitResult{}, coreerr.Persistence("commit transaction", err)
	}

	s.log.Info("store: commit: plan committed", "plan_id", req.PlanID, "commit_type", req.CommitType,
		"acquisitions_created", len(created), "acquisitions_dropped", len(req.DropAcquisitionIDs))
	return CommitResult{Acquisitions: created, Audit: audit}, nil
}

func createAcquisitionTx(tx *sql.Tx, a Acquisition) (Acquisition, error) {
	a.ID = uuid.NewString()
	_, err := tx.Exec(`
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
		return Acquisition{}, coreerr.Persistence("insert acquisition in commit", err)
	}

	row := tx.QueryRow(`SELECT `+acquisitionColumns+` FROM acquisitions WHERE id = ?`, a.ID)
	out, err := scanAcquisition(row)
	if err != nil {
		return Acquisition{}, coreerr.Persistence("reread committed acquisition", err)
	}
	return out, nil
}

func updateAcquisitionStateTx(tx *sql.Tx, id, state, lockLevel string) error {
	_, err := tx.Exec(`
		UPDATE acquisitions SET state = ?, lock_level = ?, updated_at = datetime('now')
		WHERE id = ?`, state, lockLevel, id)
	if err != nil {
		return coreerr.Persistence("drop acquisition in commit", err)
	}
	return nil
}
