package conflict

import (
	"log/slog"

	"github.com/spacereach/tasking-core/internal/store"
)

// Persist implements persist(conflicts): optionally clears previous
// unresolved conflicts for the workspace, then inserts the given findings.
// Insertion order follows findings order, which Detect already produces
// deterministically (satellite id, then start_time).
func Persist(s *store.Store, workspaceID string, findings []Finding, clearPrevious bool) ([]store.Conflict, error) {
	log := slog.Default()

	if clearPrevious {
		if err := s.ClearUnresolvedConflicts(workspaceID); err != nil {
			log.Error("conflict: clear previous unresolved conflicts failed", "workspace_id", workspaceID, "error", err)
			return nil, err
		}
	}

	out := make([]store.Conflict, 0, len(findings))
	for _, f := range findings {
		c, err := s.CreateConflict(store.Conflict{
			WorkspaceID:    f.WorkspaceID,
			Type:           f.Type,
			Severity:       f.Severity,
			Description:    f.Description,
			AcquisitionIDs: f.AcquisitionIDs,
			Details:        f.Details,
		})
		if err != nil {
			log.Error("conflict: persist finding failed", "workspace_id", workspaceID, "type", f.Type, "error", err)
			return nil, err
		}
		out = append(out, c)
	}

	if len(out) > 0 {
		log.Info("conflict: persisted findings", "workspace_id", workspaceID, "count", len(out), "cleared_previous", clearPrevious)
	}
	return out, nil
}

// CheckCommitConflicts implements check_commit_conflicts(workspace,
// acquisition_ids): a guardrail run before committing, returning any
// already-persisted, unresolved error-severity conflicts that reference
// one of the given acquisition ids.
func CheckCommitConflicts(s *store.Store, workspaceID string, acquisitionIDs []string) ([]store.Conflict, error) {
	return s.ListUnresolvedErrorConflicts(workspaceID, acquisitionIDs)
}
