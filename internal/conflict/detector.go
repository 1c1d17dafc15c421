// Package conflict scans a workspace's committed acquisitions for
// temporal overlaps and slew infeasibilities on the same satellite,
// emitting severity-graded findings. Detection is pure and
// side-effect-free; a thin persistence wrapper around
// internal/store turns findings into rows.
package conflict

import (
	"fmt"
	"sort"
	"time"

	"github.com/spacereach/tasking-core/internal/feasibility"
	"github.com/spacereach/tasking-core/internal/store"
)

// errorDeficitS and warningDeficitS are the slew-infeasibility severity
// thresholds: deficit > errorDeficitS ⇒ error, >= warningDeficitS ⇒
// warning, else info .
const (
	errorDeficitS   = 10.0
	warningDeficitS = 5.0
)

// Finding is a detected conflict before it has been assigned an id and
// persisted; it mirrors store.Conflict minus the persistence-only fields.
type Finding struct {
	WorkspaceID    string
	Type           string // "temporal_overlap" | "slew_infeasible"
	Severity       string // "error" | "warning" | "info"
	Description    string
	AcquisitionIDs []string
	Details        map[string]any
}

// Request bundles the inputs Detect needs: an optional [Start,End] window
// and satellite id that Detect uses to filter the acquisitions it is given
// (zero values disable each filter); per-satellite slew limits; and the
// overlap threshold below which two adjacent
// acquisitions are tolerated as touching rather than conflicting.
type Request struct {
	WorkspaceID       string
	Start             time.Time
	End               time.Time
	SatelliteID       string // "" means all satellites
	Limits            map[string]feasibility.Limits
	OverlapThresholdS float64
}

// Detect scans acquisitions (already loaded, e.g. via
// store.ListAcquisitions) for temporal-overlap and slew-infeasibility
// findings. Only "committed"/"executing"/"complete" acquisitions are
// considered; "failed" (soft-deleted) rows never generate findings.
func Detect(acquisitions []store.Acquisition, req Request) []Finding {
	bySat := make(map[string][]store.Acquisition)
	for _, a := range acquisitions {
		if a.State == "failed" {
			continue
		}
		if req.SatelliteID != "" && a.SatelliteID != req.SatelliteID {
			continue
		}
		if !req.Start.IsZero() && a.EndTime.Before(req.Start) {
			continue
		}
		if !req.End.IsZero() && a.StartTime.After(req.End) {
			continue
		}
		bySat[a.SatelliteID] = append(bySat[a.SatelliteID], a)
	}

	satIDs := make([]string, 0, len(bySat))
	for id := range bySat {
		satIDs = append(satIDs, id)
	}
	sort.Strings(satIDs)

	var findings []Finding
	for _, satID := range satIDs {
		list := bySat[satID]
		sort.Slice(list, func(i, j int) bool { return list[i].StartTime.Before(list[j].StartTime) })
		limits := req.Limits[satID]

		for i := 0; i+1 < len(list); i++ {
			a, b := list[i], list[i+1]
			findings = append(findings, detectPair(req.WorkspaceID, a, b, limits, req.OverlapThresholdS)...)
		}
	}
	return findings
}

// detectPair checks one adjacent pair on the same satellite for overlap
// and, absent overlap, for slew infeasibility.
func detectPair(workspaceID string, a, b store.Acquisition, limits feasibility.Limits, overlapThresholdS float64) []Finding {
	var out []Finding

	overlapS := a.EndTime.Sub(b.StartTime).Seconds()
	if overlapS > overlapThresholdS {
		out = append(out, Finding{
			WorkspaceID:    workspaceID,
			Type:           "temporal_overlap",
			Severity:       "error",
			Description:    fmt.Sprintf("acquisitions %s and %s overlap by %.1fs on satellite %s", a.ID, b.ID, overlapS, a.SatelliteID),
			AcquisitionIDs: []string{a.ID, b.ID},
			Details:        map[string]any{"overlap_seconds": overlapS},
		})
		return out
	}

	available := b.StartTime.Sub(a.EndTime).Seconds()
	if available <= 0 {
		return out
	}

	required := feasibility.ManeuverTime(b.RollAngleDeg-a.RollAngleDeg, b.PitchAngleDeg-a.PitchAngleDeg, limits)
	deficit := required - available
	if deficit <= 0 {
		return out
	}

	severity := "info"
	switch {
	case deficit > errorDeficitS:
		severity = "error"
	case deficit >= warningDeficitS:
		severity = "warning"
	}

	out = append(out, Finding{
		WorkspaceID:    workspaceID,
		Type:           "slew_infeasible",
		Severity:       severity,
		Description:    fmt.Sprintf("acquisitions %s and %s require %.2fs slew but only %.2fs is available on satellite %s", a.ID, b.ID, required, available, a.SatelliteID),
		AcquisitionIDs: []string{a.ID, b.ID},
		Details:        map[string]any{"required_seconds": required, "available_seconds": available, "deficit_seconds": deficit},
	})
	return out
}
