package harness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/spacereach/tasking-core/internal/scheduler"
)

// computeReportHash derives report_hash: a 16-hex-character SHA-256
// prefix over a normalized, timestamp-free projection of the report —
// mirrors platformconfig.ComputeHash's "sort every collection by its
// natural key, then fold into one buffer" approach so two runs of the
// same scenario against the same config hash identically regardless of
// map or slice iteration order.
func computeReportHash(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "scenario|%s|config|%s|pass|%v\n", r.ScenarioID, r.ConfigHash, r.Pass)

	passing := append([]string(nil), r.PassingInvariants...)
	failing := append([]string(nil), r.FailingInvariants...)
	sort.Strings(passing)
	sort.Strings(failing)
	fmt.Fprintf(&b, "passing|%s\n", strings.Join(passing, ","))
	fmt.Fprintf(&b, "failing|%s\n", strings.Join(failing, ","))

	m := r.Metrics
	fmt.Fprintf(&b, "metrics|%d|%d|%.6f|%.6f|%.6f|%d|%.6f|%.6f\n",
		m.Accepted, m.Rejected, m.TotalValue, m.MeanValue, m.MeanIncidence,
		m.OppsUsingPitch, m.MaxRollDeg, m.MaxPitchDeg)

	fmt.Fprintf(&b, "conflicts|%d|%d\n", r.ConflictsBeforeCommit, r.ConflictsAfterCommit)
	fmt.Fprintf(&b, "acquisitions|%d|%d\n", r.AcquisitionsCreated, r.AcquisitionsDropped)

	if r.RepairDiffCounts != nil {
		d := r.RepairDiffCounts
		fmt.Fprintf(&b, "repair|%d|%d|%d|%d\n", d.Kept, d.Dropped, d.Added, d.Moved)
	} else {
		fmt.Fprintf(&b, "repair|none\n")
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

func toReportMetrics(m scheduler.Metrics) ReportMetrics {
	return ReportMetrics{
		Accepted:       m.Accepted,
		Rejected:       m.Rejected,
		TotalValue:     m.TotalValue,
		MeanValue:      m.MeanValue,
		MeanIncidence:  m.MeanIncidence,
		OppsUsingPitch: m.OppsUsingPitch,
		MaxRollDeg:     m.MaxRollDeg,
		MaxPitchDeg:    m.MaxPitchDeg,
	}
}
