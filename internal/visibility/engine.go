// Package visibility derives adaptive coarse-to-fine pass windows per
// (satellite, target), run across a worker pool for embarrassingly
// parallel horizon sweeps.
//
// Uses a context-cancellable errgroup pool for bounded concurrent
// fan-out across satellite/target pairs.
package visibility

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacereach/tasking-core/internal/orbit"
)

const (
	coarseStep     = 30 * time.Second
	fineTolerance = 1 * time.Second
)

// PassWindow is one visibility pass for a (satellite, target) pair.
type PassWindow struct {
	SatelliteID       string
	TargetID          string
	Start             time.Time
	End               time.Time
	MaxElevationTime  time.Time
	MaxElevationDeg   float64
	StartAzDeg        float64
	MaxElevationAzDeg float64
	EndAzDeg          float64
	IncidenceAngleDeg float64

	// SatECEF/VelECEF/TargetECEF at MaxElevationTime, carried for the SAR
	// geometry layer to avoid re-propagating.
	SatECEF    orbit.Vec3
	VelECEF    orbit.Vec3
	TargetECEF orbit.Vec3
}

// Target is the minimal geometry the engine needs; callers build one from
// their own target records.
type Target struct {
	ID     string
	LatDeg float64
	LonDeg float64
}

// Task is one (satellite, target) unit of work for a horizon sweep.
type Task struct {
	Satellite *orbit.Satellite
	Target    Target
}

// ProgressFunc is invoked from any worker goroutine as tasks complete;
// implementations must be idempotent and non-blocking.
type ProgressFunc func(completed, total int)

// Sweep runs the adaptive coarse-to-fine visibility algorithm for every
// task in tasks over [start, end], using a pool of min(workers, len(tasks))
// goroutines. Cancellation via ctx returns whatever windows had completed,
// with ok=false signaling a partial/cancelled result.
func Sweep(ctx context.Context, tasks []Task, start, end time.Time, elevationMaskDeg float64, workers int, progress ProgressFunc) (map[string][]PassWindow, bool) {
	results := make([]struct {
		key string
		windows []PassWindow
	}, len(tasks))

	if workers <= 0 || workers > len(tasks) {
		workers = len(tasks)
	}
	if workers == 0 {
		return map[string][]PassWindow{}, true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var completed int32
	total := len(tasks)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			windows := sweepOne(gctx, task, start, end, elevationMaskDeg)
			results[i] = struct {
				key string
				windows []PassWindow
			}{key: task.Satellite.ID + "|" + task.Target.ID, windows: windows}
			completed++
			if progress != nil {
				progress(int(completed), total)
			}
			return gctx.Err()
		})
	}

	err := g.Wait()
	out := make(map[string][]PassWindow, len(tasks))
	for _, r := range results {
		if r.key == "" {
			continue
		}
		out[r.key] = r.windows
	}
	return out, err == nil
}

// sweepOne runs the coarse-to-fine elevation sweep for a single
// (satellite, target) pair. It never returns an error: an unreachable
// target simply yields an empty slice (Failure clause).
func sweepOne(ctx context.Context, task Task, start, end time.Time, elevationMaskDeg float64) []PassWindow {
	var windows []PassWindow

	elevAt := func(t time.Time) (float64, float64, bool) {
		sv, err := orbit.StateAt(task.Satellite, t)
		if err != nil {
			return 0, 0, false
		}
		el, az := elevationAzimuth(sv.ECEF, task.Target)
		return el, az, true
	}

	open := false
	var passStart time.Time
	var prevT time.Time
	var prevEl float64
	var prevOK bool

	for t := start; !t.After(end); t = t.Add(coarseStep) {
		if ctx.Err() != nil {
			return windows
		}
		el, _, ok := elevAt(t)
		if !ok {
			prevOK = false
			continue
		}
		if prevOK {
			crossedUp := prevEl < elevationMaskDeg && el >= elevationMaskDeg
			crossedDown := prevEl >= elevationMaskDeg && el < elevationMaskDeg

			if crossedUp && !open {
				passStart = refineCrossing(prevT, t, elevationMaskDeg, elevAt, true)
				open = true
			}
			if crossedDown && open {
				passEnd := refineCrossing(prevT, t, elevationMaskDeg, elevAt, false)
				pw := buildPassWindow(task, passStart, passEnd, elevAt)
				windows = append(windows, pw)
				open = false
			}
		}
		prevT, prevEl, prevOK = t, el, ok
	}

	if open {
		pw := buildPassWindow(task, passStart, end, elevAt)
		windows = append(windows, pw)
	}

	return windows
}

// refineCrossing bisects [a,b] to locate the mask crossing within
// fineTolerance, returning whichever endpoint corresponds to the crossing.
func refineCrossing(a, b time.Time, maskDeg float64, elevAt func(time.Time) (float64, float64, bool), risingEdge bool) time.Time {
	lo, hi := a, b
	for hi.Sub(lo) > fineTolerance {
		mid := lo.Add(hi.Sub(lo) / 2)
		el, _, ok := elevAt(mid)
		if !ok {
			return mid
		}
		above := el >= maskDeg
		if above == risingEdge {
			hi = mid
		} else {
			lo = mid
		}
	}
	if risingEdge {
		return hi
	}
	return lo
}

// buildPassWindow finds the max-elevation sample within [start,end] via a
// finer bisection-free scan (the window is short enough that a linear scan
// at fineTolerance resolution is cheap) and assembles the full PassWindow.
func buildPassWindow(task Task, start, end time.Time, elevAt func(time.Time) (float64, float64, bool)) PassWindow {
	pw := PassWindow{
		SatelliteID: task.Satellite.ID,
		TargetID: task.Target.ID,
		Start: start,
		End: end,
	}

	startEl, startAz, _ := elevAt(start)
	endEl, endAz, _ := elevAt(end)
	_ = startEl
	_ = endEl
	pw.StartAzDeg = startAz
	pw.EndAzDeg = endAz

	maxEl := math.Inf(-1)
	var maxT time.Time
	var maxAz float64
	span := end.Sub(start)
	if span <= 0 {
		span = fineTolerance
	}
	steps := int(span / fineTolerance)
	if steps < 1 {
		steps = 1
	}
	if steps > 1000 {
		steps = 1000
	}
	for i := 0; i <= steps; i++ {
		t := start.Add(span * time.Duration(i) / time.Duration(steps))
		el, az, ok := elevAt(t)
		if !ok {
			continue
		}
		if el > maxEl {
			maxEl, maxT, maxAz = el, t, az
		}
	}
	pw.MaxElevationTime = maxT
	pw.MaxElevationDeg = maxEl
	pw.MaxElevationAzDeg = maxAz

	sv, err := orbit.StateAt(task.Satellite, maxT)
	if err == nil {
		pw.SatECEF = sv.ECEF
		targetECEF := geodeticToECEF(task.Target.LatDeg, task.Target.LonDeg)
		pw.TargetECEF = targetECEF
		velECEF, vErr := orbit.Velocity(task.Satellite, maxT)
		if vErr == nil {
			pw.VelECEF = velECEF
		}
		pw.IncidenceAngleDeg = incidenceAngle(sv.ECEF, targetECEF)
	}

	return pw
}

// SortWindows orders a target's windows by start time, as the scheduler
// and repair planner require.
func SortWindows(ws []PassWindow) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })
}
