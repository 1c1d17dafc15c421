// Package configresolver validates mission input against platform truth:
// satellite bus limits, SAR mode envelopes, time windows, and the
// admin-only parameter governance rule. A single exported entry point
// returns a result struct rather than raising.
package configresolver

import (
	"fmt"
	"time"

	"github.com/spacereach/tasking-core/internal/coreerr"
	"github.com/spacereach/tasking-core/internal/platformconfig"
)

// ImagingType selects which input block MissionInput carries.
type ImagingType string

const (
	ImagingOptical ImagingType = "optical"
	ImagingSAR     ImagingType = "sar"
)

// SARInput is the sar block of a mission input document.
type SARInput struct {
	ImagingMode     string
	IncidenceMinDeg *float64
	IncidenceMaxDeg *float64
}

// MissionInput is the untrusted request payload Resolve validates. Only
// the fields relevant to governance/bounds checks are modeled; the
// caller carries the rest of the scheduling request separately.
type MissionInput struct {
	ImagingType      ImagingType
	PointingAngleDeg *float64
	SAR              *SARInput
	StartTime        time.Time
	EndTime          time.Time
	SatelliteIDs     []string

	// AllowBusOverride authorizes setting admin-only fields directly; see
	// platformconfig.AdminOnlyParams. OverrideFields holds any admin-only
	// field names the caller attempted to set, for the governance check.
	AllowBusOverride bool
	OverrideFields   map[string]struct{}
}

// Result mirrors ValidationResult from the python original: a flat
// errors/warnings list plus any value that was clamped into range rather
// than rejected outright.
type Result struct {
	Valid         bool
	Errors        []coreerr.Violation
	Warnings      []coreerr.Violation
	ClampedValues map[string]float64
}

const maxWindow = 30 * 24 * time.Hour

// Resolve validates input against doc and returns a Result. clampOnWarning
// selects the governance mode: true clamps out-of-bounds values with
// a warning, false rejects them as an error. Resolve has no error return:
// every problem found in the input comes back in Result.Errors or
// Result.Warnings.
func Resolve(doc *platformconfig.Document, input MissionInput, clampOnWarning bool) *Result {
	res := &Result{ClampedValues: map[string]float64{}}

	if input.ImagingType == ImagingSAR {
		validateSAR(doc, input, res, clampOnWarning)
	} else {
		validateOptical(doc, input, res, clampOnWarning)
	}

	validateTimeWindow(input, res)
	checkBusLimitOverrides(input, res)

	res.Valid = len(res.Errors) == 0
	return res
}

func validateSAR(doc *platformconfig.Document, input MissionInput, res *Result, clampOnWarning bool) {
	if input.SAR == nil {
		return
	}
	mode, ok := doc.SARModeByName(input.SAR.ImagingMode)
	if !ok {
		names := make([]string, 0, len(doc.SARModes.Modes))
		for n := range doc.SARModes.Modes {
			names = append(names, n)
		}
		res.Errors = append(res.Errors, coreerr.Violation{
			Field: "sar.imaging_mode",
			Severity: "error",
			Message: fmt.Sprintf("unsupported SAR mode %q, valid modes: %v", input.SAR.ImagingMode, names),
		})
		return
	}

	env := mode.IncidenceAngle

	if input.SAR.IncidenceMinDeg != nil {
		v := *input.SAR.IncidenceMinDeg
		switch {
		case v < env.AbsoluteMin:
			if clampOnWarning {
				res.Warnings = append(res.Warnings, coreerr.Violation{
					Field: "sar.incidence_min_deg",
					Severity: "warning",
					Message: fmt.Sprintf("incidence min %.2f° below mode absolute min %.2f°, clamped", v, env.AbsoluteMin),
					SuggestedValue: env.AbsoluteMin,
				})
				res.ClampedValues["sar.incidence_min_deg"] = env.AbsoluteMin
			} else {
				res.Errors = append(res.Errors, coreerr.Violation{
					Field: "sar.incidence_min_deg",
					Severity: "error",
					Message: fmt.Sprintf("incidence min %.2f° below mode absolute min %.2f°", v, env.AbsoluteMin),
				})
			}
		case v < env.RecommendedMin:
			res.Warnings = append(res.Warnings, coreerr.Violation{
				Field: "sar.incidence_min_deg",
				Severity: "warning",
				Message: fmt.Sprintf("incidence min %.2f° below recommended min %.2f°, quality may be degraded", v, env.RecommendedMin),
			})
		}
	}

	if input.SAR.IncidenceMaxDeg != nil {
		v := *input.SAR.IncidenceMaxDeg
		switch {
		case v > env.AbsoluteMax:
			if clampOnWarning {
				res.Warnings = append(res.Warnings, coreerr.Violation{
					Field: "sar.incidence_max_deg",
					Severity: "warning",
					Message: fmt.Sprintf("incidence max %.2f° above mode absolute max %.2f°, clamped", v, env.AbsoluteMax),
					SuggestedValue: env.AbsoluteMax,
				})
				res.ClampedValues["sar.incidence_max_deg"] = env.AbsoluteMax
			} else {
				res.Errors = append(res.Errors, coreerr.Violation{
					Field: "sar.incidence_max_deg",
					Severity: "error",
					Message: fmt.Sprintf("incidence max %.2f° above mode absolute max %.2f°", v, env.AbsoluteMax),
				})
			}
		case v > env.RecommendedMax:
			res.Warnings = append(res.Warnings, coreerr.Violation{
				Field: "sar.incidence_max_deg",
				Severity: "warning",
				Message: fmt.Sprintf("incidence max %.2f° above recommended max %.2f°, quality may be degraded", v, env.RecommendedMax),
			})
		}
	}

	if input.SAR.IncidenceMinDeg != nil && input.SAR.IncidenceMaxDeg != nil {
		actualMin := *input.SAR.IncidenceMinDeg
		if c, ok := res.ClampedValues["sar.incidence_min_deg"]; ok {
			actualMin = c
		}
		actualMax := *input.SAR.IncidenceMaxDeg
		if c, ok := res.ClampedValues["sar.incidence_max_deg"]; ok {
			actualMax = c
		}
		if actualMin >= actualMax {
			res.Errors = append(res.Errors, coreerr.Violation{
				Field: "sar.incidence_range",
				Severity: "error",
				Message: fmt.Sprintf("incidence min (%.2f°) must be less than max (%.2f°)", actualMin, actualMax),
			})
		}
	}

	for _, satID := range input.SatelliteIDs {
		sat, ok := doc.SatelliteByID(satID)
		if ok && sat.Modality != platformconfig.ModalitySAR {
			res.Warnings = append(res.Warnings, coreerr.Violation{
				Field: "satellites",
				Severity: "warning",
				Message: fmt.Sprintf("satellite %q is not a SAR satellite, SAR parameters will be ignored", satID),
			})
		}
	}
}

func validateOptical(doc *platformconfig.Document, input MissionInput, res *Result, clampOnWarning bool) {
	if input.PointingAngleDeg == nil {
		return
	}
	pointing := *input.PointingAngleDeg

	for _, satID := range input.SatelliteIDs {
		sat, ok := doc.SatelliteByID(satID)
		if !ok {
			continue
		}
		maxRoll := sat.Bus.MaxRollDeg
		if maxRoll == 0 {
			maxRoll = 45
		}
		if pointing <= maxRoll {
			continue
		}
		if clampOnWarning {
			res.Warnings = append(res.Warnings, coreerr.Violation{
				Field: "pointingAngle",
				Severity: "warning",
				Message: fmt.Sprintf("pointing angle %.2f° exceeds satellite %q max roll %.2f°, clamped", pointing, satID, maxRoll),
				SuggestedValue: maxRoll,
			})
			if existing, ok := res.ClampedValues["pointingAngle"]; !ok || maxRoll < existing {
				res.ClampedValues["pointingAngle"] = maxRoll
			}
		} else {
			res.Errors = append(res.Errors, coreerr.Violation{
				Field: "pointingAngle",
				Severity: "error",
				Message: fmt.Sprintf("pointing angle %.2f° exceeds satellite %q max roll %.2f°", pointing, satID, maxRoll),
			})
		}
	}
}

func validateTimeWindow(input MissionInput, res *Result) {
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		res.Errors = append(res.Errors, coreerr.Violation{
			Field: "timeWindow",
			Severity: "error",
			Message: "start time and end time are required",
		})
		return
	}
	if !input.EndTime.After(input.StartTime) {
		res.Errors = append(res.Errors, coreerr.Violation{
			Field: "endTime",
			Severity: "error",
			Message: "end time must be after start time",
		})
	}
	if input.EndTime.Sub(input.StartTime) > maxWindow {
		res.Errors = append(res.Errors, coreerr.Violation{
			Field: "timeWindow",
			Severity: "error",
			Message: "time window cannot exceed 30 days",
		})
	}
}

func checkBusLimitOverrides(input MissionInput, res *Result) {
	for field := range input.OverrideFields {
		if !platformconfig.IsAdminOnly(field) {
			continue
		}
		if input.AllowBusOverride {
			continue
		}
		res.Errors = append(res.Errors, coreerr.Violation{
			Field: field,
			Severity: "error",
			Message: fmt.Sprintf("direct override of %q is not allowed; managed in admin config, set allow_bus_override=true to force", field),
		})
	}
}
