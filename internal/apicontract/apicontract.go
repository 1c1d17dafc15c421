// Package apicontract gives the (out of scope) HTTP router the two things
// it needs from the core: a status-code mapping for the coreerr taxonomy
// and the stable response envelope from spec §6. It uses net/http only for
// its status-code constants and builds no server or router — routing
// itself is a Non-goal.
package apicontract

import (
	"net/http"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// Envelope is the stable JSON response shape every HTTP endpoint returns.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  []any  `json:"errors,omitempty"`
}

// OK builds a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds a failure envelope from a core error, surfacing any
// violations it carries as the Errors list.
func Fail(err error) Envelope {
	env := Envelope{Success: false, Message: err.Error()}
	var ce *coreerr.CoreError
	if coreerr.As(err, &ce) {
		env.Message = ce.Message
		for _, v := range ce.Violations {
			env.Errors = append(env.Errors, v)
		}
	}
	return env
}

// StatusFor maps the coreerr taxonomy to the HTTP status codes fixed by
// spec §6/§7. Unrecognized errors (not a *CoreError) map to 500, since any
// error escaping the taxonomy is by definition unexpected.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ce *coreerr.CoreError
	if !coreerr.As(err, &ce) {
		return http.StatusInternalServerError
	}
	switch ce.Code {
	case coreerr.CodeValidation, coreerr.CodeGovernance:
		return http.StatusBadRequest
	case coreerr.CodeNotFound:
		return http.StatusNotFound
	case coreerr.CodeConflictState:
		return http.StatusConflict
	case coreerr.CodeEphemeris, coreerr.CodePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
