package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// ValidationScenario is a declarative scenario document for the Validation
// Harness, stored as an opaque YAML/JSON blob so the
// harness package owns its own document shape.
type ValidationScenario struct {
	ID        string
	Name      string
	Document  string // YAML or JSON, interpreted by internal/harness
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateScenario inserts a scenario, assigning a fresh id.
func (s *Store) CreateScenario(sc ValidationScenario) (ValidationScenario, error) {
	sc.ID = uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO validation_scenarios (id, name, document) VALUES (?, ?, ?)`,
		sc.ID, sc.Name, sc.Document)
	if err != nil {
		return ValidationScenario{}, coreerr.Persistence("create scenario", err)
	}
	return s.GetScenario(sc.ID)
}

// GetScenario fetches a scenario by id.
func (s *Store) GetScenario(id string) (ValidationScenario, error) {
	row := s.db.QueryRow(`SELECT id, name, document, created_at, updated_at FROM validation_scenarios WHERE id = ?`, id)
	var sc ValidationScenario
	err := row.Scan(&sc.ID, &sc.Name, &sc.Document, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ValidationScenario{}, coreerr.NotFound("scenario", id)
	}
	if err != nil {
		return ValidationScenario{}, coreerr.Persistence("get scenario", err)
	}
	return sc, nil
}

// ListScenarios returns every stored scenario, newest first.
func (s *Store) ListScenarios() ([]ValidationScenario, error) {
	rows, err := s.db.Query(`SELECT id, name, document, created_at, updated_at FROM validation_scenarios ORDER BY created_at DESC`)
	if err != nil {
		return nil, coreerr.Persistence("list scenarios", err)
	}
	defer rows.Close()

	var out []ValidationScenario
	for rows.Next() {
		var sc ValidationScenario
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Document, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, coreerr.Persistence("scan scenario", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ValidationReport is the persisted result of running a scenario:
// report_hash is the SHA-256 over a canonicalized, timestamp-free
// projection computed by internal/harness; this store only persists it.
type ValidationReport struct {
	ID         string
	ScenarioID string
	ConfigHash string
	Pass       bool
	ReportHash string
	Document   string // full structured report, JSON
	CreatedAt  time.Time
}

// CreateReport inserts a validation report, assigning a fresh id.
func (s *Store) CreateReport(r ValidationReport) (ValidationReport, error) {
	r.ID = uuid.NewString()
	passInt := 0
	if r.Pass {
		passInt = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO validation_reports (id, scenario_id, config_hash, pass, report_hash, document)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ScenarioID, r.ConfigHash, passInt, r.ReportHash, r.Document,
	)
	if err != nil {
		return ValidationReport{}, coreerr.Persistence("create report", err)
	}
	return s.GetReport(r.ID)
}

// GetReport fetches a validation report by id.
func (s *Store) GetReport(id string) (ValidationReport, error) {
	row := s.db.QueryRow(`SELECT id, scenario_id, config_hash, pass, report_hash, document, created_at FROM validation_reports WHERE id = ?`, id)
	var r ValidationReport
	var passInt int
	err := row.Scan(&r.ID, &r.ScenarioID, &r.ConfigHash, &passInt, &r.ReportHash, &r.Document, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ValidationReport{}, coreerr.NotFound("report", id)
	}
	if err != nil {
		return ValidationReport{}, coreerr.Persistence("get report", err)
	}
	r.Pass = passInt != 0
	return r, nil
}

// ListReports returns a scenario's reports, newest first.
func (s *Store) ListReports(scenarioID string) ([]ValidationReport, error) {
	rows, err := s.db.Query(`
		SELECT id, scenario_id, config_hash, pass, report_hash, document, created_at
		FROM validation_reports WHERE scenario_id = ? ORDER BY created_at DESC`, scenarioID)
	if err != nil {
		return nil, coreerr.Persistence("list reports", err)
	}
	defer rows.Close()

	var out []ValidationReport
	for rows.Next() {
		var r ValidationReport
		var passInt int
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.ConfigHash, &passInt, &r.ReportHash, &r.Document, &r.CreatedAt); err != nil {
			return nil, coreerr.Persistence("scan report", err)
		}
		r.Pass = passInt != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
