// Package store implements the transactional SQLite persistence layer:
// workspaces, orders, plans, plan items, acquisitions, conflicts, the
// commit audit log, and a second table group for validation scenarios
// and reports.
//
// Schema is a single const string, with an additive migrate() ladder
// checked via pragma_table_info, and short wrapped-error mutator
// methods.
package store

const (
	// WorkspaceSchemaVersion and ScheduleSchemaVersion are explicit
	// version strings inspectable by the validation harness.
	WorkspaceSchemaVersion = "1.0"
	ScheduleSchemaVersion  = "2.3"
)

const schema = `
CREATE TABLE IF NOT EXISTS workspaces (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	schema_version TEXT NOT NULL DEFAULT '1.0',
	mission_mode TEXT NOT NULL DEFAULT 'OPTICAL',
	window_start DATETIME,
	window_end DATETIME,
	target_count INTEGER NOT NULL DEFAULT 0,
	satellite_count INTEGER NOT NULL DEFAULT 0,
	acquisition_count INTEGER NOT NULL DEFAULT 0,
	scenario_config TEXT NOT NULL DEFAULT '{}',
	analysis_state TEXT NOT NULL DEFAULT '{}',
	planning_state TEXT NOT NULL DEFAULT '{}',
	orders_state TEXT NOT NULL DEFAULT '{}',
	ui_state TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS workspace_blobs (
	workspace_id TEXT PRIMARY KEY REFERENCES workspaces(id) ON DELETE CASCADE,
	czml_compressed BLOB,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	payload TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	algorithm TEXT NOT NULL,
	schema_version TEXT NOT NULL DEFAULT '2.3',
	config_snapshot TEXT NOT NULL DEFAULT '{}',
	input_hash TEXT NOT NULL DEFAULT '',
	metrics TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	committed_at DATETIME
);

CREATE TABLE IF NOT EXISTS plan_items (
	id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	opportunity_id TEXT NOT NULL,
	satellite_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	roll_angle_deg REAL NOT NULL DEFAULT 0,
	pitch_angle_deg REAL NOT NULL DEFAULT 0,
	maneuver_time_s REAL NOT NULL DEFAULT 0,
	slack_time_s REAL NOT NULL DEFAULT 0,
	value REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS acquisitions (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	plan_id TEXT REFERENCES plans(id) ON DELETE SET NULL,
	satellite_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	roll_angle_deg REAL NOT NULL DEFAULT 0,
	pitch_angle_deg REAL NOT NULL DEFAULT 0,
	mode TEXT NOT NULL DEFAULT 'optical',
	state TEXT NOT NULL DEFAULT 'committed',
	lock_level TEXT NOT NULL DEFAULT 'none',
	source TEXT NOT NULL DEFAULT 'plan',
	opportunity_id TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS conflicts (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	acquisition_ids TEXT NOT NULL DEFAULT '[]',
	details TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	resolved_at DATETIME,
	resolution_action TEXT
);

CREATE TABLE IF NOT EXISTS commit_audit_log (
	id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL,
	commit_type TEXT NOT NULL DEFAULT 'normal',
	config_hash TEXT NOT NULL DEFAULT '',
	acquisitions_created INTEGER NOT NULL DEFAULT 0,
	acquisitions_dropped INTEGER NOT NULL DEFAULT 0,
	repair_diff TEXT,
	score_before REAL,
	score_after REAL,
	conflicts_before INTEGER,
	conflicts_after INTEGER,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	notes TEXT
);

CREATE TABLE IF NOT EXISTS validation_scenarios (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	document TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS validation_reports (
	id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL REFERENCES validation_scenarios(id) ON DELETE CASCADE,
	config_hash TEXT NOT NULL DEFAULT '',
	pass INTEGER NOT NULL DEFAULT 0,
	report_hash TEXT NOT NULL DEFAULT '',
	document TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_acquisitions_workspace ON acquisitions(workspace_id);
CREATE INDEX IF NOT EXISTS idx_acquisitions_satellite ON acquisitions(satellite_id);
CREATE INDEX IF NOT EXISTS idx_acquisitions_start_time ON acquisitions(start_time);
CREATE INDEX IF NOT EXISTS idx_plan_items_plan ON plan_items(plan_id);
CREATE INDEX IF NOT EXISTS idx_conflicts_workspace ON conflicts(workspace_id);
CREATE INDEX IF NOT EXISTS idx_commit_audit_plan ON commit_audit_log(plan_id);
`

// migrate applies incremental, additive schema changes for existing
// database files via a pragma_table_info-gated ALTER TABLE pattern, so
// upgrading never touches already-committed rows.
func migrate(exec execer) error {
	if err := addColumnIfMissing(exec, "acquisitions", "notes", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	if err := addColumnIfMissing(exec, "plans", "notes", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	return nil
}
