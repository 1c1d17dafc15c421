package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// execer is the subset of *sql.DB/*sql.Tx that schema bootstrapping and
// migration need; it lets migrate() run both at Open() time (against the
// DB) and, in principle, inside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is the transactional persistence layer: one *sql.DB over a
// single SQLite file, WAL-mode, busy-timeout bounded, schema bootstrapped
// and migrated additively on Open.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at dbPath, applies
// the schema, and runs the additive migration ladder. WAL journal mode
// plus a generous busy_timeout means concurrent readers never see
// SQLITE_BUSY under normal load. log may be nil, in which case
// slog.Default() is used — every long-lived component takes its logger by
// reference rather than reaching for a package-level global.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Error("store: open database failed", "path", dbPath, "error", err)
		return nil, coreerr.Persistence("open database", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		log.Error("store: apply schema failed", "error", err)
		return nil, coreerr.Persistence("apply schema", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		log.Error("store: migrate schema failed", "error", err)
		return nil, coreerr.Persistence("migrate schema", err)
	}

	log.Info("store: opened", "path", dbPath)
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// addColumnIfMissing is a pragma_table_info-gated ALTER TABLE
// idiom: additive only, never rewrites or drops existing columns, so
// upgrading an existing database file never disturbs committed rows.
func addColumnIfMissing(exec execer, table, column, ddl string) error {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?`, table)
	if err := exec.QueryRow(query, column).Scan(&count); err != nil {
		return fmt.Errorf("store: check column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	alter := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, ddl)
	if _, err := exec.Exec(alter); err != nil {
		return fmt.Errorf("store: add column %s.%s: %w", table, column, err)
	}
	return nil
}
