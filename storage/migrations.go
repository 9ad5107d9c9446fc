package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Migration represents one schema migration
type Migration struct {
	Version string
	Name    string
	Up      func(*sql.Tx) error
}

// MigrationRunner applies registered migrations in version order, each in
// its own transaction, recording them in schema_migrations
type MigrationRunner struct {
	db         *sql.DB
	logger     *zap.SugaredLogger
	migrations []Migration
}

// NewMigrationRunner creates a runner and ensures the tracking table exists
func NewMigrationRunner(db *sql.DB, logger *zap.SugaredLogger) (*MigrationRunner, error) {
	runner := &MigrationRunner{db: db, logger: logger}
	schema := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	return runner, nil
}

// Register adds a migration to the runner
func (r *MigrationRunner) Register(m Migration) {
	r.migrations = append(r.migrations, m)
}

// Run applies all pending migrations in version order
func (r *MigrationRunner) Run() error {
	applied := make(map[string]bool)
	rows, err := r.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	pending := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		start := time.Now()
		tx, err := r.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.Version, m.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}
		r.logger.Infow("Migration applied",
			"version", m.Version,
			"name", m.Name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// RegisterMigrations registers the full schema
func RegisterMigrations(runner *MigrationRunner) {
	runner.Register(Migration{
		Version: "1.0.0",
		Name:    "initial_schema",
		Up: func(tx *sql.Tx) error {
			schema := `
			CREATE TABLE IF NOT EXISTS companies (
				company_id TEXT PRIMARY KEY,
				company_name TEXT NOT NULL,
				bceid_guid TEXT,
				create_date TEXT NOT NULL,
				update_date TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS admin_users (
				admin_user_id TEXT PRIMARY KEY,
				guid TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL DEFAULT '',
				is_active INTEGER NOT NULL DEFAULT 1,
				create_date TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS reports (
				report_id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL REFERENCES companies(company_id),
				naics_code TEXT NOT NULL DEFAULT '',
				employee_count_range_id TEXT NOT NULL DEFAULT '',
				reporting_year INTEGER NOT NULL,
				report_status TEXT NOT NULL DEFAULT 'Draft',
				is_unlocked INTEGER NOT NULL DEFAULT 0,
				report_unlock_date TEXT,
				admin_modified_reason TEXT,
				admin_modified_date TEXT,
				admin_user_id TEXT REFERENCES admin_users(admin_user_id),
				admin_last_access_date TEXT,
				create_date TEXT NOT NULL,
				update_date TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company_id);
			CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(report_status);
			CREATE INDEX IF NOT EXISTS idx_reports_year ON reports(reporting_year);

			CREATE TABLE IF NOT EXISTS report_history (
				report_history_id TEXT PRIMARY KEY,
				report_id TEXT NOT NULL REFERENCES reports(report_id),
				company_id TEXT NOT NULL,
				reporting_year INTEGER NOT NULL,
				report_status TEXT NOT NULL,
				is_unlocked INTEGER NOT NULL,
				admin_modified_reason TEXT,
				admin_modified_date TEXT,
				admin_user_id TEXT,
				create_date TEXT NOT NULL,
				update_date TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_report_history_report ON report_history(report_id);

			CREATE TABLE IF NOT EXISTS announcements (
				announcement_id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'DRAFT',
				active_on TEXT,
				published_on TEXT,
				expires_on TEXT,
				created_by TEXT,
				updated_by TEXT,
				created_date TEXT NOT NULL,
				updated_date TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_announcements_status ON announcements(status);

			CREATE TABLE IF NOT EXISTS announcement_resources (
				resource_id TEXT PRIMARY KEY,
				announcement_id TEXT NOT NULL REFERENCES announcements(announcement_id) ON DELETE CASCADE,
				resource_type TEXT NOT NULL,
				display_name TEXT NOT NULL,
				resource_url TEXT,
				attachment_file_id TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_announcement_resources_announcement
				ON announcement_resources(announcement_id);
			`
			_, err := tx.Exec(schema)
			return err
		},
	})

	runner.Register(Migration{
		Version: "1.1.0",
		Name:    "unique_report_per_company_year",
		Up: func(tx *sql.Tx) error {
			// Withdrawn reports do not hold the year; uniqueness applies to
			// live rows only
			_, err := tx.Exec(`
				CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_company_year
				ON reports(company_id, reporting_year)
				WHERE report_status != 'Withdrawn'
			`)
			return err
		},
	})
}
