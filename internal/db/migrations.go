package db

import (
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
-- Logged jumps. List-valued fields are JSON arrays.
CREATE TABLE jumps (
    id TEXT PRIMARY KEY,
    jump_number INTEGER NOT NULL UNIQUE,
    date TEXT NOT NULL,
    drop_zone TEXT NOT NULL,
    aircraft TEXT NOT NULL DEFAULT '',
    jump_type TEXT NOT NULL DEFAULT '',
    exit_altitude INTEGER NOT NULL DEFAULT 0,
    deployment_altitude INTEGER NOT NULL DEFAULT 0,
    freefall_seconds INTEGER NOT NULL DEFAULT 0,
    gear TEXT NOT NULL DEFAULT '[]',
    notes TEXT NOT NULL DEFAULT '',
    cutaway INTEGER NOT NULL DEFAULT 0,
    work_jump INTEGER NOT NULL DEFAULT 0,
    customer_name TEXT NOT NULL DEFAULT '',
    invoice_items TEXT NOT NULL DEFAULT '[]',
    invoiced_services TEXT NOT NULL DEFAULT '[]',
    pending_invoice_services TEXT NOT NULL DEFAULT '[]',
    invoice_ids TEXT NOT NULL DEFAULT '[]',
    invoice_status TEXT NOT NULL DEFAULT 'unbilled',
    rate_at_time_of_jump TEXT NOT NULL DEFAULT '[]',
    settled INTEGER NOT NULL DEFAULT 0,
    signature TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Invoices. One draft per dropzone is enforced by the partial index below.
CREATE TABLE invoices (
    id TEXT PRIMARY KEY,
    invoice_number INTEGER NOT NULL UNIQUE,
    drop_zone TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft',
    total REAL NOT NULL DEFAULT 0,
    date_created TEXT NOT NULL,
    date_locked TEXT,
    date_sent TEXT,
    date_paid TEXT
);

-- Line items are an immutable snapshot; jump_id is not a foreign key
-- because jumps may be deleted after billing.
CREATE TABLE invoice_line_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    jump_id TEXT NOT NULL,
    jump_number INTEGER NOT NULL,
    date TEXT NOT NULL,
    customer_name TEXT NOT NULL DEFAULT '',
    service TEXT NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 1,
    rate REAL NOT NULL,
    total REAL NOT NULL
);

-- Audit trail of invoice state transitions
CREATE TABLE invoice_events (
    id TEXT PRIMARY KEY,
    invoice_id TEXT NOT NULL,
    action TEXT NOT NULL,
    from_status TEXT NOT NULL DEFAULT '',
    to_status TEXT NOT NULL DEFAULT '',
    occurred_at TEXT NOT NULL
);

CREATE TABLE service_rates (
    service TEXT PRIMARY KEY,
    rate REAL NOT NULL
);

-- Dropzone, aircraft and jump type pick lists
CREATE TABLE registry (
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (kind, name)
);

CREATE TABLE settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX idx_jumps_date ON jumps(date);
CREATE INDEX idx_jumps_drop_zone ON jumps(drop_zone);
CREATE INDEX idx_invoices_status ON invoices(status);
CREATE UNIQUE INDEX idx_invoices_one_draft ON invoices(drop_zone) WHERE status = 'draft';
CREATE INDEX idx_line_items_invoice ON invoice_line_items(invoice_id, position);
CREATE INDEX idx_events_invoice ON invoice_events(invoice_id, occurred_at);
`,
	},
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply pending migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the highest applied migration
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}
