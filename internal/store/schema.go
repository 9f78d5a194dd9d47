package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the run store.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

-- One row per finished run; model and final state as JSON columns
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    title TEXT,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    recording_interval INTEGER NOT NULL,
    labels TEXT NOT NULL,         -- JSON array
    first_wins TEXT NOT NULL,     -- JSON array of [first, second]
    seed_degrees TEXT NOT NULL,   -- JSON array
    initial TEXT NOT NULL,        -- JSON array of proportions
    final_degrees TEXT NOT NULL,  -- JSON array
    elapsed_ns INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

-- Recorded proportions, one row per (point, type)
CREATE TABLE IF NOT EXISTS run_points (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step INTEGER NOT NULL,
    type_index INTEGER NOT NULL,
    proportion REAL NOT NULL,
    PRIMARY KEY (run_id, step, type_index)
);
`

// InitSchema brings db up to SchemaVersion. A database without a
// schema_version table is treated as new; an existing one must pass
// ValidateIntegrity and must not come from a newer build.
func InitSchema(ctx context.Context, db *sql.DB) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	if err := ValidateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("run store integrity check failed: %w", err)
	}
	return nil
}

// schemaVersion errors when the schema_version table is missing.
func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

// ValidateIntegrity checks the SQLite file itself, dangling run_points
// rows, and runs whose stored points do not cover every type.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	var problems []error

	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	err = scanAll(rows, func(rows *sql.Rows) error {
		var result string
		if err := rows.Scan(&result); err != nil {
			return err
		}
		if result != "ok" {
			problems = append(problems, fmt.Errorf("integrity_check: %s", result))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read integrity_check: %w", err)
	}

	rows, err = db.QueryContext(ctx, `PRAGMA foreign_key_check(run_points)`)
	if err != nil {
		return fmt.Errorf("failed to run foreign_key_check: %w", err)
	}
	err = scanAll(rows, func(rows *sql.Rows) error {
		var table, parent string
		var rowid, fkid sql.NullInt64
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return err
		}
		problems = append(problems, fmt.Errorf("run_points row %d references a missing run", rowid.Int64))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read foreign_key_check: %w", err)
	}

	rows, err = db.QueryContext(ctx, `
		SELECT r.id, COUNT(p.step), json_array_length(r.labels)
		FROM runs r LEFT JOIN run_points p ON p.run_id = r.id
		GROUP BY r.id
		HAVING json_array_length(r.labels) > 0
			AND COUNT(p.step) % json_array_length(r.labels) != 0`)
	if err != nil {
		return fmt.Errorf("failed to check run points: %w", err)
	}
	err = scanAll(rows, func(rows *sql.Rows) error {
		var id string
		var points, types int
		if err := rows.Scan(&id, &points, &types); err != nil {
			return err
		}
		problems = append(problems, fmt.Errorf("run %s has %d point rows for %d types", id, points, types))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read run points check: %w", err)
	}

	return errors.Join(problems...)
}

// scanAll calls fn for each row and closes rows.
func scanAll(rows *sql.Rows, fn func(*sql.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
