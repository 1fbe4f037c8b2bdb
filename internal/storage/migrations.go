package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: ledger entries and classification rules",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS ledger_entries (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					period_key TEXT NOT NULL,
					date DATETIME NOT NULL,
					voucher_id TEXT,
					account_name TEXT NOT NULL,
					notes TEXT,
					region_tag TEXT,
					debit TEXT NOT NULL DEFAULT '0',
					credit TEXT NOT NULL DEFAULT '0',
					category TEXT,
					subcategory TEXT,
					tier TEXT,
					origin TEXT,
					reason TEXT,
					rule_id INTEGER,
					confidence REAL DEFAULT 0,
					needs_review BOOLEAN DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_entries_period ON ledger_entries(period_key)`,
				`CREATE INDEX idx_entries_account ON ledger_entries(account_name)`,

				`CREATE TABLE IF NOT EXISTS rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					pattern TEXT NOT NULL,
					kind TEXT NOT NULL,
					category TEXT NOT NULL,
					subcategory TEXT,
					origin TEXT NOT NULL,
					confidence REAL DEFAULT 1,
					priority INTEGER DEFAULT 0,
					times_used INTEGER DEFAULT 0,
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_rules_active ON rules(is_active)`,

				`CREATE TABLE IF NOT EXISTS auto_ignore_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					keyword TEXT UNIQUE NOT NULL,
					reason TEXT NOT NULL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add per-state sales registers",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS sales_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					period_key TEXT NOT NULL,
					state TEXT NOT NULL,
					party TEXT NOT NULL,
					channel TEXT NOT NULL,
					destination_region TEXT,
					amount TEXT NOT NULL DEFAULT '0',
					tax_amount TEXT NOT NULL DEFAULT '0',
					is_return BOOLEAN DEFAULT 0,
					is_transfer BOOLEAN DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_sales_period_state ON sales_items(period_key, state)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add authoritative period snapshots",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS snapshots (
					period_key TEXT PRIMARY KEY,
					opening_stock TEXT NOT NULL DEFAULT '0',
					closing_stock TEXT NOT NULL DEFAULT '0',
					purchases TEXT NOT NULL DEFAULT '0',
					net_sales TEXT NOT NULL DEFAULT '0',
					net_profit_loss TEXT NOT NULL DEFAULT '0',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
	{
		Version:     4,
		Description: "Add generated report store",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS reports (
					period_key TEXT PRIMARY KEY,
					report_id TEXT NOT NULL,
					generated_at DATETIME NOT NULL,
					payload TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_entries_review ON ledger_entries(period_key, needs_review)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
