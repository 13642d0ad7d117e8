// Package migrate applies the embedded schema migrations in filename order.
// Each file runs once inside its own transaction, tracked in a
// schema_migrations ledger, so repeated runs are no-ops.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Run brings the schema up to date. Safe to call on every startup.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := sortedMigrationFiles()
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := applyOnce(ctx, db, file); err != nil {
			return err
		}
	}
	return nil
}

func sortedMigrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyOnce runs a single migration file unless the ledger already has it.
// The statements and the ledger insert commit together.
func applyOnce(ctx context.Context, db *sql.DB, file string) (err error) {
	version := strings.TrimSuffix(file, ".sql")

	var done bool
	row := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version)
	if err := row.Scan(&done); err != nil {
		return fmt.Errorf("check migration %s: %w", file, err)
	}
	if done {
		return nil
	}

	stmts, err := migrationsFS.ReadFile("migrations/" + file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	logger := slog.Default().With("component", "migrations")
	logger.InfoContext(ctx, "applying migration", "version", version)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file, err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback migration %s: %w", file, rerr))
		}
	}()

	if _, err = tx.ExecContext(ctx, string(stmts)); err != nil {
		return fmt.Errorf("exec migration %s: %w", file, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}
