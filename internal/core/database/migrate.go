package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrateLockKey serializes schema changes across instances starting together.
const migrateLockKey int64 = 0x53524d4e

type migration struct {
	version int
	name    string
	file    string
}

// loadMigrations returns every NNN_name.sql file in dir, ordered by version.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	out := make([]migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m, err := parseMigrationName(e.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, e.Name(), m.version)
		}
		seen[m.version] = e.Name()
		m.file = path.Join(dir, e.Name())
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func parseMigrationName(file string) (migration, error) {
	prefix, name, ok := strings.Cut(strings.TrimSuffix(file, ".sql"), "_")
	if !ok || name == "" {
		return migration{}, fmt.Errorf("migration %q: want NNN_name.sql", file)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return migration{}, fmt.Errorf("migration %q: bad version %q", file, prefix)
	}
	return migration{version: version, name: name}, nil
}

// pendingMigrations drops the versions already recorded as applied.
func pendingMigrations(all []migration, applied map[int]bool) []migration {
	var out []migration
	for _, m := range all {
		if !applied[m.version] {
			out = append(out, m)
		}
	}
	return out
}

// Migrate brings the schema up to the newest embedded migration. Each
// migration runs in its own transaction under a Postgres advisory lock and
// records its version in sermonchat_meta.
func Migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sermonchat_meta (
		    version     INTEGER PRIMARY KEY,
		    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	all, err := loadMigrations(migrationFS, "migrations")
	if err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	pending := pendingMigrations(all, applied)
	if len(pending) == 0 {
		slog.Debug("database schema up to date", "version", all[len(all)-1].version)
		return nil
	}
	for _, m := range pending {
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM sermonchat_meta`)
	if err != nil {
		return nil, fmt.Errorf("read schema versions: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	body, err := migrationFS.ReadFile(m.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.file, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrateLockKey); err != nil {
		return fmt.Errorf("lock migration %d: %w", m.version, err)
	}
	// Another instance may have applied it while we waited for the lock.
	var done bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sermonchat_meta WHERE version = $1)`, m.version).Scan(&done); err != nil {
		return fmt.Errorf("check migration %d: %w", m.version, err)
	}
	if done {
		return nil
	}

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO sermonchat_meta (version) VALUES ($1)`, m.version); err != nil {
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	slog.Info("database migration applied", "version", m.version, "name", m.name)
	return nil
}
