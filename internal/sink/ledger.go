package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	pkgerrors "golfwear-extractor/pkg/errors"
)

// Ledger remembers which record keys were already delivered to which
// target, so reruns do not create duplicate rows.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (and creates if needed) the SQLite ledger at path.
// ":memory:" gives a throwaway ledger.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("failed to open ledger %s", path), err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, pkgerrors.NewConfiguration(fmt.Sprintf("failed to open ledger %s", path), err)
	}

	createSyncedTableSQL := `
	CREATE TABLE IF NOT EXISTS synced (
		"record_key" TEXT NOT NULL,
		"target" TEXT NOT NULL,
		"remote_id" TEXT,
		"synced_at" DATETIME NOT NULL,
		PRIMARY KEY ("record_key", "target")
	);`
	if _, err := db.Exec(createSyncedTableSQL); err != nil {
		db.Close()
		return nil, pkgerrors.NewConfiguration("failed to create ledger table", err)
	}

	return &Ledger{db: db}, nil
}

// Has reports whether key was already delivered to target
func (l *Ledger) Has(ctx context.Context, target, key string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM synced WHERE record_key = ? AND target = ?`, key, target).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return n > 0, nil
}

// Mark records keys as delivered to target. remoteIDs, when given, must be
// parallel to keys.
func (l *Ledger) Mark(ctx context.Context, target string, keys []string, remoteIDs []string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger transaction failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO synced (record_key, target, remote_id, synced_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(record_key, target) DO UPDATE SET remote_id = excluded.remote_id, synced_at = excluded.synced_at;`)
	if err != nil {
		return fmt.Errorf("ledger prepare failed: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, key := range keys {
		remote := ""
		if i < len(remoteIDs) {
			remote = remoteIDs[i]
		}
		if _, err := stmt.ExecContext(ctx, key, target, remote, now); err != nil {
			return fmt.Errorf("ledger insert failed for %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Count returns how many keys were delivered to target
func (l *Ledger) Count(ctx context.Context, target string) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM synced WHERE target = ?`, target).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger count failed: %w", err)
	}
	return n, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
