// Package database persists the upstream offers of each search so their
// details can be served later without searching again.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"flight-offers-api/internal/provider"
)

// ErrNotFound is returned when no live snapshot exists for an offer id.
var ErrNotFound = errors.New("offer snapshot not found")

// SnapshotStore stores offer snapshots keyed by upstream offer id. A later
// save of the same id replaces the earlier one.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, searchID string, snaps []provider.OfferSnapshot) (int, error)
	GetSnapshot(ctx context.Context, offerID string) (*provider.OfferSnapshot, error)
	PurgeExpired(ctx context.Context) (int, error)
	Close() error
}

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Open opens the snapshot store for the given driver.
func Open(driver, path string, ttl time.Duration) (SnapshotStore, error) {
	switch driver {
	case DriverSQLite, "sqlite3", "":
		return NewDB(path, ttl)
	case DriverBolt:
		return NewBoltStore(path, ttl)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// timeLayout has a fixed width so stored timestamps compare as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// DB is the SQLite snapshot store.
type DB struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(dbPath string, ttl time.Duration) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, ttl: ttl, now: time.Now}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS offer_snapshots (
			offer_id TEXT PRIMARY KEY,
			search_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_search_id ON offer_snapshots(search_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON offer_snapshots(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// SaveSnapshots upserts the snapshots of one search in a single transaction.
func (db *DB) SaveSnapshots(ctx context.Context, searchID string, snaps []provider.OfferSnapshot) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO offer_snapshots (
		offer_id, search_id, payload, expires_at, updated_at
	) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(offer_id) DO UPDATE SET
		search_id = excluded.search_id,
		payload = excluded.payload,
		expires_at = excluded.expires_at,
		updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := db.now().UTC()
	expiresAt := now.Add(db.ttl).Format(timeLayout)

	saved := 0
	for _, snap := range snaps {
		payload, err := json.Marshal(snap)
		if err != nil {
			return 0, fmt.Errorf("failed to encode offer %s: %w", snap.Offer.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.Offer.ID, searchID, string(payload), expiresAt, now.Format(timeLayout)); err != nil {
			return 0, fmt.Errorf("failed to save offer %s: %w", snap.Offer.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

// GetSnapshot returns the live snapshot of an offer or ErrNotFound.
func (db *DB) GetSnapshot(ctx context.Context, offerID string) (*provider.OfferSnapshot, error) {
	var payload, expiresAtStr string
	err := db.conn.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM offer_snapshots WHERE offer_id = ?`, offerID,
	).Scan(&payload, &expiresAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query offer snapshot: %w", err)
	}

	expiresAt, err := time.Parse(timeLayout, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if !db.now().Before(expiresAt) {
		return nil, ErrNotFound
	}

	var snap provider.OfferSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode offer snapshot: %w", err)
	}
	return &snap, nil
}

// PurgeExpired deletes expired snapshots and returns how many were removed.
func (db *DB) PurgeExpired(ctx context.Context) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM offer_snapshots WHERE expires_at <= ?`,
		db.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged snapshots: %w", err)
	}
	return int(n), nil
}
