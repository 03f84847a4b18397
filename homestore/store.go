// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package homestore provides the SQLite-backed device persistence for
// homesync: the local entity store, the durable offline action queue, and
// the sync cursor, all in one database file owned exclusively by this
// process.
package homestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pkuntong/highlanderhomes-sub003/homesync"
)

// timeLayout is the persisted timestamp format.
const timeLayout = time.RFC3339Nano

// Store implements homesync.EntityStore, homesync.ActionQueue and
// homesync.CursorStore on one SQLite database.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	writeMu sync.Mutex // serialize writes to avoid SQLite locking issues
}

// Open opens (or creates) the database file at path and initializes the
// schema. A nil logger defaults to slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &homesync.StorageError{Op: "open", Err: err}
	}
	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open database handle and initializes the schema.
func New(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return &homesync.StorageError{Op: "init", Err: fmt.Errorf("failed to enable WAL mode: %w", err)}
	}
	if _, err := s.db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return &homesync.StorageError{Op: "init", Err: fmt.Errorf("failed to enable foreign keys: %w", err)}
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS records (
			entity_type TEXT NOT NULL,
			local_id    TEXT NOT NULL,
			remote_id   TEXT,
			payload     TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			PRIMARY KEY (entity_type, local_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_remote
			ON records(entity_type, remote_id)`,

		`CREATE TABLE IF NOT EXISTS pending_actions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			action_id TEXT NOT NULL UNIQUE,
			kind      TEXT NOT NULL,
			payload   TEXT NOT NULL,
			queued_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sync_state (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.Exec(ddl); err != nil {
			return &homesync.StorageError{Op: "init", Err: err}
		}
	}
	return nil
}

// FetchAll returns every record of one entity type, oldest first.
func (s *Store) FetchAll(ctx context.Context, et homesync.EntityType) ([]homesync.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT local_id, COALESCE(remote_id, ''), payload, created_at, updated_at
		FROM records WHERE entity_type = ?
		ORDER BY created_at, local_id
	`, string(et))
	if err != nil {
		return nil, &homesync.StorageError{Op: "fetch_all", Err: err}
	}
	defer rows.Close()

	var recs []homesync.Record
	for rows.Next() {
		rec, err := scanRecord(rows, et)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &homesync.StorageError{Op: "fetch_all", Err: err}
	}
	return recs, nil
}

// Get returns the record with the given local identifier, or nil.
func (s *Store) Get(ctx context.Context, et homesync.EntityType, localID string) (*homesync.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT local_id, COALESCE(remote_id, ''), payload, created_at, updated_at
		FROM records WHERE entity_type = ? AND local_id = ?
	`, string(et), localID)
	rec, err := scanRecord(row, et)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// FindByRemoteID returns the record bound to the given remote identifier,
// or nil. Records with no remote identifier are never matched.
func (s *Store) FindByRemoteID(ctx context.Context, et homesync.EntityType, remoteID string) (*homesync.Record, error) {
	if remoteID == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT local_id, COALESCE(remote_id, ''), payload, created_at, updated_at
		FROM records WHERE entity_type = ? AND remote_id = ?
	`, string(et), remoteID)
	rec, err := scanRecord(row, et)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Upsert inserts the record if its local identifier is unknown, else
// replaces the stored fields. Zero timestamps are filled in.
func (s *Store) Upsert(ctx context.Context, rec *homesync.Record) error {
	if rec.LocalID == "" {
		return &homesync.StorageError{Op: "upsert", Err: fmt.Errorf("record has no local id")}
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (entity_type, local_id, remote_id, payload, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)
		ON CONFLICT (entity_type, local_id) DO UPDATE SET
			remote_id  = excluded.remote_id,
			payload    = excluded.payload,
			updated_at = excluded.updated_at
	`, string(rec.EntityType), rec.LocalID, rec.RemoteID, string(rec.Payload),
		rec.CreatedAt.Format(timeLayout), rec.UpdatedAt.Format(timeLayout))
	if err != nil {
		return &homesync.StorageError{Op: "upsert", Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, et homesync.EntityType) (*homesync.Record, error) {
	var rec homesync.Record
	var payload, createdAt, updatedAt string
	if err := row.Scan(&rec.LocalID, &rec.RemoteID, &payload, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, &homesync.StorageError{Op: "scan", Err: err}
	}
	rec.EntityType = et
	rec.Payload = []byte(payload)

	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, &homesync.StorageError{Op: "scan", Err: fmt.Errorf("bad created_at %q: %w", createdAt, err)}
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, &homesync.StorageError{Op: "scan", Err: fmt.Errorf("bad updated_at %q: %w", updatedAt, err)}
	}
	return &rec, nil
}
