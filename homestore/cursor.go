// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pkuntong/highlanderhomes-sub003/homesync"
)

const cursorKey = "last_sync_at"

// LastSync returns the persisted pull watermark, or the zero time when no
// pass has completed yet.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM sync_state WHERE k = ?`, cursorKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &homesync.StorageError{Op: "cursor_load", Err: err}
	}
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, &homesync.StorageError{Op: "cursor_load", Err: fmt.Errorf("bad cursor value %q: %w", v, err)}
	}
	return t, nil
}

// SetLastSync persists the pull watermark. The zero time clears it (used by
// hydration to force a full re-download).
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	v := ""
	if !t.IsZero() {
		v = t.UTC().Format(timeLayout)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (k, v) VALUES (?, ?)
		ON CONFLICT (k) DO UPDATE SET v = excluded.v
	`, cursorKey, v)
	if err != nil {
		return &homesync.StorageError{Op: "cursor_save", Err: err}
	}
	return nil
}
