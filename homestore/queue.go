// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homestore

import (
	"context"
	"time"

	"github.com/pkuntong/highlanderhomes-sub003/homesync"
)

// Enqueue appends a pending action to the durable queue. The row is
// persisted before Enqueue returns.
func (s *Store) Enqueue(ctx context.Context, a *homesync.PendingAction) error {
	payload, err := homesync.EncodeActionPayload(a.Payload)
	if err != nil {
		return &homesync.StorageError{Op: "enqueue", Err: err}
	}
	if a.QueuedAt.IsZero() {
		a.QueuedAt = time.Now().UTC()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_actions (action_id, kind, payload, queued_at)
		VALUES (?, ?, ?, ?)
	`, a.ID, string(a.Kind), string(payload), a.QueuedAt.Format(timeLayout))
	if err != nil {
		return &homesync.StorageError{Op: "enqueue", Err: err}
	}
	return nil
}

// Len returns the number of queued actions.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n); err != nil {
		return 0, &homesync.StorageError{Op: "len", Err: err}
	}
	return n, nil
}

type queuedRow struct {
	rowID    int64
	actionID string
	kind     string
	payload  string
	queuedAt string
}

// Drain walks queued actions in insertion order. Each action whose fn call
// succeeds is deleted immediately, so partial progress survives a crash.
// The first failure stops the drain; the failed action and everything after
// it stay queued in original order. Actions whose stored payload can no
// longer be decoded are dropped with a warning: they would fail identically
// on every future drain and block the queue forever.
func (s *Store) Drain(ctx context.Context, fn func(context.Context, *homesync.PendingAction) error) (int, error) {
	// Snapshot the queue first so no SQLite cursor is held open across the
	// (potentially slow) fn calls.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_id, kind, payload, queued_at
		FROM pending_actions ORDER BY id
	`)
	if err != nil {
		return 0, &homesync.StorageError{Op: "drain", Err: err}
	}
	var queued []queuedRow
	for rows.Next() {
		var q queuedRow
		if err := rows.Scan(&q.rowID, &q.actionID, &q.kind, &q.payload, &q.queuedAt); err != nil {
			rows.Close()
			return 0, &homesync.StorageError{Op: "drain", Err: err}
		}
		queued = append(queued, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, &homesync.StorageError{Op: "drain", Err: err}
	}
	rows.Close()

	removed := 0
	for _, q := range queued {
		payload, err := homesync.DecodeActionPayload(homesync.ActionKind(q.kind), []byte(q.payload))
		if err != nil {
			s.logger.Warn("dropping undecodable pending action",
				"action_id", q.actionID, "kind", q.kind, "error", err)
			if err := s.deleteAction(ctx, q.rowID); err != nil {
				return removed, err
			}
			continue
		}

		queuedAt, err := time.Parse(timeLayout, q.queuedAt)
		if err != nil {
			queuedAt = time.Time{}
		}
		a := &homesync.PendingAction{
			ID:       q.actionID,
			Kind:     homesync.ActionKind(q.kind),
			Payload:  payload,
			QueuedAt: queuedAt,
		}

		if err := fn(ctx, a); err != nil {
			return removed, err
		}
		if err := s.deleteAction(ctx, q.rowID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) deleteAction(ctx context.Context, rowID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, rowID); err != nil {
		return &homesync.StorageError{Op: "drain", Err: err}
	}
	return nil
}
