// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"context"
	"time"
)

// EntityStore is the on-device persisted collection of records, one logical
// collection per entity type. Implementations do no network I/O. The
// reconciliation engine is the only component that writes through this
// interface during a sync pass.
type EntityStore interface {
	// FetchAll returns every record of one type in implementation-defined
	// order.
	FetchAll(ctx context.Context, et EntityType) ([]Record, error)

	// Get returns the record with the given local identifier, or nil when
	// absent.
	Get(ctx context.Context, et EntityType, localID string) (*Record, error)

	// FindByRemoteID returns the record carrying the given remote
	// identifier, or nil when absent. Used by the pull phase to decide
	// create-vs-update.
	FindByRemoteID(ctx context.Context, et EntityType, remoteID string) (*Record, error)

	// Upsert inserts the record if its local identifier is unknown, else
	// replaces the stored fields.
	Upsert(ctx context.Context, rec *Record) error
}

// ActionQueue is the durable FIFO buffer of pending actions. It survives
// process restart.
type ActionQueue interface {
	// Enqueue appends and persists the action immediately.
	Enqueue(ctx context.Context, a *PendingAction) error

	// Drain walks queued actions in insertion order, invoking fn for each.
	// Actions for which fn returns nil are removed; on the first failure the
	// drain stops, leaving the failed action and everything after it queued
	// in original order for the next drain. Returns the removed count and
	// the failure, if any. Retried actions are resubmitted with identical
	// payloads: there is no deduplication token, so a mutation whose
	// confirmation was lost can be applied twice remotely.
	Drain(ctx context.Context, fn func(context.Context, *PendingAction) error) (int, error)

	// Len returns the number of queued actions.
	Len(ctx context.Context) (int, error)
}

// CursorStore persists the watermark timestamp of the last fully successful
// pull. The watermark only advances after a pass completes; a partial
// failure leaves it unchanged so no remote delta is silently dropped.
type CursorStore interface {
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}
