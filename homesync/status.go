// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import "time"

// SyncStatus is the aggregate user-visible sync state. There is no
// per-record error reporting; a failed pass only flips this flag and records
// the last error.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusError   SyncStatus = "error"
)

// SyncResult summarizes one sync pass.
type SyncResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Pushed     int // actions confirmed and removed from the queue
	Pulled     int // remote records applied to the local store
	Created    int // of Pulled, records synthesized with a fresh local id
	Success    bool
}

// SyncStats accumulates counters across passes since engine construction.
type SyncStats struct {
	TotalPasses   int
	TotalFailures int
	TotalPushed   int
	TotalPulled   int
	LastSuccess   time.Time
}
