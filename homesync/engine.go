// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package homesync keeps an on-device cache of property-management entities
// consistent with a remote source of truth across intermittent connectivity.
//
// The reconciliation model is poll-based and unidirectional-merge: a sync
// pass first pushes locally queued mutations to the remote (push phase),
// then pulls remote deltas since the last watermark and upserts them into
// the local store (pull phase, remote wins unconditionally). The watermark
// only advances after a pass fully succeeds.
package homesync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Engine orchestrates push and pull passes. It is the only component
// permitted to call the entity store, the action queue and the remote
// gateway together. All dependencies are injected so tests can substitute
// an in-memory store and a fake gateway.
type Engine struct {
	store   EntityStore
	queue   ActionQueue
	cursors CursorStore
	gateway Gateway
	logger  *slog.Logger

	// syncMu serializes sync passes. A trigger that fails TryLock is
	// dropped, not queued; the next scheduled tick catches up.
	syncMu sync.Mutex
	paused int32

	stateMu   sync.RWMutex
	status    SyncStatus
	lastError error
	lastSync  time.Time
	stats     SyncStats

	now func() time.Time
}

// NewEngine wires an engine from its collaborators. A nil logger defaults
// to slog.Default().
func NewEngine(store EntityStore, queue ActionQueue, cursors CursorStore, gateway Gateway, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		queue:   queue,
		cursors: cursors,
		gateway: gateway,
		logger:  logger,
		status:  StatusIdle,
		now:     time.Now,
	}
}

// PauseSync suspends sync passes; Sync becomes a no-op until resumed.
func (e *Engine) PauseSync() { atomic.StoreInt32(&e.paused, 1) }

// ResumeSync resumes sync passes.
func (e *Engine) ResumeSync() { atomic.StoreInt32(&e.paused, 0) }

// Enqueue validates a mutation payload and appends it to the durable queue.
// The mutation is applied remotely on the next sync pass.
func (e *Engine) Enqueue(ctx context.Context, p ActionPayload) (*PendingAction, error) {
	if err := ValidateActionPayload(p); err != nil {
		return nil, fmt.Errorf("invalid %s action: %w", p.Kind(), err)
	}
	a := &PendingAction{
		ID:       uuid.NewString(),
		Kind:     p.Kind(),
		Payload:  p,
		QueuedAt: e.now(),
	}
	if err := e.queue.Enqueue(ctx, a); err != nil {
		return nil, err
	}
	e.logger.Debug("queued action", "kind", a.Kind, "action_id", a.ID)
	return a, nil
}

// Sync runs one full reconciliation pass: push, then pull, then cursor
// advance. If a pass is already running it returns ErrSyncInProgress
// immediately. When sync is paused it returns (nil, nil).
func (e *Engine) Sync(ctx context.Context) (*SyncResult, error) {
	return e.runPass(ctx, false)
}

// Hydrate resets the pull watermark and runs a full pass, re-downloading
// every remote record. Used for recovery on a fresh or restored device.
// Unacknowledged local records are left alone, same as a regular pull.
func (e *Engine) Hydrate(ctx context.Context) (*SyncResult, error) {
	return e.runPass(ctx, true)
}

func (e *Engine) runPass(ctx context.Context, resetCursor bool) (*SyncResult, error) {
	if atomic.LoadInt32(&e.paused) == 1 {
		return nil, nil
	}
	if !e.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()

	e.setStatus(StatusSyncing)
	started := e.now()
	res := &SyncResult{StartedAt: started}

	if resetCursor {
		if err := e.cursors.SetLastSync(ctx, time.Time{}); err != nil {
			return e.failPass(res, fmt.Errorf("failed to reset cursor: %w", err))
		}
	}

	pushed, err := e.pushPhase(ctx)
	res.Pushed = pushed
	if err != nil {
		return e.failPass(res, err)
	}

	pulled, created, err := e.pullPhase(ctx)
	res.Pulled = pulled
	res.Created = created
	if err != nil {
		return e.failPass(res, err)
	}

	// Advance the watermark to the pass start time, never backwards. Using
	// the start rather than "now" keeps deltas that landed mid-pass inside
	// the next pull window.
	prev, err := e.cursors.LastSync(ctx)
	if err != nil {
		return e.failPass(res, err)
	}
	if started.After(prev) {
		if err := e.cursors.SetLastSync(ctx, started); err != nil {
			return e.failPass(res, err)
		}
	}

	res.FinishedAt = e.now()
	res.Success = true

	e.stateMu.Lock()
	e.status = StatusIdle
	e.lastError = nil
	e.lastSync = started
	e.stats.TotalPasses++
	e.stats.TotalPushed += pushed
	e.stats.TotalPulled += pulled
	e.stats.LastSuccess = started
	e.stateMu.Unlock()

	e.logger.Info("sync pass completed",
		"pushed", pushed, "pulled", pulled, "created", created,
		"duration", res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

// failPass records the error as the last-sync-error and leaves the cursor
// unchanged. The scheduler keeps running; the next tick gets a fresh try.
func (e *Engine) failPass(res *SyncResult, err error) (*SyncResult, error) {
	res.FinishedAt = e.now()

	e.stateMu.Lock()
	e.status = StatusError
	e.lastError = err
	e.stats.TotalPasses++
	e.stats.TotalFailures++
	e.stats.TotalPushed += res.Pushed
	e.stats.TotalPulled += res.Pulled
	e.stateMu.Unlock()

	e.logger.Warn("sync pass failed", "error", err, "pushed", res.Pushed, "pulled", res.Pulled)
	return res, err
}

// pushPhase drains the action queue through the gateway. The drain stops at
// the first failing action, which stays queued for the next pass.
func (e *Engine) pushPhase(ctx context.Context) (int, error) {
	removed, err := e.queue.Drain(ctx, e.applyAction)
	if err != nil {
		return removed, fmt.Errorf("push phase: %w", err)
	}
	return removed, nil
}

// applyAction routes one queued action to the matching gateway mutation.
func (e *Engine) applyAction(ctx context.Context, a *PendingAction) error {
	switch p := a.Payload.(type) {
	case *CreateEntityPayload:
		doc, err := e.gateway.CreateEntity(ctx, p.EntityType, p.Fields)
		if err != nil {
			return err
		}
		return e.acknowledgeRemoteID(ctx, p.EntityType, p.LocalID, doc.ID)

	case *UpdateStatusPayload:
		_, err := e.gateway.UpdateMaintenanceStatus(ctx, p.RemoteID, p.Status)
		return err

	case *RecordPaymentPayload:
		doc, err := e.gateway.RecordPayment(ctx, p)
		if err != nil {
			return err
		}
		return e.acknowledgeRemoteID(ctx, EntityPayment, p.LocalID, doc.ID)

	default:
		return fmt.Errorf("unhandled action kind %q", a.Kind)
	}
}

// acknowledgeRemoteID stamps the remote-assigned identifier onto the local
// record once the remote has confirmed a create. The remote identifier is
// assigned once and never reassigned.
func (e *Engine) acknowledgeRemoteID(ctx context.Context, et EntityType, localID, remoteID string) error {
	rec, err := e.store.Get(ctx, et, localID)
	if err != nil {
		return err
	}
	if rec == nil {
		e.logger.Warn("acknowledged record no longer exists locally",
			"entity_type", et, "local_id", localID, "remote_id", remoteID)
		return nil
	}
	if rec.RemoteID != "" {
		if rec.RemoteID != remoteID {
			e.logger.Warn("local record already bound to a different remote id",
				"entity_type", et, "local_id", localID,
				"bound", rec.RemoteID, "acknowledged", remoteID)
		}
		return nil
	}
	rec.RemoteID = remoteID
	rec.UpdatedAt = e.now()
	return e.store.Upsert(ctx, rec)
}

type pullSource struct {
	entityType EntityType
	fetch      func(ctx context.Context, since time.Time) ([]*Record, error)
}

// pullSources enumerates one fetch-and-map function per entity type.
func (e *Engine) pullSources() []pullSource {
	return []pullSource{
		{EntityProperty, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListProperties(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapPropertyDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
		{EntityTenant, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListTenants(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapTenantDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
		{EntityMaintenanceRequest, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListMaintenanceRequests(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapMaintenanceRequestDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
		{EntityContractor, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListContractors(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapContractorDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
		{EntityPayment, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListPayments(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapPaymentDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
		{EntityFeedEvent, func(ctx context.Context, since time.Time) ([]*Record, error) {
			dtos, err := e.gateway.ListFeedEvents(ctx, since)
			if err != nil {
				return nil, err
			}
			recs := make([]*Record, 0, len(dtos))
			for i := range dtos {
				rec, err := mapFeedEventDTO(&dtos[i])
				if err != nil {
					return nil, err
				}
				recs = append(recs, rec)
			}
			return recs, nil
		}},
	}
}

// pullPhase fetches remote deltas since the watermark for every entity type
// and upserts them locally.
func (e *Engine) pullPhase(ctx context.Context) (pulled, created int, err error) {
	since, err := e.cursors.LastSync(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("pull phase: %w", err)
	}

	for _, src := range e.pullSources() {
		incoming, err := src.fetch(ctx, since)
		if err != nil {
			return pulled, created, fmt.Errorf("pull phase %s: %w", src.entityType, err)
		}
		for _, rec := range incoming {
			fresh, err := e.upsertIncoming(ctx, rec)
			if err != nil {
				return pulled, created, fmt.Errorf("pull phase %s: %w", src.entityType, err)
			}
			pulled++
			if fresh {
				created++
			}
		}
	}
	return pulled, created, nil
}

// upsertIncoming applies one remote record to the local store. A record
// already known by remote identifier gets its domain fields overwritten
// (remote wins, whole-payload); an unseen one is synthesized with a fresh
// local identifier. Local records with no remote identifier are invisible
// to this lookup and therefore never clobbered by a pull.
func (e *Engine) upsertIncoming(ctx context.Context, in *Record) (created bool, err error) {
	if in.RemoteID == "" {
		e.logger.Warn("skipping remote record without identifier", "entity_type", in.EntityType)
		return false, nil
	}
	existing, err := e.store.FindByRemoteID(ctx, in.EntityType, in.RemoteID)
	if err != nil {
		return false, err
	}
	now := e.now()
	if existing != nil {
		existing.Payload = in.Payload
		existing.UpdatedAt = now
		return false, e.store.Upsert(ctx, existing)
	}

	in.LocalID = uuid.NewString()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	in.UpdatedAt = now
	return true, e.store.Upsert(ctx, in)
}

func (e *Engine) setStatus(s SyncStatus) {
	e.stateMu.Lock()
	e.status = s
	e.stateMu.Unlock()
}

// Status returns the aggregate sync state flag.
func (e *Engine) Status() SyncStatus {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.status
}

// LastError returns the error recorded by the most recent failed pass, or
// nil after a successful pass.
func (e *Engine) LastError() error {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.lastError
}

// LastSyncTime returns the start time of the last successful pass.
func (e *Engine) LastSyncTime() time.Time {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.lastSync
}

// Stats returns a copy of the cumulative counters.
func (e *Engine) Stats() SyncStats {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.stats
}
