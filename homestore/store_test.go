package homestore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkuntong/highlanderhomes-sub003/homesync"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &homesync.Record{
		EntityType: homesync.EntityProperty,
		LocalID:    uuid.NewString(),
		Payload:    json.RawMessage(`{"address":"12 High St"}`),
	}
	require.NoError(t, s.Upsert(ctx, rec))
	require.False(t, rec.CreatedAt.IsZero(), "zero timestamps are filled on insert")
	require.False(t, rec.UpdatedAt.IsZero())

	got, err := s.Get(ctx, homesync.EntityProperty, rec.LocalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, rec.LocalID, got.LocalID)
	require.Empty(t, got.RemoteID)
	require.JSONEq(t, string(rec.Payload), string(got.Payload))
	require.True(t, got.CreatedAt.Equal(rec.CreatedAt))
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), homesync.EntityTenant, uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpsertUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	localID := uuid.NewString()
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(ctx, &homesync.Record{
		EntityType: homesync.EntityMaintenanceRequest,
		LocalID:    localID,
		Payload:    json.RawMessage(`{"title":"Broken heater","status":"new"}`),
		CreatedAt:  created,
		UpdatedAt:  created,
	}))

	require.NoError(t, s.Upsert(ctx, &homesync.Record{
		EntityType: homesync.EntityMaintenanceRequest,
		LocalID:    localID,
		RemoteID:   "r1",
		Payload:    json.RawMessage(`{"title":"Broken heater","status":"completed"}`),
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Hour),
	}))

	got, err := s.Get(ctx, homesync.EntityMaintenanceRequest, localID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "r1", got.RemoteID)
	require.Contains(t, string(got.Payload), "completed")
	require.True(t, got.CreatedAt.Equal(created), "created_at is write-once")
	require.True(t, got.UpdatedAt.Equal(created.Add(time.Hour)))

	all, err := s.FetchAll(ctx, homesync.EntityMaintenanceRequest)
	require.NoError(t, err)
	require.Len(t, all, 1, "upsert must not duplicate the row")
}

func TestUpsertRequiresLocalID(t *testing.T) {
	s := newTestStore(t)

	err := s.Upsert(context.Background(), &homesync.Record{
		EntityType: homesync.EntityProperty,
		Payload:    json.RawMessage(`{}`),
	})
	require.Error(t, err)
	require.True(t, homesync.IsStorageError(err))
}

func TestFindByRemoteID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	confirmed := &homesync.Record{
		EntityType: homesync.EntityTenant,
		LocalID:    uuid.NewString(),
		RemoteID:   "r1",
		Payload:    json.RawMessage(`{"first_name":"Jane"}`),
	}
	unconfirmed := &homesync.Record{
		EntityType: homesync.EntityTenant,
		LocalID:    uuid.NewString(),
		Payload:    json.RawMessage(`{"first_name":"John"}`),
	}
	require.NoError(t, s.Upsert(ctx, confirmed))
	require.NoError(t, s.Upsert(ctx, unconfirmed))

	got, err := s.FindByRemoteID(ctx, homesync.EntityTenant, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, confirmed.LocalID, got.LocalID)

	got, err = s.FindByRemoteID(ctx, homesync.EntityTenant, "r-unknown")
	require.NoError(t, err)
	require.Nil(t, got)

	// Unconfirmed records store NULL, so an empty lookup must not match them.
	got, err = s.FindByRemoteID(ctx, homesync.EntityTenant, "")
	require.NoError(t, err)
	require.Nil(t, got)

	// Entity types are separate namespaces.
	got, err = s.FindByRemoteID(ctx, homesync.EntityProperty, "r1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFetchAllOrdersByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, s.Upsert(ctx, &homesync.Record{
			EntityType: homesync.EntityFeedEvent,
			LocalID:    ids[i],
			Payload:    json.RawMessage(`{}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.FetchAll(ctx, homesync.EntityFeedEvent)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, rec := range all {
		require.Equal(t, ids[i], rec.LocalID, "oldest first")
	}
}
