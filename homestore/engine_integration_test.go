package homestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkuntong/highlanderhomes-sub003/homesync"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// fakeRemote answers the gateway's list and create calls in-process.
type fakeRemote struct {
	createSeq int
	sinces    []string
}

func (r *fakeRemote) handle(req *http.Request) (*http.Response, error) {
	path := strings.TrimPrefix(req.URL.Path, "/api/v1/")

	if req.Method == http.MethodPost {
		r.createSeq++
		body, _ := io.ReadAll(req.Body)
		var fields map[string]any
		_ = json.Unmarshal(body, &fields)
		fields["id"] = "srv-" + uuid.NewString()[:8]
		if r.createSeq == 1 {
			fields["id"] = "srv-1"
		}
		out, _ := json.Marshal(fields)
		return jsonResponse(http.StatusCreated, string(out)), nil
	}

	r.sinces = append(r.sinces, req.URL.Query().Get("since"))
	switch path {
	case "maintenance-requests":
		return jsonResponse(http.StatusOK, `[{
			"id": "r1",
			"title": "Broken heater",
			"status": "pending",
			"category": "hvac",
			"priority": "high",
			"created_at": "2026-08-30T10:00:00Z",
			"updated_at": "2026-08-30T10:00:00Z"
		}]`), nil
	default:
		return jsonResponse(http.StatusOK, `[]`), nil
	}
}

// Exercises the real SQLite store beneath the full engine: a queued local
// create is pushed and acknowledged, remote deltas land in the store, and the
// watermark advances, all in one pass over a single database.
func TestEngineWithSQLiteStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	remote := &fakeRemote{}
	gw := homesync.NewHTTPGateway("http://remote.test", "user-1",
		homesync.StaticToken("tok"),
		&http.Client{Transport: roundTripFunc(remote.handle)})

	engine := homesync.NewEngine(s, s, s, gw, nil)

	localID := uuid.NewString()
	require.NoError(t, s.Upsert(ctx, &homesync.Record{
		EntityType: homesync.EntityProperty,
		LocalID:    localID,
		Payload:    json.RawMessage(`{"address":"12 High St"}`),
	}))
	_, err := engine.Enqueue(ctx, &homesync.CreateEntityPayload{
		EntityType: homesync.EntityProperty,
		LocalID:    localID,
		Fields:     json.RawMessage(`{"address":"12 High St"}`),
	})
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 1, res.Pushed)
	require.Equal(t, 1, res.Pulled)
	require.Equal(t, 1, res.Created)

	// The create was acknowledged against the durable record.
	rec, err := s.Get(ctx, homesync.EntityProperty, localID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "srv-1", rec.RemoteID)

	// The queue is empty again.
	n, err := s.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	// The pulled maintenance request landed with the local status spelling.
	mr, err := s.FindByRemoteID(ctx, homesync.EntityMaintenanceRequest, "r1")
	require.NoError(t, err)
	require.NotNil(t, mr)
	var fields homesync.MaintenanceRequest
	require.NoError(t, json.Unmarshal(mr.Payload, &fields))
	require.Equal(t, homesync.MaintenanceNew, fields.Status)

	// The watermark advanced and scopes the next pull.
	cursor, err := s.LastSync(ctx)
	require.NoError(t, err)
	require.False(t, cursor.IsZero())

	remote.sinces = nil
	res, err = engine.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Created, "second pull matches by remote id")
	for _, since := range remote.sinces {
		require.NotEmpty(t, since, "incremental pull sends the watermark")
	}

	all, err := s.FetchAll(ctx, homesync.EntityMaintenanceRequest)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
