package homesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, v any) *http.Response {
	body, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testGateway(rt roundTripFunc) *HTTPGateway {
	return NewHTTPGateway("http://remote.test", "user-1", StaticToken("tok"),
		&http.Client{Transport: rt})
}

func TestHTTPGateway_ListSinceAndAuthHeader(t *testing.T) {
	since := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	var gotReq *http.Request

	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		gotReq = r
		return jsonResponse(200, []MaintenanceRequestDTO{
			{ID: "r1", Title: "Broken heater", Status: "pending", Category: "hvac", Priority: "high"},
		}), nil
	})

	dtos, err := gw.ListMaintenanceRequests(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	require.Equal(t, "r1", dtos[0].ID)

	require.Equal(t, "/api/v1/maintenance-requests", gotReq.URL.Path)
	require.Equal(t, "user-1", gotReq.URL.Query().Get("user_id"))
	require.Equal(t, since.Format(time.RFC3339Nano), gotReq.URL.Query().Get("since"))
	require.Equal(t, "Bearer tok", gotReq.Header.Get("Authorization"))
}

func TestHTTPGateway_ListZeroSinceOmitsParam(t *testing.T) {
	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		require.Empty(t, r.URL.Query().Get("since"))
		return jsonResponse(200, []PropertyDTO{}), nil
	})
	_, err := gw.ListProperties(context.Background(), time.Time{})
	require.NoError(t, err)
}

func TestHTTPGateway_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(*testing.T, error)
	}{
		{"unauthorized", 401, func(t *testing.T, err error) {
			require.True(t, IsAuthError(err), "expected AuthError, got %v", err)
		}},
		{"forbidden", 403, func(t *testing.T, err error) {
			require.True(t, IsAuthError(err), "expected AuthError, got %v", err)
		}},
		{"server error", 500, func(t *testing.T, err error) {
			require.True(t, IsServerError(err), "expected ServerError, got %v", err)
		}},
		{"validation rejection", 422, func(t *testing.T, err error) {
			require.True(t, IsServerError(err), "expected ServerError, got %v", err)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := testGateway(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, map[string]string{"error": "nope"}), nil
			})
			_, err := gw.ListTenants(context.Background(), time.Time{})
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestHTTPGateway_NetworkFailureIsTransportError(t *testing.T) {
	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("connection refused")
	})
	_, err := gw.ListPayments(context.Background(), time.Time{})
	require.Error(t, err)
	require.True(t, IsTransportError(err), "expected TransportError, got %v", err)
}

func TestHTTPGateway_CreateEntityReturnsRemoteDoc(t *testing.T) {
	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/properties", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		return jsonResponse(201, map[string]any{
			"id":      "p99",
			"address": "12 High St",
		}), nil
	})

	doc, err := gw.CreateEntity(context.Background(), EntityProperty,
		json.RawMessage(`{"address":"12 High St"}`))
	require.NoError(t, err)
	require.Equal(t, "p99", doc.ID)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(doc.Fields, &fields))
	require.Equal(t, "12 High St", fields["address"])
	require.NotContains(t, fields, "id")
}

func TestHTTPGateway_UpdateStatusSendsRemoteSpelling(t *testing.T) {
	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/maintenance-requests/r1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// Local "new" travels as the remote's "pending" spelling.
		require.Equal(t, "pending", body["status"])
		return jsonResponse(200, map[string]any{"id": "r1", "status": "pending"}), nil
	})

	doc, err := gw.UpdateMaintenanceStatus(context.Background(), "r1", MaintenanceNew)
	require.NoError(t, err)
	require.Equal(t, "r1", doc.ID)
}

func TestHTTPGateway_RecordPayment(t *testing.T) {
	gw := testGateway(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/payments", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "t1", body["tenant_id"])
		return jsonResponse(201, map[string]any{"id": "pay7"}), nil
	})

	doc, err := gw.RecordPayment(context.Background(), &RecordPaymentPayload{
		LocalID:        "00000000-0000-4000-8000-000000000001",
		TenantRemoteID: "t1",
		Amount:         decimal.NewFromInt(1500),
		Method:         MethodBankTransfer,
		PaidOn:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "pay7", doc.ID)
}
