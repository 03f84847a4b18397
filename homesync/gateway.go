// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Gateway is the typed façade over the remote backend's query and mutation
// endpoints. It performs no caching and no retries; retry policy belongs to
// the caller. Mutations are safe to resubmit but are NOT idempotent: the
// remote assigns no deduplication tokens, so a retried create that already
// landed will create a second document.
type Gateway interface {
	// Query family. A zero since time means "everything".
	ListProperties(ctx context.Context, since time.Time) ([]PropertyDTO, error)
	ListTenants(ctx context.Context, since time.Time) ([]TenantDTO, error)
	ListMaintenanceRequests(ctx context.Context, since time.Time) ([]MaintenanceRequestDTO, error)
	ListContractors(ctx context.Context, since time.Time) ([]ContractorDTO, error)
	ListPayments(ctx context.Context, since time.Time) ([]PaymentDTO, error)
	ListFeedEvents(ctx context.Context, since time.Time) ([]FeedEventDTO, error)

	// Mutation family.
	CreateEntity(ctx context.Context, et EntityType, fields json.RawMessage) (*RemoteDoc, error)
	UpdateMaintenanceStatus(ctx context.Context, remoteID string, status MaintenanceStatus) (*RemoteDoc, error)
	RecordPayment(ctx context.Context, p *RecordPaymentPayload) (*RemoteDoc, error)
}

// collectionPaths maps entity types to the remote's collection paths.
var collectionPaths = map[EntityType]string{
	EntityProperty:           "properties",
	EntityTenant:             "tenants",
	EntityMaintenanceRequest: "maintenance-requests",
	EntityContractor:         "contractors",
	EntityPayment:            "payments",
	EntityFeedEvent:          "feed-events",
}

// TokenFunc supplies the externally-managed bearer credential. This layer
// neither creates nor refreshes it.
type TokenFunc func(ctx context.Context) (string, error)

// HTTPGateway implements Gateway over the backend's JSON HTTP API.
type HTTPGateway struct {
	BaseURL string
	UserID  string
	Token   TokenFunc
	HTTP    *http.Client
}

// NewHTTPGateway creates a gateway for one authenticated user. Transport
// timeouts live on the supplied client; pass nil for a default 30s client.
func NewHTTPGateway(baseURL, userID string, token TokenFunc, httpClient *http.Client) *HTTPGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGateway{
		BaseURL: baseURL,
		UserID:  userID,
		Token:   token,
		HTTP:    httpClient,
	}
}

func (g *HTTPGateway) ListProperties(ctx context.Context, since time.Time) ([]PropertyDTO, error) {
	var out []PropertyDTO
	if err := g.list(ctx, EntityProperty, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) ListTenants(ctx context.Context, since time.Time) ([]TenantDTO, error) {
	var out []TenantDTO
	if err := g.list(ctx, EntityTenant, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) ListMaintenanceRequests(ctx context.Context, since time.Time) ([]MaintenanceRequestDTO, error) {
	var out []MaintenanceRequestDTO
	if err := g.list(ctx, EntityMaintenanceRequest, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) ListContractors(ctx context.Context, since time.Time) ([]ContractorDTO, error) {
	var out []ContractorDTO
	if err := g.list(ctx, EntityContractor, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) ListPayments(ctx context.Context, since time.Time) ([]PaymentDTO, error) {
	var out []PaymentDTO
	if err := g.list(ctx, EntityPayment, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTTPGateway) ListFeedEvents(ctx context.Context, since time.Time) ([]FeedEventDTO, error) {
	var out []FeedEventDTO
	if err := g.list(ctx, EntityFeedEvent, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEntity creates a document in the entity's collection and returns the
// remote's view of it, including the remote-assigned identifier.
func (g *HTTPGateway) CreateEntity(ctx context.Context, et EntityType, fields json.RawMessage) (*RemoteDoc, error) {
	path, ok := collectionPaths[et]
	if !ok {
		return nil, fmt.Errorf("no remote collection for entity type %q", et)
	}
	var doc RemoteDoc
	if err := g.do(ctx, http.MethodPost, g.BaseURL+"/api/v1/"+path, fields, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateMaintenanceStatus transitions a maintenance request on the remote.
// The local status is translated to the remote's spelling before sending.
func (g *HTTPGateway) UpdateMaintenanceStatus(ctx context.Context, remoteID string, status MaintenanceStatus) (*RemoteDoc, error) {
	remoteStatus, err := MaintenanceStatusToRemote(status)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]string{"status": remoteStatus})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status update: %w", err)
	}
	endpoint := fmt.Sprintf("%s/api/v1/maintenance-requests/%s/status", g.BaseURL, url.PathEscape(remoteID))
	var doc RemoteDoc
	if err := g.do(ctx, http.MethodPost, endpoint, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RecordPayment creates a payment document on the remote.
func (g *HTTPGateway) RecordPayment(ctx context.Context, p *RecordPaymentPayload) (*RemoteDoc, error) {
	body, err := json.Marshal(map[string]any{
		"tenant_id":   p.TenantRemoteID,
		"property_id": p.PropertyRemoteID,
		"amount":      p.Amount,
		"method":      string(p.Method),
		"paid_on":     p.PaidOn,
		"memo":        p.Memo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment: %w", err)
	}
	var doc RemoteDoc
	if err := g.do(ctx, http.MethodPost, g.BaseURL+"/api/v1/payments", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// list fetches one collection, optionally bounded below by since.
func (g *HTTPGateway) list(ctx context.Context, et EntityType, since time.Time, out any) error {
	path, ok := collectionPaths[et]
	if !ok {
		return fmt.Errorf("no remote collection for entity type %q", et)
	}
	q := url.Values{}
	q.Set("user_id", g.UserID)
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}
	endpoint := g.BaseURL + "/api/v1/" + path + "?" + q.Encode()
	return g.do(ctx, http.MethodGet, endpoint, nil, out)
}

// do performs one HTTP round trip and classifies failures into the error
// taxonomy: network failures become TransportError, 401/403 become
// AuthError, any other non-2xx becomes ServerError.
func (g *HTTPGateway) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	token, err := g.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bearer token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return &ServerError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
