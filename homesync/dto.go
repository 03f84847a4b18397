// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wire models for the remote backend. These are the shapes the remote
// returns from its query endpoints, distinct from the locally persisted
// Record payloads: the remote keeps a combined full name on tenants and
// its own enum spellings for statuses, categories and payment fields.

// PropertyDTO is the wire shape of a property document.
type PropertyDTO struct {
	ID           string          `json:"id"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Zip          string          `json:"zip"`
	PropertyType string          `json:"property_type"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    float64         `json:"bathrooms"`
	MonthlyRent  decimal.Decimal `json:"monthly_rent"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TenantDTO is the wire shape of a tenant document. FullName is a single
// combined field on the remote.
type TenantDTO struct {
	ID          string          `json:"id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	PropertyID  string          `json:"property_id,omitempty"`
	LeaseStart  time.Time       `json:"lease_start,omitempty"`
	LeaseEnd    time.Time       `json:"lease_end,omitempty"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MaintenanceRequestDTO is the wire shape of a maintenance request document.
// Status, Category and Priority carry the remote's spellings and are mapped
// through the tables in mapping.go.
type MaintenanceRequestDTO struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	Category     string    `json:"category"`
	Priority     string    `json:"priority"`
	ContractorID string    `json:"contractor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContractorDTO is the wire shape of a contractor document.
type ContractorDTO struct {
	ID         string          `json:"id"`
	FullName   string          `json:"full_name"`
	Company    string          `json:"company,omitempty"`
	Trade      string          `json:"trade"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PaymentDTO is the wire shape of a payment document.
type PaymentDTO struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id,omitempty"`
	PropertyID string          `json:"property_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Method     string          `json:"method"`
	PaidOn     time.Time       `json:"paid_on"`
	Memo       string          `json:"memo,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// FeedEventDTO is the wire shape of a feed event document.
type FeedEventDTO struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	SubjectID  string    `json:"subject_id,omitempty"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RemoteDoc is the generic envelope returned by remote mutations. ID is the
// remote-assigned identifier; Fields holds the remainder of the document.
type RemoteDoc struct {
	ID     string
	Fields json.RawMessage
}

// UnmarshalJSON splits the remote identifier out of the document body.
func (d *RemoteDoc) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode remote document: %w", err)
	}
	if raw, ok := m["id"]; ok {
		if err := json.Unmarshal(raw, &d.ID); err != nil {
			return fmt.Errorf("failed to decode remote document id: %w", err)
		}
		delete(m, "id")
	}
	rest, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to re-encode remote document fields: %w", err)
	}
	d.Fields = rest
	return nil
}
