// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies one of the synchronized domain collections.
type EntityType string

const (
	EntityProperty           EntityType = "property"
	EntityTenant             EntityType = "tenant"
	EntityMaintenanceRequest EntityType = "maintenance_request"
	EntityContractor         EntityType = "contractor"
	EntityPayment            EntityType = "payment"
	EntityFeedEvent          EntityType = "feed_event"
)

// EntityTypes lists every synchronized collection in pull order.
var EntityTypes = []EntityType{
	EntityProperty,
	EntityTenant,
	EntityMaintenanceRequest,
	EntityContractor,
	EntityPayment,
	EntityFeedEvent,
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityProperty, EntityTenant, EntityMaintenanceRequest,
		EntityContractor, EntityPayment, EntityFeedEvent:
		return true
	default:
		return false
	}
}

// Record is the locally persisted shape shared by all entity types.
//
// LocalID is generated on this device and stays stable for the lifetime of
// the record. RemoteID is empty until the remote has acknowledged the record;
// once assigned it never changes. Payload holds the per-type domain fields
// (one of Property, Tenant, MaintenanceRequest, Contractor, Payment,
// FeedEvent) as JSON.
type Record struct {
	EntityType EntityType      `json:"entity_type"`
	LocalID    string          `json:"local_id"`
	RemoteID   string          `json:"remote_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Confirmed reports whether the record has been acknowledged by the remote.
// Unconfirmed records must never be touched by a pull pass.
func (r *Record) Confirmed() bool { return r.RemoteID != "" }

// MaintenanceStatus is the local status enumeration for maintenance requests.
type MaintenanceStatus string

const (
	MaintenanceNew        MaintenanceStatus = "new"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceCategory is the local category enumeration for maintenance requests.
type MaintenanceCategory string

const (
	CategoryPlumbing   MaintenanceCategory = "plumbing"
	CategoryElectrical MaintenanceCategory = "electrical"
	CategoryHVAC       MaintenanceCategory = "hvac"
	CategoryAppliance  MaintenanceCategory = "appliance"
	CategoryStructural MaintenanceCategory = "structural"
	CategoryOther      MaintenanceCategory = "other"
)

// MaintenancePriority is the local priority enumeration for maintenance requests.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityHigh   MaintenancePriority = "high"
	PriorityUrgent MaintenancePriority = "urgent"
)

// PropertyKind is the local property type enumeration.
type PropertyKind string

const (
	PropertySingleFamily PropertyKind = "single_family"
	PropertyMultiFamily  PropertyKind = "multi_family"
	PropertyCondo        PropertyKind = "condo"
	PropertyApartment    PropertyKind = "apartment"
	PropertyCommercial   PropertyKind = "commercial"
	PropertyOther        PropertyKind = "other"
)

// PaymentStatus is the local payment status enumeration.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentLate    PaymentStatus = "late"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentMethod is the local payment method enumeration.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodOther        PaymentMethod = "other"
)

// FeedEventKind is the local feed event enumeration.
type FeedEventKind string

const (
	FeedPaymentReceived    FeedEventKind = "payment_received"
	FeedMaintenanceOpened  FeedEventKind = "maintenance_opened"
	FeedMaintenanceUpdated FeedEventKind = "maintenance_updated"
	FeedTenantAdded        FeedEventKind = "tenant_added"
	FeedNote               FeedEventKind = "note"
	FeedOther              FeedEventKind = "other"
)

// Property holds the domain fields of a property record.
type Property struct {
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	Zip         string          `json:"zip"`
	Kind        PropertyKind    `json:"kind"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   float64         `json:"bathrooms"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Notes       string          `json:"notes,omitempty"`
}

// Tenant holds the domain fields of a tenant record. The remote keeps a
// single combined full name; locally the name is split into first/last.
type Tenant struct {
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	PropertyRemoteID string          `json:"property_remote_id,omitempty"`
	LeaseStart       time.Time       `json:"lease_start,omitempty"`
	LeaseEnd         time.Time       `json:"lease_end,omitempty"`
	MonthlyRent      decimal.Decimal `json:"monthly_rent"`
}

// MaintenanceRequest holds the domain fields of a maintenance request record.
type MaintenanceRequest struct {
	PropertyRemoteID   string              `json:"property_remote_id,omitempty"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	Status             MaintenanceStatus   `json:"status"`
	Category           MaintenanceCategory `json:"category"`
	Priority           MaintenancePriority `json:"priority"`
	ContractorRemoteID string              `json:"contractor_remote_id,omitempty"`
}

// Contractor holds the domain fields of a contractor record.
type Contractor struct {
	Name       string          `json:"name"`
	Company    string          `json:"company,omitempty"`
	Trade      string          `json:"trade"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// Payment holds the domain fields of a payment record.
type Payment struct {
	TenantRemoteID   string          `json:"tenant_remote_id,omitempty"`
	PropertyRemoteID string          `json:"property_remote_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PaymentStatus   `json:"status"`
	Method           PaymentMethod   `json:"method"`
	PaidOn           time.Time       `json:"paid_on"`
	Memo             string          `json:"memo,omitempty"`
}

// FeedEvent holds the domain fields of a feed event record.
type FeedEvent struct {
	Kind            FeedEventKind `json:"kind"`
	SubjectRemoteID string        `json:"subject_remote_id,omitempty"`
	Summary         string        `json:"summary"`
	OccurredAt      time.Time     `json:"occurred_at"`
}
