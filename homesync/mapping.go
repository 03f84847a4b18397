// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Enum mapping tables between the remote's spellings and the local
// enumerations. Each table is exhaustive over the spellings the remote is
// known to emit; anything unrecognized maps to the documented fallback
// instead of failing the pull pass (availability over strict validation).

var maintenanceStatusFromRemote = map[string]MaintenanceStatus{
	"pending":     MaintenanceNew,
	"open":        MaintenanceNew,
	"in_progress": MaintenanceInProgress,
	"in-progress": MaintenanceInProgress,
	"completed":   MaintenanceCompleted,
	"done":        MaintenanceCompleted,
	"cancelled":   MaintenanceCancelled,
	"canceled":    MaintenanceCancelled,
}

// maintenanceStatusToRemote is the inverse spelling table used when pushing
// a queued status update back to the remote.
var maintenanceStatusToRemote = map[MaintenanceStatus]string{
	MaintenanceNew:        "pending",
	MaintenanceInProgress: "in_progress",
	MaintenanceCompleted:  "completed",
	MaintenanceCancelled:  "cancelled",
}

var maintenanceCategoryFromRemote = map[string]MaintenanceCategory{
	"plumbing":   CategoryPlumbing,
	"electrical": CategoryElectrical,
	"hvac":       CategoryHVAC,
	"appliance":  CategoryAppliance,
	"appliances": CategoryAppliance,
	"structural": CategoryStructural,
	"other":      CategoryOther,
}

var maintenancePriorityFromRemote = map[string]MaintenancePriority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"normal": PriorityMedium,
	"high":   PriorityHigh,
	"urgent": PriorityUrgent,
}

var propertyKindFromRemote = map[string]PropertyKind{
	"single_family": PropertySingleFamily,
	"single-family": PropertySingleFamily,
	"house":         PropertySingleFamily,
	"multi_family":  PropertyMultiFamily,
	"multi-family":  PropertyMultiFamily,
	"duplex":        PropertyMultiFamily,
	"condo":         PropertyCondo,
	"apartment":     PropertyApartment,
	"commercial":    PropertyCommercial,
	"other":         PropertyOther,
}

var paymentStatusFromRemote = map[string]PaymentStatus{
	"pending":   PaymentPending,
	"paid":      PaymentPaid,
	"succeeded": PaymentPaid,
	"late":      PaymentLate,
	"past_due":  PaymentLate,
	"failed":    PaymentFailed,
}

var paymentMethodFromRemote = map[string]PaymentMethod{
	"card":          MethodCard,
	"credit_card":   MethodCard,
	"bank_transfer": MethodBankTransfer,
	"ach":           MethodBankTransfer,
	"cash":          MethodCash,
	"check":         MethodCheck,
	"other":         MethodOther,
}

var feedEventKindFromRemote = map[string]FeedEventKind{
	"payment_received":    FeedPaymentReceived,
	"maintenance_opened":  FeedMaintenanceOpened,
	"maintenance_updated": FeedMaintenanceUpdated,
	"tenant_added":        FeedTenantAdded,
	"note":                FeedNote,
}

// MapMaintenanceStatus translates a remote status string into the local
// enumeration. Unrecognized values fall back to MaintenanceNew.
func MapMaintenanceStatus(remote string) MaintenanceStatus {
	if s, ok := maintenanceStatusFromRemote[strings.ToLower(remote)]; ok {
		return s
	}
	return MaintenanceNew
}

// MaintenanceStatusToRemote returns the remote spelling for a local status.
func MaintenanceStatusToRemote(s MaintenanceStatus) (string, error) {
	remote, ok := maintenanceStatusToRemote[s]
	if !ok {
		return "", fmt.Errorf("unknown maintenance status %q", s)
	}
	return remote, nil
}

// MapMaintenanceCategory translates a remote category string; unrecognized
// values fall back to CategoryOther.
func MapMaintenanceCategory(remote string) MaintenanceCategory {
	if c, ok := maintenanceCategoryFromRemote[strings.ToLower(remote)]; ok {
		return c
	}
	return CategoryOther
}

// MapMaintenancePriority translates a remote priority string; unrecognized
// values fall back to PriorityMedium.
func MapMaintenancePriority(remote string) MaintenancePriority {
	if p, ok := maintenancePriorityFromRemote[strings.ToLower(remote)]; ok {
		return p
	}
	return PriorityMedium
}

// MapPropertyKind translates a remote property type string; unrecognized
// values fall back to PropertyOther.
func MapPropertyKind(remote string) PropertyKind {
	if k, ok := propertyKindFromRemote[strings.ToLower(remote)]; ok {
		return k
	}
	return PropertyOther
}

// MapPaymentStatus translates a remote payment status string; unrecognized
// values fall back to PaymentPending.
func MapPaymentStatus(remote string) PaymentStatus {
	if s, ok := paymentStatusFromRemote[strings.ToLower(remote)]; ok {
		return s
	}
	return PaymentPending
}

// MapPaymentMethod translates a remote payment method string; unrecognized
// values fall back to MethodOther.
func MapPaymentMethod(remote string) PaymentMethod {
	if m, ok := paymentMethodFromRemote[strings.ToLower(remote)]; ok {
		return m
	}
	return MethodOther
}

// MapFeedEventKind translates a remote feed kind string; unrecognized values
// fall back to FeedOther.
func MapFeedEventKind(remote string) FeedEventKind {
	if k, ok := feedEventKindFromRemote[strings.ToLower(remote)]; ok {
		return k
	}
	return FeedOther
}

// SplitFullName splits a combined remote name into local first/last parts.
// A single word becomes the first name; everything after the first word
// joins into the last name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// mapPropertyDTO converts a remote property document into a local record
// with no local identifier assigned yet.
func mapPropertyDTO(d *PropertyDTO) (*Record, error) {
	p := Property{
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		Zip:         d.Zip,
		Kind:        MapPropertyKind(d.PropertyType),
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		MonthlyRent: d.MonthlyRent,
		Notes:       d.Notes,
	}
	return remoteRecord(EntityProperty, d.ID, d.CreatedAt, d.UpdatedAt, p)
}

func mapTenantDTO(d *TenantDTO) (*Record, error) {
	first, last := SplitFullName(d.FullName)
	t := Tenant{
		FirstName:        first,
		LastName:         last,
		Email:            d.Email,
		Phone:            d.Phone,
		PropertyRemoteID: d.PropertyID,
		LeaseStart:       d.LeaseStart,
		LeaseEnd:         d.LeaseEnd,
		MonthlyRent:      d.MonthlyRent,
	}
	return remoteRecord(EntityTenant, d.ID, d.CreatedAt, d.UpdatedAt, t)
}

func mapMaintenanceRequestDTO(d *MaintenanceRequestDTO) (*Record, error) {
	m := MaintenanceRequest{
		PropertyRemoteID:   d.PropertyID,
		Title:              d.Title,
		Description:        d.Description,
		Status:             MapMaintenanceStatus(d.Status),
		Category:           MapMaintenanceCategory(d.Category),
		Priority:           MapMaintenancePriority(d.Priority),
		ContractorRemoteID: d.ContractorID,
	}
	return remoteRecord(EntityMaintenanceRequest, d.ID, d.CreatedAt, d.UpdatedAt, m)
}

func mapContractorDTO(d *ContractorDTO) (*Record, error) {
	first, last := SplitFullName(d.FullName)
	name := strings.TrimSpace(first + " " + last)
	c := Contractor{
		Name:       name,
		Company:    d.Company,
		Trade:      d.Trade,
		Email:      d.Email,
		Phone:      d.Phone,
		HourlyRate: d.HourlyRate,
	}
	return remoteRecord(EntityContractor, d.ID, d.CreatedAt, d.UpdatedAt, c)
}

func mapPaymentDTO(d *PaymentDTO) (*Record, error) {
	p := Payment{
		TenantRemoteID:   d.TenantID,
		PropertyRemoteID: d.PropertyID,
		Amount:           d.Amount,
		Status:           MapPaymentStatus(d.Status),
		Method:           MapPaymentMethod(d.Method),
		PaidOn:           d.PaidOn,
		Memo:             d.Memo,
	}
	return remoteRecord(EntityPayment, d.ID, d.CreatedAt, d.UpdatedAt, p)
}

func mapFeedEventDTO(d *FeedEventDTO) (*Record, error) {
	f := FeedEvent{
		Kind:            MapFeedEventKind(d.Kind),
		SubjectRemoteID: d.SubjectID,
		Summary:         d.Summary,
		OccurredAt:      d.OccurredAt,
	}
	return remoteRecord(EntityFeedEvent, d.ID, d.CreatedAt, d.UpdatedAt, f)
}

// remoteRecord builds a Record from mapped domain fields. LocalID is left
// empty; the pull phase assigns a fresh one only when no local record with
// this remote identifier exists yet.
func remoteRecord(et EntityType, remoteID string, createdAt, updatedAt time.Time, fields any) (*Record, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", et, err)
	}
	return &Record{
		EntityType: et,
		RemoteID:   remoteID,
		Payload:    payload,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}
