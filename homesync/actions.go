// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ActionKind tags the closed set of pending mutation kinds.
type ActionKind string

const (
	ActionCreateEntity  ActionKind = "create-entity"
	ActionUpdateStatus  ActionKind = "update-status"
	ActionRecordPayment ActionKind = "record-payment"
)

// ActionPayload is the sealed payload union for pending actions. Exactly one
// concrete type exists per action kind so drain routing can switch
// exhaustively over it.
type ActionPayload interface {
	Kind() ActionKind
}

// CreateEntityPayload creates a locally authored entity on the remote. On
// acknowledgment the local record identified by LocalID receives the
// remote-assigned identifier.
type CreateEntityPayload struct {
	EntityType EntityType      `json:"entity_type" validate:"required,oneof=property tenant maintenance_request contractor payment feed_event"`
	LocalID    string          `json:"local_id" validate:"required,uuid4"`
	Fields     json.RawMessage `json:"fields" validate:"required"`
}

func (*CreateEntityPayload) Kind() ActionKind { return ActionCreateEntity }

// UpdateStatusPayload moves a maintenance request to a new status on the
// remote. RemoteID must already be known, so status updates can only target
// acknowledged records.
type UpdateStatusPayload struct {
	RemoteID string            `json:"remote_id" validate:"required"`
	Status   MaintenanceStatus `json:"status" validate:"required,oneof=new in_progress completed cancelled"`
}

func (*UpdateStatusPayload) Kind() ActionKind { return ActionUpdateStatus }

// RecordPaymentPayload records a payment on the remote. LocalID identifies
// the local payment record awaiting acknowledgment.
type RecordPaymentPayload struct {
	LocalID          string          `json:"local_id" validate:"required,uuid4"`
	TenantRemoteID   string          `json:"tenant_remote_id" validate:"required"`
	PropertyRemoteID string          `json:"property_remote_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method" validate:"required,oneof=card bank_transfer cash check other"`
	PaidOn           time.Time       `json:"paid_on"`
	Memo             string          `json:"memo,omitempty"`
}

func (*RecordPaymentPayload) Kind() ActionKind { return ActionRecordPayment }

// PendingAction is one durable queued mutation awaiting remote confirmation.
type PendingAction struct {
	ID       string
	Kind     ActionKind
	Payload  ActionPayload
	QueuedAt time.Time
}

var actionValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateActionPayload checks a payload against its struct constraints
// before it is allowed into the queue. A payload that fails here would fail
// on every drain, so it is rejected up front.
func ValidateActionPayload(p ActionPayload) error {
	switch v := p.(type) {
	case *CreateEntityPayload:
		return actionValidator.Struct(v)
	case *UpdateStatusPayload:
		return actionValidator.Struct(v)
	case *RecordPaymentPayload:
		if err := actionValidator.Struct(v); err != nil {
			return err
		}
		if !v.Amount.IsPositive() {
			return fmt.Errorf("payment amount must be positive, got %s", v.Amount)
		}
		if v.PaidOn.IsZero() {
			return fmt.Errorf("payment paid_on must be set")
		}
		return nil
	default:
		return fmt.Errorf("unknown action payload type %T", p)
	}
}

// EncodeActionPayload serializes a payload for durable queue storage.
func EncodeActionPayload(p ActionPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodeActionPayload restores a payload from queue storage. The kind tag
// selects the concrete variant; unknown kinds are rejected.
func DecodeActionPayload(kind ActionKind, data []byte) (ActionPayload, error) {
	var p ActionPayload
	switch kind {
	case ActionCreateEntity:
		p = &CreateEntityPayload{}
	case ActionUpdateStatus:
		p = &UpdateStatusPayload{}
	case ActionRecordPayment:
		p = &RecordPaymentPayload{}
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}
