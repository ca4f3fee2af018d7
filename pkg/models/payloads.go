package models

import (
	"encoding/json"

	"github.com/tabletools/core/errors"
)

// Payload is the decoded, type-specific body of a notification. Each
// NotificationType has its own variant with a known field set; unknown types
// decode to RawPayload so nothing is dropped at the ingestion boundary.
type Payload interface {
	NotificationType() NotificationType
}

// OrderPayload carries order lifecycle data.
type OrderPayload struct {
	OrderID     string   `json:"orderId"`
	TableNumber int      `json:"tableNumber,omitempty"`
	Status      string   `json:"status,omitempty"`
	Total       float64  `json:"total,omitempty"`
	Items       []string `json:"items,omitempty"`
}

func (OrderPayload) NotificationType() NotificationType { return TypeOrder }

// InventoryPayload carries stock level data.
type InventoryPayload struct {
	ItemID    string  `json:"itemId"`
	ItemName  string  `json:"itemName,omitempty"`
	Quantity  float64 `json:"quantity"`
	Threshold float64 `json:"threshold,omitempty"`
	Unit      string  `json:"unit,omitempty"`
}

func (InventoryPayload) NotificationType() NotificationType { return TypeInventory }

// StaffPayload carries clock-in/out and scheduling data.
type StaffPayload struct {
	StaffID string   `json:"staffId"`
	Name    string   `json:"name,omitempty"`
	Action  string   `json:"action,omitempty"` // clock_in|clock_out
	Shift   string   `json:"shift,omitempty"`
	At      FlexTime `json:"at,omitempty"`
}

func (StaffPayload) NotificationType() NotificationType { return TypeStaff }

// TaskPayload carries task assignment data.
type TaskPayload struct {
	TaskID     string   `json:"taskId"`
	AssigneeID string   `json:"assigneeId,omitempty"`
	Status     string   `json:"status,omitempty"` // assigned|completed
	DueAt      FlexTime `json:"dueAt,omitempty"`
}

func (TaskPayload) NotificationType() NotificationType { return TypeTask }

// VoicePayload carries a transcribed voice command.
type VoicePayload struct {
	Command    string  `json:"command"`
	Transcript string  `json:"transcript,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

func (VoicePayload) NotificationType() NotificationType { return TypeVoice }

// SystemPayload carries a platform-level alert.
type SystemPayload struct {
	Kind     string   `json:"type,omitempty"`
	Message  string   `json:"message,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

func (SystemPayload) NotificationType() NotificationType { return TypeSystem }

// RawPayload holds a payload for an unrecognized notification type. It is
// passed through untouched.
type RawPayload struct {
	Type NotificationType
	Data json.RawMessage
}

func (r RawPayload) NotificationType() NotificationType { return r.Type }

// DecodePayload validates and decodes raw payload data into the tagged variant
// for the given notification type. Empty data yields a zero-valued variant;
// malformed JSON yields a PAYLOAD_INVALID error and the caller should keep the
// raw bytes instead of discarding the notification.
func DecodePayload(t NotificationType, data json.RawMessage) (Payload, error) {
	decode := func(event string, v Payload) (Payload, error) {
		if len(data) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(data, v); err != nil {
			return nil, errors.PayloadInvalid(event, err)
		}
		return v, nil
	}

	switch t {
	case TypeOrder:
		p := &OrderPayload{}
		return decode(string(t), p)
	case TypeInventory:
		p := &InventoryPayload{}
		return decode(string(t), p)
	case TypeStaff:
		p := &StaffPayload{}
		return decode(string(t), p)
	case TypeTask:
		p := &TaskPayload{}
		return decode(string(t), p)
	case TypeVoice:
		p := &VoicePayload{}
		return decode(string(t), p)
	case TypeSystem:
		p := &SystemPayload{}
		return decode(string(t), p)
	default:
		return RawPayload{Type: t, Data: data}, nil
	}
}
