package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes a notification by the subsystem that produced it.
type NotificationType string

const (
	TypeOrder     NotificationType = "order"
	TypeInventory NotificationType = "inventory"
	TypeStaff     NotificationType = "staff"
	TypeVoice     NotificationType = "voice"
	TypeSystem    NotificationType = "system"
	TypeTask      NotificationType = "task"
)

// Priority is the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is a user-facing notification held by the client-side store.
type Notification struct {
	ID        string               `json:"id"`
	Type      NotificationType     `json:"type"`
	Priority  Priority             `json:"priority"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Timestamp FlexTime             `json:"timestamp"`
	Read      bool                 `json:"read"`
	Actions   []NotificationAction `json:"actions,omitempty"`
	Data      json.RawMessage      `json:"data,omitempty"`
}

// NotificationAction represents an action button attached to a notification.
type NotificationAction struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	Variant string `json:"variant,omitempty"` // primary|secondary|danger
}

// Envelope is a raw inbound message prior to normalization into a Notification.
// Every field is optional; Normalize fills in defaults.
type Envelope struct {
	ID        string               `json:"id,omitempty"`
	Type      NotificationType     `json:"type,omitempty"`
	Priority  Priority             `json:"priority,omitempty"`
	Title     string               `json:"title,omitempty"`
	Message   string               `json:"message,omitempty"`
	Timestamp FlexTime             `json:"timestamp,omitempty"`
	Actions   []NotificationAction `json:"actions,omitempty"`
	Data      json.RawMessage      `json:"data,omitempty"`
}

// Normalize converts an envelope into a Notification, assigning a client-side
// id and timestamp when the server did not supply them. Malformed fields fall
// back to defaults rather than rejecting the whole message.
func (e Envelope) Normalize() Notification {
	n := Notification{
		ID:        e.ID,
		Type:      e.Type,
		Priority:  e.Priority,
		Title:     e.Title,
		Message:   e.Message,
		Timestamp: e.Timestamp,
		Actions:   e.Actions,
		Data:      e.Data,
	}

	if !n.Type.Valid() {
		n.Type = TypeSystem
	}
	if !n.Priority.Valid() {
		n.Priority = PriorityMedium
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = Now()
	}
	if n.ID == "" {
		n.ID = GenerateID(n.Type, n.Timestamp.Time())
	}
	if n.Title == "" {
		n.Title = defaultTitle(n.Type)
	}

	return n
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case TypeOrder, TypeInventory, TypeStaff, TypeVoice, TypeSystem, TypeTask:
		return true
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// GenerateID creates a client-side notification id of the form
// type_timestamp_random, matching the ids the backend hands out.
func GenerateID(t NotificationType, at time.Time) string {
	random := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%d_%s", t, at.UnixMilli(), random)
}

func defaultTitle(t NotificationType) string {
	switch t {
	case TypeOrder:
		return "Order update"
	case TypeInventory:
		return "Inventory alert"
	case TypeStaff:
		return "Staff update"
	case TypeVoice:
		return "Voice command"
	case TypeTask:
		return "Task update"
	default:
		return "System notification"
	}
}
