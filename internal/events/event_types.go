package events

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorkOrderCreated       EventType = "work_order_created"
	EventWorkOrderAssigned      EventType = "work_order_assigned"
	EventWorkOrderStatusChanged EventType = "work_order_status_changed"
	EventWorkOrderUpdated       EventType = "work_order_updated"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// ActorFromCaller builds an Actor for the caller.
func ActorFromCaller(caller domain.Caller) Actor {
	return Actor{UserID: caller.ID, IsAdmin: caller.IsAdmin}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	WorkOrderID string      `json:"work_order_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// WorkOrderCreatedPayload payload.
type WorkOrderCreatedPayload struct {
	TechnicianID    string                 `json:"technician_id"`
	BuildingName    string                 `json:"building_name"`
	EquipmentNumber string                 `json:"equipment_number"`
	EquipmentStatus domain.EquipmentStatus `json:"equipment_status"`
}

// WorkOrderAssignedPayload payload.
type WorkOrderAssignedPayload struct {
	OldTechnicianID string `json:"old_technician_id"`
	NewTechnicianID string `json:"new_technician_id"`
}

// WorkOrderStatusChangedPayload payload.
type WorkOrderStatusChangedPayload struct {
	OldStatus domain.WorkOrderStatus `json:"old_status"`
	NewStatus domain.WorkOrderStatus `json:"new_status"`
}

// WorkOrderUpdatedPayload lists the fields a partial update touched.
type WorkOrderUpdatedPayload struct {
	Fields    []string               `json:"fields"`
	NewStatus domain.WorkOrderStatus `json:"new_status"`
}
