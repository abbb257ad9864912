package domain

import (
	"errors"
	"time"
)

// WorkOrderStatus enumerates lifecycle states for work orders.
type WorkOrderStatus string

const (
	WorkOrderStatusPending    WorkOrderStatus = "pending"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusAccepted   WorkOrderStatus = "accepted"
	WorkOrderStatusRejected   WorkOrderStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderStatusPending, WorkOrderStatusInProgress, WorkOrderStatusCompleted,
		WorkOrderStatusAccepted, WorkOrderStatusRejected:
		return true
	}
	return false
}

// EquipmentStatus describes the state of the serviced equipment.
type EquipmentStatus string

const (
	EquipmentStatusStopped       EquipmentStatus = "stopped"
	EquipmentStatusFloorDisabled EquipmentStatus = "floor_disabled"
	EquipmentStatusWorking       EquipmentStatus = "working"
)

// Valid reports whether s is a known equipment status.
func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentStatusStopped, EquipmentStatusFloorDisabled, EquipmentStatusWorking:
		return true
	}
	return false
}

// MaxEquipmentNumberLen bounds WorkOrder.EquipmentNumber.
const MaxEquipmentNumberLen = 10

// WorkOrder is a maintenance request assigned to exactly one technician.
type WorkOrder struct {
	ID              string
	BuildingName    string
	EquipmentNumber string
	ClientName      string
	Description     string
	Requester       string
	Technician      User
	Status          WorkOrderStatus
	EquipmentStatus EquipmentStatus
	CreatedAt       time.Time
	CompletedAt     *time.Time
	Observations    *string
}

// WorkOrderPatch is a partial update. Nil fields are left untouched.
type WorkOrderPatch struct {
	Observations    *string
	Status          *WorkOrderStatus
	EquipmentStatus *EquipmentStatus
}

// Empty reports whether the patch carries no changes.
func (p WorkOrderPatch) Empty() bool {
	return p.Observations == nil && p.Status == nil && p.EquipmentStatus == nil
}

// Caller is the authenticated identity performing an operation.
type Caller struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

var (
	ErrAdminRequired       = errors.New("only administrators may perform this action")
	ErrNotAssigned         = errors.New("caller is not the assigned technician")
	ErrTechnicianStatus    = errors.New("technicians may only accept or reject work orders")
	ErrInvalidStatus       = errors.New("invalid work order status")
	ErrInvalidEquipmentSts = errors.New("invalid equipment status")
)

// technicianStatuses are the only values a non-admin may set via status updates.
var technicianStatuses = map[WorkOrderStatus]struct{}{
	WorkOrderStatusAccepted: {},
	WorkOrderStatusRejected: {},
}

// CanManage reports whether the caller may mutate the work order at all.
func (w *WorkOrder) CanManage(caller Caller) bool {
	return caller.IsAdmin || w.Technician.ID == caller.ID
}

// AuthorizeStatusChange checks whether caller may set the work order to next.
func (w *WorkOrder) AuthorizeStatusChange(caller Caller, next WorkOrderStatus) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if !w.CanManage(caller) {
		return ErrNotAssigned
	}
	if caller.IsAdmin {
		return nil
	}
	if _, ok := technicianStatuses[next]; !ok {
		return ErrTechnicianStatus
	}
	return nil
}

// SetStatus moves the work order to next, keeping CompletedAt set exactly while completed.
func (w *WorkOrder) SetStatus(next WorkOrderStatus, now time.Time) {
	switch {
	case next == WorkOrderStatusCompleted && (w.Status != WorkOrderStatusCompleted || w.CompletedAt == nil):
		stamp := now
		w.CompletedAt = &stamp
	case next != WorkOrderStatusCompleted:
		w.CompletedAt = nil
	}
	w.Status = next
}

// ApplyPatch applies the present fields of p. Enum values are validated before anything changes.
func (w *WorkOrder) ApplyPatch(p WorkOrderPatch, now time.Time) error {
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.EquipmentStatus != nil && !p.EquipmentStatus.Valid() {
		return ErrInvalidEquipmentSts
	}
	if p.Observations != nil {
		obs := *p.Observations
		w.Observations = &obs
	}
	if p.Status != nil {
		w.SetStatus(*p.Status, now)
	}
	if p.EquipmentStatus != nil {
		w.EquipmentStatus = *p.EquipmentStatus
	}
	return nil
}

// VisibleTo reports whether the caller may read the work order.
func (w *WorkOrder) VisibleTo(caller Caller) bool {
	return caller.IsAdmin || w.Technician.ID == caller.ID
}
