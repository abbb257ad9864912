package dto

import (
	"github.com/spec-kit/workorder-service/internal/domain"
)

// CreateWorkOrderRequest payload. The requester is always the calling admin.
type CreateWorkOrderRequest struct {
	BuildingName    string                  `json:"buildingName" validate:"required"`
	EquipmentNumber string                  `json:"equipmentNumber" validate:"required,max=10"`
	ClientName      string                  `json:"clientName" validate:"required"`
	Description     string                  `json:"description" validate:"required"`
	TechnicianID    string                  `json:"technicianId" validate:"required"`
	EquipmentStatus *domain.EquipmentStatus `json:"equipmentStatus" validate:"omitempty,oneof=stopped floor_disabled working"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technicianId" validate:"required"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.WorkOrderStatus `json:"status" validate:"required,oneof=pending in_progress completed accepted rejected"`
}

// UpdateObservationsRequest payload. Absent fields are left untouched.
type UpdateObservationsRequest struct {
	Observations    *string                 `json:"observations"`
	Status          *domain.WorkOrderStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed accepted rejected"`
	EquipmentStatus *domain.EquipmentStatus `json:"equipmentStatus" validate:"omitempty,oneof=stopped floor_disabled working"`
}

// Patch converts the request into a domain patch.
func (r UpdateObservationsRequest) Patch() domain.WorkOrderPatch {
	return domain.WorkOrderPatch{
		Observations:    r.Observations,
		Status:          r.Status,
		EquipmentStatus: r.EquipmentStatus,
	}
}

// WorkOrderListQuery captures query filters for listing.
type WorkOrderListQuery struct {
	Statuses []domain.WorkOrderStatus
	Limit    int
	Offset   int
}
