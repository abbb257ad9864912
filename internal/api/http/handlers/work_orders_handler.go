package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/service"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// WorkOrdersHandler manages work order endpoints.
type WorkOrdersHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrdersHandler constructs handler.
func NewWorkOrdersHandler(workOrderService *service.WorkOrderService) *WorkOrdersHandler {
	return &WorkOrdersHandler{service: workOrderService}
}

// Create POST /work-orders.
func (h *WorkOrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateWorkOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := h.service.Create(c.UserContext(), principal.Caller(), service.WorkOrderCreateInput{
		BuildingName:    req.BuildingName,
		EquipmentNumber: req.EquipmentNumber,
		ClientName:      req.ClientName,
		Description:     req.Description,
		TechnicianID:    req.TechnicianID,
		EquipmentStatus: req.EquipmentStatus,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// List GET /work-orders.
func (h *WorkOrdersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	query, err := parseWorkOrderListQuery(c)
	if err != nil {
		return err
	}

	orders, err := h.service.FindAll(c.UserContext(), principal.Caller(), service.WorkOrderListFilter{
		Statuses: query.Statuses,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// AssignTechnician PATCH /work-orders/:id/assign-technician.
func (h *WorkOrdersHandler) AssignTechnician(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTechnicianRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := h.service.AssignTechnician(c.UserContext(), principal.Caller(), c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// UpdateStatus PATCH /work-orders/:id/status.
func (h *WorkOrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.UserContext(), principal.Caller(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// UpdateObservations PATCH /work-orders/:id/observations.
func (h *WorkOrdersHandler) UpdateObservations(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateObservationsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateObservations(c.UserContext(), principal.Caller(), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func parseWorkOrderListQuery(c *fiber.Ctx) (dto.WorkOrderListQuery, error) {
	var query dto.WorkOrderListQuery
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Statuses = append(query.Statuses, domain.WorkOrderStatus(part))
			}
		}
	}

	var err error
	if query.Limit, err = parseNonNegativeInt(c.Query("limit")); err != nil {
		return query, apperrors.NewValidationError("invalid query", map[string]any{"limit": err.Error()})
	}
	if query.Offset, err = parseNonNegativeInt(c.Query("offset")); err != nil {
		return query, apperrors.NewValidationError("invalid query", map[string]any{"offset": err.Error()})
	}
	return query, nil
}

func parseNonNegativeInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
