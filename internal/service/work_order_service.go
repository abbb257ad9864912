package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/repository"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// WorkOrderService coordinates work order workflows.
type WorkOrderService struct {
	orders     repository.WorkOrderRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// WorkOrderDependencies bundles repositories for work order service.
type WorkOrderDependencies struct {
	WorkOrderRepo repository.WorkOrderRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Clock         func() time.Time
}

// WorkOrderCreateInput describes work order creation payload.
type WorkOrderCreateInput struct {
	BuildingName    string
	EquipmentNumber string
	ClientName      string
	Description     string
	TechnicianID    string
	EquipmentStatus *domain.EquipmentStatus
}

// WorkOrderListFilter describes listing filters.
type WorkOrderListFilter struct {
	Statuses []domain.WorkOrderStatus
	Limit    int
	Offset   int
}

// NewWorkOrderService constructs the service.
func NewWorkOrderService(deps WorkOrderDependencies) *WorkOrderService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &WorkOrderService{
		orders:     deps.WorkOrderRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// Create opens a pending work order assigned to the given technician. Admin only.
func (s *WorkOrderService) Create(ctx context.Context, caller domain.Caller, input WorkOrderCreateInput) (domain.SanitizedWorkOrder, error) {
	if !caller.IsAdmin {
		return domain.SanitizedWorkOrder{}, mapRuleError(domain.ErrAdminRequired)
	}
	if err := validateCreateInput(input); err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	technician, err := s.loadTechnician(ctx, input.TechnicianID)
	if err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	equipment := domain.EquipmentStatusStopped
	if input.EquipmentStatus != nil {
		equipment = *input.EquipmentStatus
	}

	order := &domain.WorkOrder{
		BuildingName:    strings.TrimSpace(input.BuildingName),
		EquipmentNumber: strings.TrimSpace(input.EquipmentNumber),
		ClientName:      strings.TrimSpace(input.ClientName),
		Description:     strings.TrimSpace(input.Description),
		Requester:       caller.Name,
		Technician:      *technician,
		Status:          domain.WorkOrderStatusPending,
		EquipmentStatus: equipment,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrUnknownTechnician) {
			return domain.SanitizedWorkOrder{}, technicianNotFound(input.TechnicianID)
		}
		return domain.SanitizedWorkOrder{}, apperrors.MapError(err)
	}
	order.Technician = *technician

	s.publishEvent(ctx, events.Event{
		Type:        events.EventWorkOrderCreated,
		WorkOrderID: order.ID,
		Actor:       events.ActorFromCaller(caller),
		Payload: events.WorkOrderCreatedPayload{
			TechnicianID:    technician.ID,
			BuildingName:    order.BuildingName,
			EquipmentNumber: order.EquipmentNumber,
			EquipmentStatus: order.EquipmentStatus,
		},
	})
	return domain.SanitizeWorkOrder(order), nil
}

// AssignTechnician replaces the technician of a work order. Admin only.
func (s *WorkOrderService) AssignTechnician(ctx context.Context, caller domain.Caller, workOrderID, technicianID string) (domain.SanitizedWorkOrder, error) {
	if !caller.IsAdmin {
		return domain.SanitizedWorkOrder{}, mapRuleError(domain.ErrAdminRequired)
	}
	order, err := s.loadWorkOrder(ctx, workOrderID)
	if err != nil {
		return domain.SanitizedWorkOrder{}, err
	}
	technician, err := s.loadTechnician(ctx, technicianID)
	if err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	previous := order.Technician.ID
	order.Technician = *technician
	if err := s.saveWorkOrder(ctx, order, technicianID); err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventWorkOrderAssigned,
		WorkOrderID: order.ID,
		Actor:       events.ActorFromCaller(caller),
		Payload: events.WorkOrderAssignedPayload{
			OldTechnicianID: previous,
			NewTechnicianID: technician.ID,
		},
	})
	return domain.SanitizeWorkOrder(order), nil
}

// UpdateStatus sets the status of a work order. Technicians may only accept or reject
// orders assigned to them; admins may set any status.
func (s *WorkOrderService) UpdateStatus(ctx context.Context, caller domain.Caller, workOrderID string, status domain.WorkOrderStatus) (domain.SanitizedWorkOrder, error) {
	if !status.Valid() {
		return domain.SanitizedWorkOrder{}, mapRuleError(domain.ErrInvalidStatus)
	}
	order, err := s.loadWorkOrder(ctx, workOrderID)
	if err != nil {
		return domain.SanitizedWorkOrder{}, err
	}
	if err := order.AuthorizeStatusChange(caller, status); err != nil {
		return domain.SanitizedWorkOrder{}, mapRuleError(err)
	}

	previous := order.Status
	order.SetStatus(status, s.now())
	if err := s.saveWorkOrder(ctx, order, ""); err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventWorkOrderStatusChanged,
		WorkOrderID: order.ID,
		Actor:       events.ActorFromCaller(caller),
		Payload: events.WorkOrderStatusChangedPayload{
			OldStatus: previous,
			NewStatus: order.Status,
		},
	})
	return domain.SanitizeWorkOrder(order), nil
}

// UpdateObservations applies a partial update on behalf of an admin or the assigned technician.
func (s *WorkOrderService) UpdateObservations(ctx context.Context, caller domain.Caller, workOrderID string, patch domain.WorkOrderPatch) (domain.SanitizedWorkOrder, error) {
	order, err := s.loadWorkOrder(ctx, workOrderID)
	if err != nil {
		return domain.SanitizedWorkOrder{}, err
	}
	if !order.CanManage(caller) {
		return domain.SanitizedWorkOrder{}, mapRuleError(domain.ErrNotAssigned)
	}
	if err := order.ApplyPatch(patch, s.now()); err != nil {
		return domain.SanitizedWorkOrder{}, mapRuleError(err)
	}
	if patch.Empty() {
		return domain.SanitizeWorkOrder(order), nil
	}
	if err := s.saveWorkOrder(ctx, order, ""); err != nil {
		return domain.SanitizedWorkOrder{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventWorkOrderUpdated,
		WorkOrderID: order.ID,
		Actor:       events.ActorFromCaller(caller),
		Payload: events.WorkOrderUpdatedPayload{
			Fields:    patchFields(patch),
			NewStatus: order.Status,
		},
	})
	return domain.SanitizeWorkOrder(order), nil
}

// FindAll lists work orders newest first. Non-admins only see orders assigned to them.
func (s *WorkOrderService) FindAll(ctx context.Context, caller domain.Caller, filter WorkOrderListFilter) ([]domain.SanitizedWorkOrder, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, mapRuleError(domain.ErrInvalidStatus)
		}
	}

	repoFilter := repository.WorkOrderFilter{
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	if !caller.IsAdmin {
		id := caller.ID
		repoFilter.TechnicianID = &id
	}

	orders, err := s.orders.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	visible := orders[:0]
	for i := range orders {
		if orders[i].VisibleTo(caller) {
			visible = append(visible, orders[i])
		}
	}
	return domain.SanitizeWorkOrders(visible), nil
}

func (s *WorkOrderService) loadWorkOrder(ctx context.Context, id string) (*domain.WorkOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("work order", map[string]any{"id": id})
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("work order", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return order, nil
}

func (s *WorkOrderService) loadTechnician(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, technicianNotFound(id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, technicianNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *WorkOrderService) saveWorkOrder(ctx context.Context, order *domain.WorkOrder, technicianID string) error {
	if err := s.orders.Update(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrUnknownTechnician):
			return technicianNotFound(technicianID)
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("work order", map[string]any{"id": order.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *WorkOrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateCreateInput(input WorkOrderCreateInput) error {
	details := map[string]any{}
	required := map[string]string{
		"buildingName":    input.BuildingName,
		"equipmentNumber": input.EquipmentNumber,
		"clientName":      input.ClientName,
		"description":     input.Description,
		"technicianId":    input.TechnicianID,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			details[field] = "is required"
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.EquipmentNumber)) > domain.MaxEquipmentNumberLen {
		details["equipmentNumber"] = "must be at most 10 characters"
	}
	if input.EquipmentStatus != nil && !input.EquipmentStatus.Valid() {
		details["equipmentStatus"] = "is invalid"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid work order", details)
	}
	return nil
}

func technicianNotFound(id string) error {
	return apperrors.NewNotFound("technician", map[string]any{"id": id})
}

// mapRuleError translates domain rule violations into API errors.
func mapRuleError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
	case errors.Is(err, domain.ErrInvalidEquipmentSts):
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "equipmentStatus"})
	case errors.Is(err, domain.ErrAdminRequired),
		errors.Is(err, domain.ErrNotAssigned),
		errors.Is(err, domain.ErrTechnicianStatus):
		return apperrors.NewUnauthorized(err.Error())
	}
	return apperrors.MapError(err)
}

func patchFields(p domain.WorkOrderPatch) []string {
	var fields []string
	if p.Observations != nil {
		fields = append(fields, "observations")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.EquipmentStatus != nil {
		fields = append(fields, "equipmentStatus")
	}
	return fields
}
