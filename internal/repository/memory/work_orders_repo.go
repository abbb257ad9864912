package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

// storedWorkOrder mirrors the work_orders row: the technician is kept by id only.
type storedWorkOrder struct {
	order        domain.WorkOrder
	technicianID string
}

// WorkOrders exposes the store as a repository.WorkOrderRepository.
func (s *Store) WorkOrders() repository.WorkOrderRepository {
	return workOrdersRepo{s}
}

type workOrdersRepo struct {
	s *Store
}

var _ repository.WorkOrderRepository = workOrdersRepo{}

func (r workOrdersRepo) Create(_ context.Context, order *domain.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tech, ok := r.s.users[order.Technician.ID]
	if !ok {
		return repository.ErrUnknownTechnician
	}
	order.ID = uuid.NewString()
	order.CreatedAt = r.s.now()
	order.Technician = cloneUser(tech)
	r.s.workOrders[order.ID] = storedWorkOrder{order: cloneWorkOrder(*order), technicianID: tech.ID}
	return nil
}

func (r workOrdersRepo) Update(_ context.Context, order *domain.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.workOrders[order.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if _, ok := r.s.users[order.Technician.ID]; !ok {
		return repository.ErrUnknownTechnician
	}
	stored := existing.order
	stored.Status = order.Status
	stored.EquipmentStatus = order.EquipmentStatus
	stored.CompletedAt = order.CompletedAt
	stored.Observations = order.Observations
	r.s.workOrders[order.ID] = storedWorkOrder{order: cloneWorkOrder(stored), technicianID: order.Technician.ID}
	return nil
}

func (r workOrdersRepo) GetByID(_ context.Context, id string) (*domain.WorkOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.workOrders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	order := r.s.hydrateLocked(stored)
	return &order, nil
}

func (r workOrdersRepo) List(_ context.Context, filter repository.WorkOrderFilter) ([]domain.WorkOrder, error) {
	filter = filter.Normalize()

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	statuses := make(map[domain.WorkOrderStatus]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses[status] = struct{}{}
	}

	matched := make([]domain.WorkOrder, 0, len(r.s.workOrders))
	for _, stored := range r.s.workOrders {
		if filter.TechnicianID != nil && stored.technicianID != *filter.TechnicianID {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[stored.order.Status]; !ok {
				continue
			}
		}
		matched = append(matched, r.s.hydrateLocked(stored))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []domain.WorkOrder{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

// hydrateLocked joins the current technician row, like the SQL read path does.
func (s *Store) hydrateLocked(stored storedWorkOrder) domain.WorkOrder {
	order := cloneWorkOrder(stored.order)
	if tech, ok := s.users[stored.technicianID]; ok {
		order.Technician = cloneUser(tech)
	}
	return order
}

func cloneWorkOrder(w domain.WorkOrder) domain.WorkOrder {
	if w.CompletedAt != nil {
		at := *w.CompletedAt
		w.CompletedAt = &at
	}
	if w.Observations != nil {
		obs := *w.Observations
		w.Observations = &obs
	}
	w.Technician = cloneUser(w.Technician)
	return w
}
