package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// WorkOrderFilter narrows work order listings.
type WorkOrderFilter struct {
	TechnicianID *string
	Statuses     []domain.WorkOrderStatus
	Limit        int
	Offset       int
}

// Normalize clamps pagination values into the supported range.
func (f WorkOrderFilter) Normalize() WorkOrderFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// WorkOrderRepository encapsulates work order persistence. Reads always load the technician.
type WorkOrderRepository interface {
	Create(ctx context.Context, order *domain.WorkOrder) error
	Update(ctx context.Context, order *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error)
}

type workOrderRepository struct {
	pool *pgxpool.Pool
}

// NewWorkOrderRepository instantiates repository.
func NewWorkOrderRepository(pool *pgxpool.Pool) WorkOrderRepository {
	return &workOrderRepository{pool: pool}
}

const workOrderSelect = `
        SELECT wo.id, wo.building_name, wo.equipment_number, wo.client_name, wo.description, wo.requester,
               wo.status, wo.equipment_status, wo.created_at, wo.completed_at, wo.observations,
               u.id, u.name, u.email, u.password_hash, u.is_admin, u.phone_number, u.created_at, u.updated_at
        FROM work_orders wo
        JOIN users u ON u.id = wo.technician_id`

func (r *workOrderRepository) Create(ctx context.Context, order *domain.WorkOrder) error {
	const query = `
        INSERT INTO work_orders (building_name, equipment_number, client_name, description, requester,
            technician_id, status, equipment_status, completed_at, observations)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		order.BuildingName,
		order.EquipmentNumber,
		order.ClientName,
		order.Description,
		order.Requester,
		order.Technician.ID,
		order.Status,
		order.EquipmentStatus,
		order.CompletedAt,
		order.Observations,
	).Scan(&order.ID, &order.CreatedAt)
	return translatePgError(err, ErrUnknownTechnician)
}

func (r *workOrderRepository) Update(ctx context.Context, order *domain.WorkOrder) error {
	const query = `
        UPDATE work_orders SET technician_id=$1, status=$2, equipment_status=$3, completed_at=$4, observations=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		order.Technician.ID,
		order.Status,
		order.EquipmentStatus,
		order.CompletedAt,
		order.Observations,
		order.ID,
	)
	if err != nil {
		return translatePgError(err, ErrUnknownTechnician)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return scanWorkOrder(r.pool.QueryRow(ctx, workOrderSelect+` WHERE wo.id=$1`, id))
}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error) {
	filter = filter.Normalize()
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("wo.technician_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("wo.status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY wo.created_at DESC, wo.id LIMIT %d OFFSET %d`,
		workOrderSelect, strings.Join(clauses, " AND "), filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.WorkOrder{}
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	return result, rows.Err()
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	tech := &order.Technician
	if err := row.Scan(
		&order.ID,
		&order.BuildingName,
		&order.EquipmentNumber,
		&order.ClientName,
		&order.Description,
		&order.Requester,
		&order.Status,
		&order.EquipmentStatus,
		&order.CreatedAt,
		&order.CompletedAt,
		&order.Observations,
		&tech.ID,
		&tech.Name,
		&tech.Email,
		&tech.PasswordHash,
		&tech.IsAdmin,
		&tech.PhoneNumber,
		&tech.CreatedAt,
		&tech.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
