package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OrderRepository interface {
	FindAll(ctx context.Context) ([]*entity.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

// Ticket references and lines are snapshots stored as jsonb on the order row.
const orderColumns = `id, code, full_count, half_count, tickets, lines, total, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var order entity.Order
	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.FullCount,
		&order.HalfCount,
		&order.Tickets,
		&order.Lines,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find orders", zap.Error(err))
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return nil, fmt.Errorf("find order by ID %s: %w", id.String(), err)
	}

	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, code, full_count, half_count, tickets, lines, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.Code,
		order.FullCount,
		order.HalfCount,
		order.Tickets,
		order.Lines,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("order_code", order.Code),
			zap.Int("tickets", len(order.Tickets)),
		)
		return fmt.Errorf("create order %s: %w", order.Code, err)
	}

	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET full_count = $2, half_count = $3, tickets = $4, lines = $5, total = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		order.ID,
		order.FullCount,
		order.HalfCount,
		order.Tickets,
		order.Lines,
		order.Total,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return fmt.Errorf("update order %s: %w", order.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", order.ID.String())
	}

	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete order",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return fmt.Errorf("delete order %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id.String())
	}

	r.log.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}
