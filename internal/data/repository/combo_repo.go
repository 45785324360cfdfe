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

type ComboRepository interface {
	FindAll(ctx context.Context) ([]*entity.Combo, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Combo, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error

	// Conditional stock updates, used when STOCK_CONDITIONAL_UPDATE is on
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type comboRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewComboRepository(db database.PgxIface, log *zap.Logger) ComboRepository {
	return &comboRepository{
		db:  db,
		log: log.With(zap.String("repository", "combo")),
	}
}

const comboColumns = `id, name, description, unit_price, units_per_combo, available_stock, created_at, updated_at`

func scanCombo(row pgx.Row) (*entity.Combo, error) {
	var combo entity.Combo
	err := row.Scan(
		&combo.ID,
		&combo.Name,
		&combo.Description,
		&combo.UnitPrice,
		&combo.UnitsPerCombo,
		&combo.AvailableStock,
		&combo.CreatedAt,
		&combo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &combo, nil
}

func (r *comboRepository) FindAll(ctx context.Context) ([]*entity.Combo, error) {
	query := `SELECT ` + comboColumns + ` FROM combos ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find combos", zap.Error(err))
		return nil, fmt.Errorf("find combos: %w", err)
	}
	defer rows.Close()

	var combos []*entity.Combo
	for rows.Next() {
		combo, err := scanCombo(rows)
		if err != nil {
			r.log.Error("Failed to scan combo row", zap.Error(err))
			return nil, fmt.Errorf("scan combo row: %w", err)
		}
		combos = append(combos, combo)
	}

	return combos, rows.Err()
}

func (r *comboRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Combo, error) {
	query := `SELECT ` + comboColumns + ` FROM combos WHERE id = $1`

	combo, err := scanCombo(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find combo by ID",
			zap.Error(err),
			zap.String("combo_id", id.String()),
		)
		return nil, fmt.Errorf("find combo by ID %s: %w", id.String(), err)
	}

	return combo, nil
}

// UpdateStock overwrites the available stock.
func (r *comboRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	query := `
		UPDATE combos
		SET available_stock = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, stock)
	if err != nil {
		r.log.Error("Failed to update combo stock",
			zap.Error(err),
			zap.String("combo_id", id.String()),
			zap.Int("stock", stock),
		)
		return fmt.Errorf("update stock of combo %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("combo %s not found", id.String())
	}

	return nil
}

// DecrementStock takes qty units in one statement. It reports false when the
// combo has fewer than qty units left.
func (r *comboRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE combos
		SET available_stock = COALESCE(available_stock, units_per_combo) - $2, updated_at = NOW()
		WHERE id = $1 AND COALESCE(available_stock, units_per_combo) >= $2
	`

	result, err := r.db.Exec(ctx, query, id, qty)
	if err != nil {
		r.log.Error("Failed to decrement combo stock",
			zap.Error(err),
			zap.String("combo_id", id.String()),
			zap.Int("quantity", qty),
		)
		return false, fmt.Errorf("decrement stock of combo %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *comboRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	query := `
		UPDATE combos
		SET available_stock = COALESCE(available_stock, units_per_combo) + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, qty)
	if err != nil {
		r.log.Error("Failed to increment combo stock",
			zap.Error(err),
			zap.String("combo_id", id.String()),
			zap.Int("quantity", qty),
		)
		return fmt.Errorf("increment stock of combo %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("combo %s not found", id.String())
	}

	return nil
}
