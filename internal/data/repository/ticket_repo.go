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

type TicketRepository interface {
	FindAll(ctx context.Context) ([]*entity.Ticket, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entity.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	Create(ctx context.Context, ticket *entity.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `id, session_id, fare_class, fare_amount, full_fare, half_fare, seat_row, seat_col, created_at`

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var (
		ticket           entity.Ticket
		seatRow, seatCol *int
	)
	err := row.Scan(
		&ticket.ID,
		&ticket.SessionID,
		&ticket.FareClass,
		&ticket.FareAmount,
		&ticket.FullFare,
		&ticket.HalfFare,
		&seatRow,
		&seatCol,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if seatRow != nil && seatCol != nil {
		ticket.Seat = &entity.Seat{Row: *seatRow, Column: *seatCol}
	}
	return &ticket, nil
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*entity.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

func (r *ticketRepository) FindAll(ctx context.Context) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at`

	tickets, err := r.queryTickets(ctx, query)
	if err != nil {
		r.log.Error("Failed to find tickets", zap.Error(err))
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	return tickets, nil
}

// FindBySessionID always hits the database; occupancy must never come from a cache.
func (r *ticketRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE session_id = $1 ORDER BY created_at`

	tickets, err := r.queryTickets(ctx, query, sessionID)
	if err != nil {
		r.log.Error("Failed to find tickets by session ID",
			zap.Error(err),
			zap.String("session_id", sessionID.String()),
		)
		return nil, fmt.Errorf("find tickets by session ID %s: %w", sessionID.String(), err)
	}
	return tickets, nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket by ID %s: %w", id.String(), err)
	}

	return ticket, nil
}

// Create inserts one ticket. A seat already sold for the session violates
// tickets_session_seat_key and is returned as an error.
func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, session_id, fare_class, fare_amount, full_fare, half_fare, seat_row, seat_col, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var seatRow, seatCol *int
	if ticket.Seat != nil {
		seatRow, seatCol = &ticket.Seat.Row, &ticket.Seat.Column
	}

	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.SessionID,
		ticket.FareClass,
		ticket.FareAmount,
		ticket.FullFare,
		ticket.HalfFare,
		seatRow,
		seatCol,
		ticket.CreatedAt,
	)

	if err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
			zap.Bool("seat_taken", database.IsUniqueViolation(err)),
		}
		if ticket.Seat != nil {
			fields = append(fields, zap.String("seat", ticket.Seat.Key()))
		}
		r.log.Error("Failed to create ticket", fields...)
		return fmt.Errorf("create ticket %s: %w", ticket.ID.String(), err)
	}

	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tickets WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return fmt.Errorf("delete ticket %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %s not found", id.String())
	}

	r.log.Info("Ticket deleted", zap.String("ticket_id", id.String()))
	return nil
}
