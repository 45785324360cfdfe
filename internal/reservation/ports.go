package reservation

import (
	"context"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
)

// The collaborators below are resource-style stores: one resource per call
// and no transaction spanning calls. Find* methods return (nil, nil) when
// the resource does not exist.

type TicketStore interface {
	FindAll(ctx context.Context) ([]*entity.Ticket, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entity.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	Create(ctx context.Context, ticket *entity.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ComboStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Combo, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
}

type OrderStore interface {
	FindAll(ctx context.Context) ([]*entity.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
}

// SeatLocker is an optional advisory lock held while tickets are created.
type SeatLocker interface {
	Acquire(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) (bool, error)
	Release(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) error
}

// Publisher is an optional sink for reservation events.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}
