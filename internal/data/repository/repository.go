package repository

import (
	"cinema-reservation/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the per-resource stores. Each call is one statement; no
// transaction spans stores.
type Repository struct {
	Movie   MovieRepository
	Room    RoomRepository
	Session SessionRepository
	Ticket  TicketRepository
	Combo   ComboRepository
	Order   OrderRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Movie:   NewMovieRepository(db, log),
		Room:    NewRoomRepository(db, log),
		Session: NewSessionRepository(db, log),
		Ticket:  NewTicketRepository(db, log),
		Combo:   NewComboRepository(db, log),
		Order:   NewOrderRepository(db, log),
	}
}
