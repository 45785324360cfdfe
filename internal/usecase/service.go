package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// Integrations are the optional outer systems. Nil fields are disabled.
type Integrations struct {
	Locker reservation.SeatLocker
	Events reservation.Publisher
}

type Service struct {
	Catalog     CatalogService
	Reservation ReservationService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, integ Integrations) *Service {
	return &Service{
		Catalog:     NewCatalogService(repo, log),
		Reservation: NewReservationService(repo, config, log, integ),
	}
}
