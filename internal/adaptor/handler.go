package adaptor

import (
	"cinema-reservation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Catalog *CatalogHandler
	Order   *OrderHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Catalog: NewCatalogHandler(service.Catalog, log),
		Order:   NewOrderHandler(service.Reservation, log),
	}
}
