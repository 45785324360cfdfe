// internal/wire/wire.go
package wire

import (
	"net/http"

	"cinema-reservation/internal/adaptor"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired HTTP application.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes.
func Wiring(repo *repository.Repository, config *utils.Config, integ usecase.Integrations, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, logger, integ)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, logger),
	}
}

func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wireCatalog(r, handler.Catalog)
	wireOrder(r, handler.Order)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
