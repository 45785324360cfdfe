package adaptor

import (
	"net/http"

	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// GetMovies handles GET /api/movies
func (h *CatalogHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.GetMovies(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get movies")
		return
	}

	utils.ResponseSuccess(w, "success", movies)
}

// GetMovieByID handles GET /api/movies/{id}
func (h *CatalogHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.service.GetMovieByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get movie")
		return
	}

	utils.ResponseSuccess(w, "success", movie)
}

// GetSessions handles GET /api/sessions
func (h *CatalogHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.GetSessions(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get sessions")
		return
	}

	utils.ResponseSuccess(w, "success", sessions)
}

// GetSeatMap handles GET /api/sessions/{id}/seats
func (h *CatalogHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	seatMap, err := h.service.GetSeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, "success", seatMap)
}

// GetCombos handles GET /api/combos
func (h *CatalogHandler) GetCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.service.GetCombos(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get combos")
		return
	}

	utils.ResponseSuccess(w, "success", combos)
}
