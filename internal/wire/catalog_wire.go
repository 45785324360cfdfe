package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, h *adaptor.CatalogHandler) {
	r.Get("/api/movies", h.GetMovies)
	r.Get("/api/movies/{id}", h.GetMovieByID)

	r.Get("/api/sessions", h.GetSessions)
	// occupancy is read fresh on every call
	r.Get("/api/sessions/{id}/seats", h.GetSeatMap)

	r.Get("/api/combos", h.GetCombos)
}
