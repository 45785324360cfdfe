package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireOrder(r chi.Router, h *adaptor.OrderHandler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.GetOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrderByID)
		r.Put("/{id}", h.UpdateOrder)
		r.Delete("/{id}", h.DeleteOrder)
		r.Delete("/{id}/tickets/{ticketId}", h.RemoveTicket)
	})

	// tickets no order references, left behind by failed edits
	r.Route("/api/tickets/orphans", func(r chi.Router) {
		r.Get("/", h.GetOrphanTickets)
		r.Post("/{id}/adopt", h.AdoptOrphan)
	})
}
