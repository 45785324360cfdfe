package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

// Amounts are rendered with two decimals, e.g. "55.00".

type TicketResponse struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session_id,omitempty"`
	FareClass  string       `json:"fare_class"`
	FareAmount string       `json:"fare_amount"`
	Seat       *entity.Seat `json:"seat,omitempty"`
	CreatedAt  *time.Time   `json:"created_at,omitempty"`
}

type OrderLineResponse struct {
	ComboID     string `json:"combo_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Code      string              `json:"code"`
	FullCount int                 `json:"full_count"`
	HalfCount int                 `json:"half_count"`
	Tickets   []TicketResponse    `json:"tickets"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type SessionResponse struct {
	ID            string    `json:"id"`
	MovieID       string    `json:"movie_id"`
	MovieTitle    string    `json:"movie_title"`
	RoomID        string    `json:"room_id"`
	RoomNumber    int       `json:"room_number"`
	ScreeningTime time.Time `json:"screening_time"`
}

type SeatStatus struct {
	Row      int  `json:"row"`
	Column   int  `json:"column"`
	Occupied bool `json:"occupied"`
}

type SeatMapResponse struct {
	SessionID string       `json:"session_id"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Available int          `json:"available"`
	Seats     []SeatStatus `json:"seats"`
}

type ComboResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	UnitPrice      string `json:"unit_price"`
	UnitsPerCombo  int    `json:"units_per_combo"`
	AvailableStock int    `json:"available_stock"`
}

// Helper converters
func TicketToResponse(t *entity.Ticket) TicketResponse {
	created := t.CreatedAt
	return TicketResponse{
		ID:         t.ID.String(),
		SessionID:  t.SessionID.String(),
		FareClass:  string(t.FareClass),
		FareAmount: t.FareAmount.StringFixed(2),
		Seat:       t.Seat,
		CreatedAt:  &created,
	}
}

func OrderToResponse(o *entity.Order) OrderResponse {
	tickets := make([]TicketResponse, len(o.Tickets))
	for i, t := range o.Tickets {
		tickets[i] = TicketResponse{
			ID:         t.ID.String(),
			FareClass:  string(t.FareClass),
			FareAmount: t.FareAmount.StringFixed(2),
			Seat:       t.Seat,
		}
	}

	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ComboID:     l.ComboID.String(),
			Name:        l.Name,
			Description: l.Description,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal.StringFixed(2),
		}
	}

	return OrderResponse{
		ID:        o.ID.String(),
		Code:      o.Code,
		FullCount: o.FullCount,
		HalfCount: o.HalfCount,
		Tickets:   tickets,
		Lines:     lines,
		Total:     o.Total.StringFixed(2),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func SessionToResponse(s *entity.SessionDetail) SessionResponse {
	return SessionResponse{
		ID:            s.ID.String(),
		MovieID:       s.MovieID.String(),
		MovieTitle:    s.MovieTitle,
		RoomID:        s.RoomID.String(),
		RoomNumber:    s.RoomNumber,
		ScreeningTime: s.ScreeningTime,
	}
}

func ComboToResponse(c *entity.Combo) ComboResponse {
	return ComboResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Description:    c.Description,
		UnitPrice:      c.UnitPrice.StringFixed(2),
		UnitsPerCombo:  c.UnitsPerCombo,
		AvailableStock: c.Stock(),
	}
}
