package request

type SeatRequest struct {
	Row    int `json:"row" validate:"min=1"`
	Column int `json:"column" validate:"min=1"`
}

type ComboLineRequest struct {
	ComboID  string `json:"combo_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// ReservationRequest is the body of POST /api/orders and PUT /api/orders/{id}.
// Seats are listed in selection order; the first full_count seats get the
// full fare. Fares default to the configured amounts when omitted.
type ReservationRequest struct {
	SessionID string             `json:"session_id" validate:"required,uuid"`
	FullCount int                `json:"full_count" validate:"gte=0"`
	HalfCount int                `json:"half_count" validate:"gte=0"`
	FullFare  *string            `json:"full_fare,omitempty" validate:"omitempty,decimal"`
	HalfFare  *string            `json:"half_fare,omitempty" validate:"omitempty,decimal"`
	Seats     []SeatRequest      `json:"seats" validate:"required,min=1,dive"`
	Combos    []ComboLineRequest `json:"combos,omitempty" validate:"omitempty,dive"`
}
