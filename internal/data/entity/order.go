package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketRef is the snapshot of a ticket an order keeps. The ticket itself
// lives as an independent resource.
type TicketRef struct {
	ID         uuid.UUID       `json:"id"`
	FareClass  FareClass       `json:"fare_class"`
	FareAmount decimal.Decimal `json:"fare_amount"`
	Seat       *Seat           `json:"seat,omitempty"`
}

// OrderLine is a combo snapshot with the quantity bought.
type OrderLine struct {
	ComboID     uuid.UUID       `json:"combo_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Order struct {
	Base
	Code      string          `db:"code"`
	FullCount int             `db:"full_count"`
	HalfCount int             `db:"half_count"`
	Tickets   []TicketRef     `db:"tickets"`
	Lines     []OrderLine     `db:"lines"`
	Total     decimal.Decimal `db:"total"`
}

// TicketIDs lists the ids of the tickets the order references.
func (o *Order) TicketIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Tickets))
	for i, t := range o.Tickets {
		ids[i] = t.ID
	}
	return ids
}

// Seats lists the seats held by the order's tickets.
func (o *Order) Seats() []Seat {
	seats := make([]Seat, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		if t.Seat != nil {
			seats = append(seats, *t.Seat)
		}
	}
	return seats
}

// Recalculate refreshes line subtotals and the order total from its inputs.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for _, t := range o.Tickets {
		total = total.Add(t.FareAmount)
	}
	for i := range o.Lines {
		o.Lines[i].Subtotal = o.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Lines[i].Quantity)))
		total = total.Add(o.Lines[i].Subtotal)
	}
	o.Total = total
}

// RefOf builds the snapshot an order keeps for t.
func RefOf(t *Ticket) TicketRef {
	ref := TicketRef{ID: t.ID, FareClass: t.FareClass, FareAmount: t.FareAmount}
	if t.Seat != nil {
		seat := *t.Seat
		ref.Seat = &seat
	}
	return ref
}
