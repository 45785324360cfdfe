package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FareClass string

const (
	FareClassFull FareClass = "full"
	FareClassHalf FareClass = "half"
)

func (f FareClass) Valid() bool {
	return f == FareClassFull || f == FareClassHalf
}

// Ticket is an admission for one seat in one session. Tickets are never
// updated, only created and deleted.
type Ticket struct {
	BaseSimple
	SessionID  uuid.UUID       `db:"session_id"`
	FareClass  FareClass       `db:"fare_class"`
	FareAmount decimal.Decimal `db:"fare_amount"`
	FullFare   decimal.Decimal `db:"full_fare"`
	HalfFare   decimal.Decimal `db:"half_fare"`
	Seat       *Seat           `db:"-"`
}
