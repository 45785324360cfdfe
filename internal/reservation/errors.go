package reservation

import (
	"errors"
	"fmt"
	"strings"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid selection state transition")
	ErrOrderNotFound     = errors.New("order not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketNotOrphan   = errors.New("ticket already belongs to an order")
	ErrSeatLocked        = errors.New("seat is being reserved by another request")
)

// ValidationError is a bad selection. It is always raised before any
// collaborator call is made.
type ValidationError struct {
	Reason string
	Seats  []entity.Seat
}

func (e *ValidationError) Error() string {
	if len(e.Seats) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s (seats %s)", e.Reason, joinSeats(e.Seats))
}

func invalid(reason string, seats ...entity.Seat) *ValidationError {
	return &ValidationError{Reason: reason, Seats: seats}
}

// StockInsufficientError aborts a reservation before any ticket or stock
// mutation happened.
type StockInsufficientError struct {
	ComboID   uuid.UUID
	ComboName string
	Requested int
	Available int
	Missing   bool
}

func (e *StockInsufficientError) Error() string {
	if e.Missing {
		return fmt.Sprintf("insufficient stock: combo %s no longer exists", e.ComboID)
	}
	return fmt.Sprintf("insufficient stock for combo %s (%s): requested %d, available %d",
		e.ComboName, e.ComboID, e.Requested, e.Available)
}

// TicketCreateError reports the ticket that could not be created. Tickets
// created earlier in the same attempt were deleted before it is returned;
// RollbackFailed lists the ones whose delete failed too.
type TicketCreateError struct {
	Seat           entity.Seat
	FareClass      entity.FareClass
	RolledBack     []uuid.UUID
	RollbackFailed []uuid.UUID
	Err            error
}

func (e *TicketCreateError) Error() string {
	msg := fmt.Sprintf("create %s ticket for seat %s: %v (rolled back %d ticket(s))",
		e.FareClass, e.Seat, e.Err, len(e.RolledBack))
	if len(e.RollbackFailed) > 0 {
		msg += fmt.Sprintf("; rollback failed for %s", joinIDs(e.RollbackFailed))
	}
	return msg
}

func (e *TicketCreateError) Unwrap() error {
	return e.Err
}

// OrderWriteError is a failed order create/update after tickets were
// handled, or an edit that lost its tickets half way. When
// ManualReconciliation is set the tickets listed in TicketIDs exist without
// an order that references them, and DeletedTicketIDs are still referenced
// by the stored order although they are gone.
type OrderWriteError struct {
	OrderID              uuid.UUID
	TicketIDs            []uuid.UUID
	DeletedTicketIDs     []uuid.UUID
	ManualReconciliation bool
	RollbackFailed       []uuid.UUID
	Err                  error
}

func (e *OrderWriteError) Error() string {
	target := "new order"
	if e.OrderID != uuid.Nil {
		target = "order " + e.OrderID.String()
	}
	if e.NeedsManualReconciliation() {
		ids := make([]uuid.UUID, 0, len(e.TicketIDs)+len(e.RollbackFailed))
		ids = append(append(ids, e.TicketIDs...), e.RollbackFailed...)
		msg := fmt.Sprintf("write %s: %v: manual reconciliation needed", target, e.Err)
		if len(ids) > 0 {
			msg += " for tickets " + joinIDs(ids)
		}
		if len(e.DeletedTicketIDs) > 0 {
			msg += "; order still references deleted tickets " + joinIDs(e.DeletedTicketIDs)
		}
		return msg
	}
	return fmt.Sprintf("write %s: %v", target, e.Err)
}

func (e *OrderWriteError) Unwrap() error {
	return e.Err
}

func (e *OrderWriteError) NeedsManualReconciliation() bool {
	return e.ManualReconciliation || len(e.RollbackFailed) > 0 || len(e.DeletedTicketIDs) > 0
}

func joinSeats(seats []entity.Seat) string {
	keys := make([]string, len(seats))
	for i, s := range seats {
		keys[i] = s.Key()
	}
	return strings.Join(keys, ", ")
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
