package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/event"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*Orchestrator)

// WithSeatLocker holds a short-lived lock on every requested seat while the
// tickets are written.
func WithSeatLocker(locker SeatLocker) Option {
	return func(o *Orchestrator) {
		o.locker = locker
	}
}

func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) {
		o.events = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithCodeGenerator(gen func(time.Time) string) Option {
	return func(o *Orchestrator) {
		o.newCode = gen
	}
}

// Orchestrator runs the reservation saga over the ticket and order stores.
// The stores offer no transaction spanning calls, so every partial write is
// compensated explicitly.
type Orchestrator struct {
	tickets   TicketStore
	orders    OrderStore
	inventory *InventoryReconciler
	locker    SeatLocker
	events    Publisher
	log       *zap.Logger
	now       func() time.Time
	newCode   func(time.Time) string
}

func NewOrchestrator(tickets TicketStore, orders OrderStore, inventory *InventoryReconciler, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tickets:   tickets,
		orders:    orders,
		inventory: inventory,
		log:       log.With(zap.String("component", "orchestrator")),
		now:       time.Now,
		newCode:   utils.GenerateOrderCode,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Reserve turns a request into a persisted order. On failure nothing the
// saga wrote is left behind unless the returned error says otherwise.
func (o *Orchestrator) Reserve(ctx context.Context, req ReservationRequest) (*entity.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// a started saga runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	unlock, err := o.lockSeats(ctx, req.SessionID, req.Seats)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stock, err := o.inventory.Reconcile(ctx, req.ComboLines)
	if err != nil {
		return nil, err
	}

	created, err := o.createTickets(ctx, req)
	if err != nil {
		o.inventory.Release(ctx, stock)
		return nil, err
	}

	now := o.now()
	order := &entity.Order{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code: o.newCode(now),
	}
	fillOrder(order, req, created)

	if err := o.orders.Create(ctx, order); err != nil {
		o.log.Error("Order write failed, compensating",
			zap.Error(err),
			zap.String("order_code", order.Code),
			zap.Int("tickets", len(created)),
		)
		failed := o.rollbackTickets(ctx, created)
		o.inventory.Release(ctx, stock)
		return nil, &OrderWriteError{
			TicketIDs:      ticketIDs(created),
			RollbackFailed: failed,
			Err:            err,
		}
	}

	o.log.Info("Reservation committed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_code", order.Code),
		zap.String("session_id", req.SessionID.String()),
		zap.Int("tickets", len(created)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	o.publish(ctx, event.TypeOrderCreated, order.ID, order)

	return order, nil
}

// createTickets writes one ticket per seat in request order: full fares
// first, then half fares. If a write fails every ticket created so far is
// deleted before the error is returned.
func (o *Orchestrator) createTickets(ctx context.Context, req ReservationRequest) ([]*entity.Ticket, error) {
	created := make([]*entity.Ticket, 0, len(req.Seats))

	for i, seat := range req.Seats {
		class, amount := req.FareFor(i)
		seat := seat
		ticket := &entity.Ticket{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: o.now(),
			},
			SessionID:  req.SessionID,
			FareClass:  class,
			FareAmount: amount,
			FullFare:   req.FullFare,
			HalfFare:   req.HalfFare,
			Seat:       &seat,
		}

		if err := o.tickets.Create(ctx, ticket); err != nil {
			o.log.Warn("Ticket create failed, rolling back",
				zap.Error(err),
				zap.String("seat", seat.Key()),
				zap.Int("created", len(created)),
			)
			failed := o.rollbackTickets(ctx, created)
			return nil, &TicketCreateError{
				Seat:           seat,
				FareClass:      class,
				RolledBack:     without(ticketIDs(created), failed),
				RollbackFailed: failed,
				Err:            err,
			}
		}
		created = append(created, ticket)
	}

	return created, nil
}

// rollbackTickets deletes tickets newest first and returns the ids whose
// delete failed. It never stops at the first failure.
func (o *Orchestrator) rollbackTickets(ctx context.Context, tickets []*entity.Ticket) []uuid.UUID {
	var failed []uuid.UUID
	for i := len(tickets) - 1; i >= 0; i-- {
		id := tickets[i].ID
		if err := o.tickets.Delete(ctx, id); err != nil {
			o.log.Error("Failed to roll back ticket",
				zap.Error(err),
				zap.String("ticket_id", id.String()),
			)
			failed = append(failed, id)
		}
	}
	return failed
}

// deleteTickets removes tickets by id, best-effort.
func (o *Orchestrator) deleteTickets(ctx context.Context, ids []uuid.UUID) []uuid.UUID {
	var failed []uuid.UUID
	for _, id := range ids {
		if err := o.tickets.Delete(ctx, id); err != nil {
			o.log.Warn("Failed to delete ticket",
				zap.Error(err),
				zap.String("ticket_id", id.String()),
			)
			failed = append(failed, id)
		}
	}
	return failed
}

func (o *Orchestrator) lockSeats(ctx context.Context, sessionID uuid.UUID, seats []entity.Seat) (func(), error) {
	if o.locker == nil || len(seats) == 0 {
		return func() {}, nil
	}

	owner := uuid.NewString()
	var held []entity.Seat
	unlock := func() {
		for _, s := range held {
			if err := o.locker.Release(ctx, sessionID, s.Key(), owner); err != nil {
				o.log.Warn("Failed to release seat lock",
					zap.Error(err),
					zap.String("session_id", sessionID.String()),
					zap.String("seat", s.Key()),
				)
			}
		}
	}

	for _, s := range seats {
		ok, err := o.locker.Acquire(ctx, sessionID, s.Key(), owner)
		if err != nil {
			unlock()
			return nil, fmt.Errorf("lock seat %s: %w", s.Key(), err)
		}
		if !ok {
			unlock()
			return nil, fmt.Errorf("seat %s: %w", s.Key(), ErrSeatLocked)
		}
		held = append(held, s)
	}
	return unlock, nil
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, key uuid.UUID, payload any) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, eventType, key.String(), payload); err != nil {
		o.log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("type", eventType),
			zap.String("key", key.String()),
		)
	}
}

// fillOrder copies counts, ticket snapshots and combo lines into order and
// recomputes the total.
func fillOrder(order *entity.Order, req ReservationRequest, tickets []*entity.Ticket) {
	order.FullCount = req.FullCount
	order.HalfCount = req.HalfCount

	order.Tickets = make([]entity.TicketRef, len(tickets))
	for i, t := range tickets {
		order.Tickets[i] = entity.RefOf(t)
	}

	order.Lines = make([]entity.OrderLine, len(req.ComboLines))
	for i, l := range req.ComboLines {
		order.Lines[i] = entity.OrderLine{
			ComboID:     l.ComboID,
			Name:        l.Name,
			Description: l.Description,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}

	order.Recalculate()
}

func ticketIDs(tickets []*entity.Ticket) []uuid.UUID {
	ids := make([]uuid.UUID, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

func without(ids, drop []uuid.UUID) []uuid.UUID {
	if len(drop) == 0 {
		return ids
	}
	skip := make(map[uuid.UUID]struct{}, len(drop))
	for _, id := range drop {
		skip[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// IsCompensated reports whether err left no saga write behind.
func IsCompensated(err error) bool {
	var writeErr *OrderWriteError
	if errors.As(err, &writeErr) {
		return !writeErr.NeedsManualReconciliation()
	}
	var createErr *TicketCreateError
	if errors.As(err, &createErr) {
		return len(createErr.RollbackFailed) == 0
	}
	return true
}
