package reservation

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/event"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrphanReconciler finds tickets no order references and folds them back
// into orders of their own.
type OrphanReconciler struct {
	tickets TicketStore
	orders  OrderStore
	events  Publisher
	log     *zap.Logger
	now     func() time.Time
	newCode func(time.Time) string
}

// NewOrphanReconciler builds the reconciler. events may be nil.
func NewOrphanReconciler(tickets TicketStore, orders OrderStore, events Publisher, log *zap.Logger) *OrphanReconciler {
	return &OrphanReconciler{
		tickets: tickets,
		orders:  orders,
		events:  events,
		log:     log.With(zap.String("component", "orphans")),
		now:     time.Now,
		newCode: utils.GenerateOrderCode,
	}
}

func (r *OrphanReconciler) referenced(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	orders, err := r.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	ids := make(map[uuid.UUID]struct{})
	for _, o := range orders {
		for _, t := range o.Tickets {
			ids[t.ID] = struct{}{}
		}
	}
	return ids, nil
}

// FindOrphans lists the tickets whose id appears in no order.
func (r *OrphanReconciler) FindOrphans(ctx context.Context) ([]*entity.Ticket, error) {
	tickets, err := r.tickets.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	owned, err := r.referenced(ctx)
	if err != nil {
		return nil, err
	}

	orphans := make([]*entity.Ticket, 0)
	for _, t := range tickets {
		if _, ok := owned[t.ID]; !ok {
			orphans = append(orphans, t)
		}
	}
	return orphans, nil
}

// Adopt creates an order holding exactly the orphan ticket.
func (r *OrphanReconciler) Adopt(ctx context.Context, ticketID uuid.UUID) (*entity.Order, error) {
	ticket, err := r.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", ticketID, err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, ErrTicketNotFound)
	}

	owned, err := r.referenced(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := owned[ticketID]; ok {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, ErrTicketNotOrphan)
	}

	now := r.now()
	order := &entity.Order{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code:    r.newCode(now),
		Tickets: []entity.TicketRef{entity.RefOf(ticket)},
		Lines:   []entity.OrderLine{},
	}
	if ticket.FareClass == entity.FareClassHalf {
		order.HalfCount = 1
	} else {
		order.FullCount = 1
	}
	order.Recalculate()

	if err := r.orders.Create(ctx, order); err != nil {
		return nil, &OrderWriteError{TicketIDs: []uuid.UUID{ticketID}, Err: err}
	}

	r.log.Info("Orphan ticket adopted",
		zap.String("ticket_id", ticketID.String()),
		zap.String("order_id", order.ID.String()),
	)
	if r.events != nil {
		if err := r.events.Publish(ctx, event.TypeTicketOrphanAdopted, order.ID.String(), order); err != nil {
			r.log.Warn("Failed to publish event", zap.Error(err), zap.String("type", event.TypeTicketOrphanAdopted))
		}
	}
	return order, nil
}
