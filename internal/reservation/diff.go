package reservation

import (
	"context"
	"errors"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/event"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EditPlan is what an edit has to change on an existing order.
type EditPlan struct {
	PrevSeatKey    string
	NextSeatKey    string
	TicketsChanged bool
	// Demand holds per-combo increases, Release the decreases.
	Demand  Demand
	Release Demand
}

// PlanEdit compares an order with the request that replaces it. Tickets are
// kept when the seat set and both counts are unchanged.
func PlanEdit(prev *entity.Order, req ReservationRequest) EditPlan {
	plan := EditPlan{
		PrevSeatKey: SeatKey(prev.Seats()),
		NextSeatKey: SeatKey(req.Seats),
		Demand:      Demand{},
		Release:     Demand{},
	}
	plan.TicketsChanged = plan.PrevSeatKey != plan.NextSeatKey ||
		prev.FullCount != req.FullCount ||
		prev.HalfCount != req.HalfCount

	before := Demand{}
	for _, l := range prev.Lines {
		before[l.ComboID] += l.Quantity
	}
	after := AggregateDemand(req.ComboLines)

	for id, qty := range after {
		if delta := qty - before[id]; delta > 0 {
			plan.Demand[id] = delta
		}
	}
	for id, qty := range before {
		if delta := qty - after[id]; delta > 0 {
			plan.Release[id] = delta
		}
	}
	return plan
}

// Amend replaces the content of an existing order. When neither seats nor
// counts changed the tickets are left alone and only the order is written.
// Otherwise the previous tickets are deleted and new ones created. Once the
// previous tickets are gone any failure is an OrderWriteError asking for
// manual reconciliation: the stored order still references them.
func (o *Orchestrator) Amend(ctx context.Context, orderID uuid.UUID, req ReservationRequest) (*entity.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	prev, err := o.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if prev == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}

	plan := PlanEdit(prev, req)
	log := o.log.With(
		zap.String("order_id", orderID.String()),
		zap.Bool("tickets_changed", plan.TicketsChanged),
	)

	if !plan.TicketsChanged {
		return o.amendLines(ctx, log, prev, req, plan)
	}

	unlock, err := o.lockSeats(ctx, req.SessionID, req.Seats)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stock, err := o.inventory.ReconcileDemand(ctx, plan.Demand)
	if err != nil {
		return nil, err
	}

	failed := o.deleteTickets(ctx, prev.TicketIDs())
	if len(failed) > 0 {
		log.Warn("Previous tickets could not all be deleted", zap.Int("failed", len(failed)))
	}
	deleted := without(prev.TicketIDs(), failed)

	created, err := o.createTickets(ctx, req)
	if err != nil {
		o.inventory.Release(ctx, stock)
		writeErr := &OrderWriteError{
			OrderID:              orderID,
			DeletedTicketIDs:     deleted,
			ManualReconciliation: true,
			Err:                  err,
		}
		var createErr *TicketCreateError
		if errors.As(err, &createErr) {
			writeErr.RollbackFailed = createErr.RollbackFailed
		}
		log.Error("Edit lost its tickets: previous tickets deleted, new ones not created",
			zap.Error(err),
			zap.Strings("deleted_tickets", idStrings(deleted)),
		)
		o.publish(ctx, event.TypeOrderReconciliationRequired, orderID, map[string]any{
			"order_id":           orderID,
			"deleted_ticket_ids": deleted,
			"reason":             err.Error(),
		})
		return nil, writeErr
	}

	next := *prev
	next.UpdatedAt = o.now()
	fillOrder(&next, req, created)

	if err := o.orders.Update(ctx, &next); err != nil {
		o.inventory.Release(ctx, stock)
		writeErr := &OrderWriteError{
			OrderID:              orderID,
			TicketIDs:            ticketIDs(created),
			DeletedTicketIDs:     deleted,
			ManualReconciliation: true,
			Err:                  err,
		}
		log.Error("Order update failed after tickets were replaced",
			zap.Error(err),
			zap.Strings("orphaned_tickets", idStrings(writeErr.TicketIDs)),
		)
		o.publish(ctx, event.TypeOrderReconciliationRequired, orderID, map[string]any{
			"order_id":   orderID,
			"ticket_ids":         writeErr.TicketIDs,
			"deleted_ticket_ids": deleted,
			"reason":             err.Error(),
		})
		return nil, writeErr
	}

	o.inventory.ReleaseDemand(ctx, plan.Release)

	log.Info("Order amended", zap.Int("tickets", len(created)), zap.String("total", next.Total.StringFixed(2)))
	o.publish(ctx, event.TypeOrderUpdated, orderID, &next)
	return &next, nil
}

// amendLines is the edit path that keeps every ticket: only combos change.
func (o *Orchestrator) amendLines(ctx context.Context, log *zap.Logger, prev *entity.Order, req ReservationRequest, plan EditPlan) (*entity.Order, error) {
	stock, err := o.inventory.ReconcileDemand(ctx, plan.Demand)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.UpdatedAt = o.now()
	next.Tickets = append([]entity.TicketRef(nil), prev.Tickets...)
	next.Lines = make([]entity.OrderLine, len(req.ComboLines))
	for i, l := range req.ComboLines {
		next.Lines[i] = entity.OrderLine{
			ComboID:     l.ComboID,
			Name:        l.Name,
			Description: l.Description,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}
	next.Recalculate()

	if err := o.orders.Update(ctx, &next); err != nil {
		o.inventory.Release(ctx, stock)
		return nil, &OrderWriteError{OrderID: prev.ID, Err: err}
	}

	o.inventory.ReleaseDemand(ctx, plan.Release)

	log.Info("Order combos amended", zap.String("total", next.Total.StringFixed(2)))
	o.publish(ctx, event.TypeOrderUpdated, prev.ID, &next)
	return &next, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
