package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateOrder(ctx context.Context, req *request.ReservationRequest) (*response.OrderResponse, error)
	UpdateOrder(ctx context.Context, orderID string, req *request.ReservationRequest) (*response.OrderResponse, error)
	GetOrders(ctx context.Context) ([]response.OrderResponse, error)
	GetOrderByID(ctx context.Context, orderID string) (*response.OrderResponse, error)
	DeleteOrder(ctx context.Context, orderID string) error
	RemoveTicket(ctx context.Context, orderID, ticketID string) (*response.OrderResponse, error)

	// Orphan tickets
	GetOrphanTickets(ctx context.Context) ([]response.TicketResponse, error)
	AdoptOrphan(ctx context.Context, ticketID string) (*response.OrderResponse, error)
}

type reservationService struct {
	repo    *repository.Repository
	fares   reservation.Fares
	orch    *reservation.Orchestrator
	orphans *reservation.OrphanReconciler
	events  reservation.Publisher
	log     *zap.Logger
	now     func() time.Time
}

func NewReservationService(repo *repository.Repository, config *utils.Config, log *zap.Logger, integ Integrations) ReservationService {
	var reserver reservation.StockReserver
	if config.Reservation.ConditionalStock {
		reserver = reservation.NewConditionalStockReserver(repo.Combo)
	}
	inventory := reservation.NewInventoryReconciler(repo.Combo, reserver, log)

	var opts []reservation.Option
	if integ.Locker != nil {
		opts = append(opts, reservation.WithSeatLocker(integ.Locker))
	}
	if integ.Events != nil {
		opts = append(opts, reservation.WithPublisher(integ.Events))
	}

	return &reservationService{
		repo:    repo,
		fares:   reservation.Fares{Full: config.Reservation.FullFare, Half: config.Reservation.HalfFare},
		orch:    reservation.NewOrchestrator(repo.Ticket, repo.Order, inventory, log, opts...),
		orphans: reservation.NewOrphanReconciler(repo.Ticket, repo.Order, integ.Events, log),
		events:  integ.Events,
		log:     log.With(zap.String("service", "reservation")),
		now:     time.Now,
	}
}

func (s *reservationService) CreateOrder(ctx context.Context, req *request.ReservationRequest) (*response.OrderResponse, error) {
	sel, err := s.selection(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	sel, demand, err := sel.Submit()
	if err != nil {
		return nil, err
	}

	order, err := s.orch.Reserve(ctx, demand)
	if err != nil {
		sel, _ = sel.Fail(err)
		s.log.Warn("Reservation failed",
			zap.Error(sel.Err()),
			zap.String("session_id", req.SessionID),
			zap.Bool("compensated", reservation.IsCompensated(err)),
		)
		return nil, err
	}
	if sel, err = sel.Commit(); err == nil {
		s.log.Debug("Selection committed", zap.String("state", string(sel.State())), zap.String("order_id", order.ID.String()))
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *reservationService) UpdateOrder(ctx context.Context, orderID string, req *request.ReservationRequest) (*response.OrderResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order ID %q", ErrInvalidInput, orderID)
	}

	prev, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if prev == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, reservation.ErrOrderNotFound)
	}

	sel, err := s.selection(ctx, req, prev)
	if err != nil {
		return nil, err
	}

	sel, demand, err := sel.Submit()
	if err != nil {
		return nil, err
	}

	order, err := s.orch.Amend(ctx, id, demand)
	if err != nil {
		sel, _ = sel.Fail(err)
		s.log.Warn("Order edit failed",
			zap.Error(sel.Err()),
			zap.String("order_id", orderID),
			zap.Bool("compensated", reservation.IsCompensated(err)),
		)
		return nil, err
	}
	if sel, err = sel.Commit(); err == nil {
		s.log.Debug("Selection committed", zap.String("state", string(sel.State())), zap.String("order_id", orderID))
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

// selection replays the request through the selection state machine so the
// HTTP path enforces the same rules as an interactive flow. prev is the
// order being edited, nil for a new reservation.
func (s *reservationService) selection(ctx context.Context, req *request.ReservationRequest, prev *entity.Order) (reservation.Selection, error) {
	var none reservation.Selection

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return none, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return none, fmt.Errorf("%w: session ID %q", ErrInvalidInput, req.SessionID)
	}
	fares, err := s.faresFor(req)
	if err != nil {
		return none, err
	}

	seats := make([]entity.Seat, len(req.Seats))
	for i, seat := range req.Seats {
		seats[i] = entity.Seat{Row: seat.Row, Column: seat.Column}
	}

	// reject count and duplicate problems before touching any store
	raw := reservation.ReservationRequest{
		SessionID: sessionID,
		FullCount: req.FullCount,
		HalfCount: req.HalfCount,
		FullFare:  fares.Full,
		HalfFare:  fares.Half,
		Seats:     seats,
	}
	if err := raw.Validate(); err != nil {
		return none, err
	}

	if prev != nil {
		if err := s.checkSameSession(ctx, prev, sessionID); err != nil {
			return none, err
		}
	}

	grid, err := loadGrid(ctx, s.repo, sessionID)
	if err != nil {
		return none, err
	}
	occupied, err := reservation.OccupiedSeats(ctx, s.repo.Ticket, sessionID)
	if err != nil {
		return none, err
	}

	var sel reservation.Selection
	if prev == nil {
		sel = reservation.NewSelection(sessionID, grid, occupied, fares)
	} else {
		sel = reservation.EditSelection(sessionID, grid, occupied, reservation.NewSeatSet(prev.Seats()...), fares)
	}

	if sel, err = sel.SetQuantities(req.FullCount, req.HalfCount); err != nil {
		return none, err
	}
	for _, seat := range seats {
		if sel, err = sel.ToggleSeat(seat); err != nil {
			return none, err
		}
	}

	for _, c := range req.Combos {
		line, err := s.comboLine(ctx, c)
		if err != nil {
			return none, err
		}
		if sel, err = sel.AddCombo(line); err != nil {
			return none, err
		}
	}

	occupied, err = reservation.OccupiedSeats(ctx, s.repo.Ticket, sessionID)
	if err != nil {
		return none, err
	}
	return sel.Validate(occupied)
}

func (s *reservationService) faresFor(req *request.ReservationRequest) (reservation.Fares, error) {
	fares := s.fares
	if req.FullFare != nil {
		d, err := decimal.NewFromString(*req.FullFare)
		if err != nil {
			return fares, fmt.Errorf("%w: full fare %q", ErrInvalidInput, *req.FullFare)
		}
		fares.Full = d
	}
	if req.HalfFare != nil {
		d, err := decimal.NewFromString(*req.HalfFare)
		if err != nil {
			return fares, fmt.Errorf("%w: half fare %q", ErrInvalidInput, *req.HalfFare)
		}
		fares.Half = d
	}
	return fares, nil
}

// comboLine snapshots the live combo into an order line.
func (s *reservationService) comboLine(ctx context.Context, c request.ComboLineRequest) (reservation.ComboLine, error) {
	id, err := uuid.Parse(c.ComboID)
	if err != nil {
		return reservation.ComboLine{}, fmt.Errorf("%w: combo ID %q", ErrInvalidInput, c.ComboID)
	}

	combo, err := s.repo.Combo.FindByID(ctx, id)
	if err != nil {
		return reservation.ComboLine{}, fmt.Errorf("get combo %s: %w", c.ComboID, err)
	}
	if combo == nil {
		return reservation.ComboLine{}, &reservation.StockInsufficientError{ComboID: id, Requested: c.Quantity, Missing: true}
	}

	return reservation.ComboLine{
		ComboID:     combo.ID,
		Name:        combo.Name,
		Description: combo.Description,
		UnitPrice:   combo.UnitPrice,
		Quantity:    c.Quantity,
	}, nil
}

// checkSameSession refuses to move an order to another session.
func (s *reservationService) checkSameSession(ctx context.Context, prev *entity.Order, sessionID uuid.UUID) error {
	for _, ref := range prev.Tickets {
		ticket, err := s.repo.Ticket.FindByID(ctx, ref.ID)
		if err != nil {
			return fmt.Errorf("get ticket %s: %w", ref.ID, err)
		}
		if ticket == nil {
			continue
		}
		if ticket.SessionID != sessionID {
			return fmt.Errorf("%w: order %s belongs to session %s", ErrInvalidInput, prev.ID, ticket.SessionID)
		}
		return nil
	}
	return nil
}

func (s *reservationService) GetOrders(ctx context.Context) ([]response.OrderResponse, error) {
	orders, err := s.repo.Order.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}

	result := make([]response.OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = response.OrderToResponse(o)
	}
	return result, nil
}

func (s *reservationService) GetOrderByID(ctx context.Context, orderID string) (*response.OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *reservationService) findOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order ID %q", ErrInvalidInput, orderID)
	}

	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, reservation.ErrOrderNotFound)
	}
	return order, nil
}

// DeleteOrder removes the order's tickets one by one, then the order.
// Tickets that cannot be deleted are logged and later show up as orphans.
func (s *reservationService) DeleteOrder(ctx context.Context, orderID string) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	for _, id := range order.TicketIDs() {
		if err := s.repo.Ticket.Delete(ctx, id); err != nil {
			s.log.Warn("Failed to delete ticket of order",
				zap.Error(err),
				zap.String("order_id", orderID),
				zap.String("ticket_id", id.String()),
			)
		}
	}

	if err := s.repo.Order.Delete(ctx, order.ID); err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}

	s.publish(ctx, event.TypeOrderDeleted, order.ID, map[string]any{"order_id": order.ID, "code": order.Code})
	return nil
}

// RemoveTicket drops one ticket from an order. The order is written first so
// a failed ticket delete leaves an orphan rather than a dangling reference.
func (s *reservationService) RemoveTicket(ctx context.Context, orderID, ticketID string) (*response.OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	tid, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket ID %q", ErrInvalidInput, ticketID)
	}

	kept := make([]entity.TicketRef, 0, len(order.Tickets))
	for _, ref := range order.Tickets {
		if ref.ID != tid {
			kept = append(kept, ref)
		}
	}
	if len(kept) == len(order.Tickets) {
		return nil, fmt.Errorf("ticket %s in order %s: %w", ticketID, orderID, reservation.ErrTicketNotFound)
	}

	order.Tickets = kept
	order.FullCount, order.HalfCount = 0, 0
	for _, ref := range kept {
		if ref.FareClass == entity.FareClassHalf {
			order.HalfCount++
		} else {
			order.FullCount++
		}
	}
	order.UpdatedAt = s.now()
	order.Recalculate()

	if err := s.repo.Order.Update(ctx, order); err != nil {
		return nil, &reservation.OrderWriteError{OrderID: order.ID, Err: err}
	}

	if err := s.repo.Ticket.Delete(ctx, tid); err != nil {
		s.log.Warn("Ticket removed from order but not deleted",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("ticket_id", ticketID),
		)
	}

	s.publish(ctx, event.TypeOrderUpdated, order.ID, order)
	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *reservationService) GetOrphanTickets(ctx context.Context) ([]response.TicketResponse, error) {
	orphans, err := s.orphans.FindOrphans(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]response.TicketResponse, len(orphans))
	for i, t := range orphans {
		result[i] = response.TicketToResponse(t)
	}
	return result, nil
}

func (s *reservationService) AdoptOrphan(ctx context.Context, ticketID string) (*response.OrderResponse, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket ID %q", ErrInvalidInput, ticketID)
	}

	order, err := s.orphans.Adopt(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *reservationService) publish(ctx context.Context, eventType string, key uuid.UUID, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, key.String(), payload); err != nil {
		s.log.Warn("Failed to publish event", zap.Error(err), zap.String("type", eventType))
	}
}
