package reservation

import (
	"fmt"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateValidated  State = "validated"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

type Mode int

const (
	ModeNew Mode = iota
	ModeEdit
)

// Fares are the amounts charged per fare class.
type Fares struct {
	Full decimal.Decimal
	Half decimal.Decimal
}

// ComboLine is one combo added to a reservation.
type ComboLine struct {
	ComboID     uuid.UUID
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// ReservationRequest is the validated demand handed to the Orchestrator.
// The first FullCount seats are sold at the full fare, the rest at the half fare.
type ReservationRequest struct {
	SessionID  uuid.UUID
	FullCount  int
	HalfCount  int
	FullFare   decimal.Decimal
	HalfFare   decimal.Decimal
	Seats      []entity.Seat
	ComboLines []ComboLine
}

func (r ReservationRequest) TicketCount() int {
	return r.FullCount + r.HalfCount
}

// FareFor returns the fare class and amount of the i-th seat.
func (r ReservationRequest) FareFor(i int) (entity.FareClass, decimal.Decimal) {
	if i < r.FullCount {
		return entity.FareClassFull, r.FullFare
	}
	return entity.FareClassHalf, r.HalfFare
}

// Validate checks the invariants that need no collaborator.
func (r ReservationRequest) Validate() error {
	if r.FullCount < 0 || r.HalfCount < 0 {
		return invalid("ticket quantities cannot be negative")
	}
	if r.TicketCount() == 0 {
		return invalid("at least one ticket is required")
	}
	if len(r.Seats) != r.TicketCount() {
		return invalid(fmt.Sprintf("selected %d seat(s) for %d ticket(s)", len(r.Seats), r.TicketCount()), r.Seats...)
	}
	if dup := duplicates(r.Seats); len(dup) > 0 {
		return invalid("seats must be distinct", dup...)
	}
	if r.FullFare.IsNegative() || r.HalfFare.IsNegative() {
		return invalid("fares cannot be negative")
	}
	for _, l := range r.ComboLines {
		if l.Quantity <= 0 {
			return invalid(fmt.Sprintf("combo %s quantity must be greater than zero", l.ComboID))
		}
	}
	return nil
}

// Selection is the in-progress state of one reservation attempt. Every
// transition returns a new value and leaves the receiver untouched.
type Selection struct {
	state     State
	mode      Mode
	sessionID uuid.UUID
	grid      Grid
	occupied  SeatSet
	own       SeatSet
	fares     Fares
	full      int
	half      int
	seats     []entity.Seat
	lines     []ComboLine
	err       error
}

// NewSelection starts a reservation for a session with the occupancy read
// when the flow was opened.
func NewSelection(sessionID uuid.UUID, grid Grid, occupied SeatSet, fares Fares) Selection {
	return Selection{
		state:     StateIdle,
		mode:      ModeNew,
		sessionID: sessionID,
		grid:      grid,
		occupied:  occupied,
		own:       SeatSet{},
		fares:     fares,
	}
}

// EditSelection starts an edit of an existing order. Seats in own belong to
// the order being edited and never count as conflicts.
func EditSelection(sessionID uuid.UUID, grid Grid, occupied, own SeatSet, fares Fares) Selection {
	s := NewSelection(sessionID, grid, occupied, fares)
	s.mode = ModeEdit
	if own != nil {
		s.own = own
	}
	return s
}

func (s Selection) State() State { return s.state }
func (s Selection) Mode() Mode   { return s.mode }
func (s Selection) Err() error   { return s.err }

// Capacity is the number of seats the current quantities allow.
func (s Selection) Capacity() int { return s.full + s.half }

func (s Selection) Seats() []entity.Seat {
	return append([]entity.Seat(nil), s.seats...)
}

func (s Selection) ComboLines() []ComboLine {
	return append([]ComboLine(nil), s.lines...)
}

func (s Selection) clone() Selection {
	c := s
	c.seats = append([]entity.Seat(nil), s.seats...)
	c.lines = append([]ComboLine(nil), s.lines...)
	return c
}

func (s Selection) editable() bool {
	return s.state == StateIdle || s.state == StateCollecting || s.state == StateValidated
}

func (s Selection) blocked(seat entity.Seat) bool {
	return s.occupied.Has(seat) && !s.own.Has(seat)
}

// SetQuantities sets how many full and half fare tickets are wanted. If the
// new total is below the number of selected seats the oldest are dropped.
func (s Selection) SetQuantities(full, half int) (Selection, error) {
	if !s.editable() {
		return s, ErrInvalidTransition
	}
	if full < 0 || half < 0 {
		return s, invalid("ticket quantities cannot be negative")
	}

	next := s.clone()
	next.full, next.half = full, half
	if over := len(next.seats) - next.Capacity(); over > 0 {
		next.seats = next.seats[over:]
	}
	next.state = StateCollecting
	return next, nil
}

// ToggleSeat selects or deselects a seat. Selecting past the capacity evicts
// the oldest selected seat.
func (s Selection) ToggleSeat(seat entity.Seat) (Selection, error) {
	if !s.editable() {
		return s, ErrInvalidTransition
	}

	next := s.clone()
	next.state = StateCollecting

	for i, selected := range next.seats {
		if selected == seat {
			next.seats = append(next.seats[:i], next.seats[i+1:]...)
			return next, nil
		}
	}

	if !s.grid.Contains(seat) {
		return s, invalid("seat is outside the room", seat)
	}
	if s.blocked(seat) {
		return s, invalid("seat is already taken", seat)
	}
	if s.Capacity() == 0 {
		return s, invalid("choose ticket quantities before selecting seats", seat)
	}

	if len(next.seats) >= next.Capacity() {
		next.seats = next.seats[len(next.seats)-next.Capacity()+1:]
	}
	next.seats = append(next.seats, seat)
	return next, nil
}

// AddCombo appends a combo line. Stock is checked at submit time, not here.
func (s Selection) AddCombo(line ComboLine) (Selection, error) {
	if !s.editable() {
		return s, ErrInvalidTransition
	}
	if line.Quantity <= 0 {
		return s, invalid("combo quantity must be greater than zero")
	}

	next := s.clone()
	next.lines = append(next.lines, line)
	next.state = StateCollecting
	return next, nil
}

func (s Selection) RemoveCombo(index int) (Selection, error) {
	if !s.editable() {
		return s, ErrInvalidTransition
	}
	if index < 0 || index >= len(s.lines) {
		return s, invalid(fmt.Sprintf("no combo line at position %d", index))
	}

	next := s.clone()
	next.lines = append(next.lines[:index], next.lines[index+1:]...)
	next.state = StateCollecting
	return next, nil
}

// Validate checks the selection against occupancy, which the caller must
// have read immediately before.
func (s Selection) Validate(occupied SeatSet) (Selection, error) {
	if !s.editable() {
		return s, ErrInvalidTransition
	}

	next := s.clone()
	next.occupied = occupied
	next.state = StateCollecting

	if err := next.request().Validate(); err != nil {
		return next, err
	}

	var outside, taken []entity.Seat
	for _, seat := range next.seats {
		if !next.grid.Contains(seat) {
			outside = append(outside, seat)
		}
		if next.blocked(seat) {
			taken = append(taken, seat)
		}
	}
	if len(outside) > 0 {
		return next, invalid("seat is outside the room", outside...)
	}
	if len(taken) > 0 {
		return next, invalid("seat is already taken", taken...)
	}

	next.state = StateValidated
	return next, nil
}

// Submit freezes a validated selection into a ReservationRequest.
func (s Selection) Submit() (Selection, ReservationRequest, error) {
	if s.state != StateValidated {
		return s, ReservationRequest{}, ErrInvalidTransition
	}
	next := s.clone()
	next.state = StateSubmitting
	return next, next.request(), nil
}

func (s Selection) Commit() (Selection, error) {
	if s.state != StateSubmitting {
		return s, ErrInvalidTransition
	}
	next := s.clone()
	next.state = StateCommitted
	return next, nil
}

func (s Selection) Fail(err error) (Selection, error) {
	if s.state != StateSubmitting {
		return s, ErrInvalidTransition
	}
	next := s.clone()
	next.state = StateFailed
	next.err = err
	return next, nil
}

// Reset abandons the selection. It is refused while submitting.
func (s Selection) Reset() (Selection, error) {
	if s.state == StateSubmitting {
		return s, ErrInvalidTransition
	}
	next := s.clone()
	next.state = StateIdle
	next.full, next.half = 0, 0
	next.seats = nil
	next.lines = nil
	next.err = nil
	return next, nil
}

func (s Selection) request() ReservationRequest {
	return ReservationRequest{
		SessionID:  s.sessionID,
		FullCount:  s.full,
		HalfCount:  s.half,
		FullFare:   s.fares.Full,
		HalfFare:   s.fares.Half,
		Seats:      append([]entity.Seat(nil), s.seats...),
		ComboLines: append([]ComboLine(nil), s.lines...),
	}
}

func duplicates(seats []entity.Seat) []entity.Seat {
	seen := make(SeatSet, len(seats))
	var dup []entity.Seat
	for _, s := range seats {
		if seen.Has(s) {
			dup = append(dup, s)
			continue
		}
		seen[s] = struct{}{}
	}
	return dup
}
