package reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

// memTickets is an in-memory ticket store that counts calls and can be
// told to fail the n-th create or specific deletes.
type memTickets struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*entity.Ticket
	order    []uuid.UUID
	creates  int
	deletes  int
	failOnNo int
	failDel  map[uuid.UUID]bool
}

func newMemTickets() *memTickets {
	return &memTickets{items: map[uuid.UUID]*entity.Ticket{}, failDel: map[uuid.UUID]bool{}}
}

func (m *memTickets) FindAll(ctx context.Context) ([]*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Ticket, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.items[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTickets) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entity.Ticket, error) {
	all, _ := m.FindAll(ctx)
	out := make([]*entity.Ticket, 0)
	for _, t := range all {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTickets) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *memTickets) Create(ctx context.Context, t *entity.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failOnNo == m.creates {
		return errStoreDown
	}
	if t.Seat != nil {
		for _, existing := range m.items {
			if existing.SessionID == t.SessionID && existing.Seat != nil && *existing.Seat == *t.Seat {
				return errors.New("duplicate seat")
			}
		}
	}
	m.items[t.ID] = t
	m.order = append(m.order, t.ID)
	return nil
}

func (m *memTickets) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.failDel[id] {
		return errStoreDown
	}
	delete(m.items, id)
	return nil
}

func (m *memTickets) put(t *entity.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[t.ID] = t
	m.order = append(m.order, t.ID)
}

func (m *memTickets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memCombos struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*entity.Combo
	updates map[uuid.UUID]int
	failUpd map[uuid.UUID]bool
}

func newMemCombos(combos ...*entity.Combo) *memCombos {
	m := &memCombos{
		items:   map[uuid.UUID]*entity.Combo{},
		updates: map[uuid.UUID]int{},
		failUpd: map[uuid.UUID]bool{},
	}
	for _, c := range combos {
		m.items[c.ID] = c
	}
	return m
}

func (m *memCombos) FindByID(ctx context.Context, id uuid.UUID) (*entity.Combo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCombos) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[id]++
	if m.failUpd[id] {
		return errStoreDown
	}
	m.items[id].AvailableStock = &stock
	return nil
}

func (m *memCombos) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Stock()
}

func (m *memCombos) totalUpdates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.updates {
		n += c
	}
	return n
}

type memOrders struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*entity.Order
	creates int
	updates int
	failErr error
}

func newMemOrders() *memOrders {
	return &memOrders{items: map[uuid.UUID]*entity.Order{}}
}

func (m *memOrders) FindAll(ctx context.Context) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Order, 0, len(m.items))
	for _, o := range m.items {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Create(ctx context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failErr != nil {
		return m.failErr
	}
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *memOrders) Update(ctx context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.failErr != nil {
		return m.failErr
	}
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	args := m.Called(ctx, eventType, key, payload)
	return args.Error(0)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) (bool, error) {
	args := m.Called(ctx, sessionID, seatKey, owner)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) Release(ctx context.Context, sessionID uuid.UUID, seatKey, owner string) error {
	args := m.Called(ctx, sessionID, seatKey, owner)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCombo(name, price string, stock *int, unitsPerCombo int) *entity.Combo {
	return &entity.Combo{
		Base:           entity.Base{ID: uuid.New()},
		Name:           name,
		UnitPrice:      dec(price),
		UnitsPerCombo:  unitsPerCombo,
		AvailableStock: stock,
	}
}

func lineFor(c *entity.Combo, qty int) ComboLine {
	return ComboLine{ComboID: c.ID, Name: c.Name, Description: c.Description, UnitPrice: c.UnitPrice, Quantity: qty}
}

type harness struct {
	tickets *memTickets
	combos  *memCombos
	orders  *memOrders
	orch    *Orchestrator
}

func newHarness(combos ...*entity.Combo) *harness {
	h := &harness{
		tickets: newMemTickets(),
		combos:  newMemCombos(combos...),
		orders:  newMemOrders(),
	}
	log := zap.NewNop()
	inv := NewInventoryReconciler(h.combos, nil, log)
	clock := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	h.orch = NewOrchestrator(h.tickets, h.orders, inv, log,
		WithClock(func() time.Time { return clock }),
		WithCodeGenerator(func(time.Time) string { return "ORD-TEST" }),
	)
	return h
}

func request(sessionID uuid.UUID, full, half int, seats ...entity.Seat) ReservationRequest {
	return ReservationRequest{
		SessionID: sessionID,
		FullCount: full,
		HalfCount: half,
		FullFare:  dec("20.00"),
		HalfFare:  dec("10.00"),
		Seats:     seats,
	}
}

func seat(row, col int) entity.Seat {
	return entity.Seat{Row: row, Column: col}
}
