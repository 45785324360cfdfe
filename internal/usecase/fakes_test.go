package usecase

import (
	"context"
	"errors"
	"sync"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

// journal records store writes across fakes so tests can assert ordering.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type memSessions struct {
	items map[uuid.UUID]*entity.SessionDetail
	finds int
}

func (m *memSessions) FindByID(ctx context.Context, id uuid.UUID) (*entity.SessionDetail, error) {
	m.finds++
	s, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) FindAll(ctx context.Context) ([]*entity.SessionDetail, error) {
	out := make([]*entity.SessionDetail, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	return out, nil
}

type memRooms struct {
	items map[uuid.UUID]*entity.Room
}

func (m *memRooms) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

// memTickets counts session listings and can run a hook before each one,
// which lets a test sell a seat between two occupancy reads.
type memTickets struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*entity.Ticket
	order   []uuid.UUID
	lists   int
	onList  func(n int)
	failDel map[uuid.UUID]bool
	log     *journal
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
	m.mu.Lock()
	m.lists++
	n, hook := m.lists, m.onList
	m.mu.Unlock()
	if hook != nil {
		hook(n)
	}

	all, _ := m.FindAll(ctx)
	out := make([]*entity.Ticket, 0, len(all))
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
	m.items[t.ID] = t
	m.order = append(m.order, t.ID)
	m.log.add("ticket.create")
	return nil
}

func (m *memTickets) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.add("ticket.delete")
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
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Combo
}

func (m *memCombos) FindAll(ctx context.Context) ([]*entity.Combo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Combo, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
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
	m.items[id].AvailableStock = &stock
	return nil
}

func (m *memCombos) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.items[id]
	if c.Stock() < qty {
		return false, nil
	}
	stock := c.Stock() - qty
	c.AvailableStock = &stock
	return true, nil
}

func (m *memCombos) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.items[id]
	stock := c.Stock() + qty
	c.AvailableStock = &stock
	return nil
}

func (m *memCombos) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Stock()
}

type memOrders struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Order
	log   *journal
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
	cp.Tickets = append([]entity.TicketRef(nil), o.Tickets...)
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp, nil
}

func (m *memOrders) Create(ctx context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.items[o.ID] = &cp
	m.log.add("order.create")
	return nil
}

func (m *memOrders) Update(ctx context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.items[o.ID] = &cp
	m.log.add("order.update")
	return nil
}

func (m *memOrders) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	m.log.add("order.delete")
	return nil
}

// stores bundles the fakes behind one repository.Repository.
type stores struct {
	sessions *memSessions
	rooms    *memRooms
	tickets  *memTickets
	combos   *memCombos
	orders   *memOrders
	journal  *journal
	repo     *repository.Repository
}

func newStores() *stores {
	j := &journal{}
	s := &stores{
		sessions: &memSessions{items: map[uuid.UUID]*entity.SessionDetail{}},
		rooms:    &memRooms{items: map[uuid.UUID]*entity.Room{}},
		tickets:  &memTickets{items: map[uuid.UUID]*entity.Ticket{}, failDel: map[uuid.UUID]bool{}, log: j},
		combos:   &memCombos{items: map[uuid.UUID]*entity.Combo{}},
		orders:   &memOrders{items: map[uuid.UUID]*entity.Order{}, log: j},
		journal:  j,
	}
	s.repo = &repository.Repository{
		Room:    s.rooms,
		Session: s.sessions,
		Ticket:  s.tickets,
		Combo:   s.combos,
		Order:   s.orders,
	}
	return s
}

// addSession registers a session in a room of the given capacity.
func (s *stores) addSession(capacity int) uuid.UUID {
	room := &entity.Room{Base: entity.Base{ID: uuid.New()}, Number: 1, Capacity: capacity}
	s.rooms.items[room.ID] = room

	session := &entity.SessionDetail{Session: entity.Session{
		Base:   entity.Base{ID: uuid.New()},
		RoomID: room.ID,
	}}
	s.sessions.items[session.ID] = session
	return session.ID
}

func (s *stores) addCombo(name, price string, stock int) *entity.Combo {
	c := &entity.Combo{
		Base:           entity.Base{ID: uuid.New()},
		Name:           name,
		UnitPrice:      decimalOf(price),
		UnitsPerCombo:  1,
		AvailableStock: &stock,
	}
	s.combos.items[c.ID] = c
	return c
}
