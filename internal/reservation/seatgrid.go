package reservation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
)

const (
	minDerivedCols = 5
	maxDerivedCols = 10
)

// Grid is the seat coordinate space of a room. Rows and columns are 1-based.
type Grid struct {
	Rows int
	Cols int

	capacity int
	layout   [][]bool
}

// GridFor derives the grid of a room. An explicit seat map wins; otherwise
// the column count is the rounded square root of the capacity clamped to
// [5, 10] (or the capacity itself below 5) and rows cover the remainder.
func GridFor(room *entity.Room) Grid {
	if room == nil {
		return Grid{}
	}

	if room.HasSeatMap() {
		layout := make([][]bool, len(room.SeatMap))
		for i, row := range room.SeatMap {
			layout[i] = append([]bool(nil), row...)
		}
		return Grid{Rows: len(layout), Cols: len(layout[0]), capacity: room.Capacity, layout: layout}
	}

	capacity := room.Capacity
	if capacity <= 0 {
		return Grid{}
	}

	cols := capacity
	if capacity >= minDerivedCols {
		cols = int(math.Round(math.Sqrt(float64(capacity))))
		cols = max(minDerivedCols, min(maxDerivedCols, cols))
	}
	rows := (capacity + cols - 1) / cols

	return Grid{Rows: rows, Cols: cols, capacity: capacity}
}

// Contains reports whether the grid has a physical seat at s. Cells of the
// last derived row beyond the capacity are not seats.
func (g Grid) Contains(s entity.Seat) bool {
	if s.Row < 1 || s.Column < 1 || s.Row > g.Rows || s.Column > g.Cols {
		return false
	}
	if g.layout != nil {
		row := g.layout[s.Row-1]
		return s.Column <= len(row) && row[s.Column-1]
	}
	return (s.Row-1)*g.Cols+s.Column <= g.capacity
}

// Seats enumerates every seat of the grid in row-major order.
func (g Grid) Seats() []entity.Seat {
	seats := make([]entity.Seat, 0, g.Rows*g.Cols)
	for r := 1; r <= g.Rows; r++ {
		for c := 1; c <= g.Cols; c++ {
			s := entity.Seat{Row: r, Column: c}
			if g.Contains(s) {
				seats = append(seats, s)
			}
		}
	}
	return seats
}

// SeatSet is an unordered set of seats.
type SeatSet map[entity.Seat]struct{}

func NewSeatSet(seats ...entity.Seat) SeatSet {
	set := make(SeatSet, len(seats))
	for _, s := range seats {
		set[s] = struct{}{}
	}
	return set
}

func (s SeatSet) Has(seat entity.Seat) bool {
	_, ok := s[seat]
	return ok
}

// Sorted returns the seats ordered by row then column.
func (s SeatSet) Sorted() []entity.Seat {
	seats := make([]entity.Seat, 0, len(s))
	for seat := range s {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Column < seats[j].Column
	})
	return seats
}

// SeatKey is the canonical, order-independent key of a seat list.
func SeatKey(seats []entity.Seat) string {
	keys := make([]string, len(seats))
	for i, s := range seats {
		keys[i] = s.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// SessionTickets lists the tickets of one session.
type SessionTickets interface {
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entity.Ticket, error)
}

// OccupiedSeats reads the seats held by the existing tickets of a session.
// The result must not be cached: other actors may sell tickets at any time.
func OccupiedSeats(ctx context.Context, tickets SessionTickets, sessionID uuid.UUID) (SeatSet, error) {
	list, err := tickets.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tickets for session %s: %w", sessionID, err)
	}

	occupied := make(SeatSet, len(list))
	for _, t := range list {
		if t.Seat != nil {
			occupied[*t.Seat] = struct{}{}
		}
	}
	return occupied, nil
}
