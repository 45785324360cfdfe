package reservation

import (
	"context"
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFor_Derived(t *testing.T) {
	tests := []struct {
		capacity int
		rows     int
		cols     int
	}{
		{capacity: 0, rows: 0, cols: 0},
		{capacity: -4, rows: 0, cols: 0},
		{capacity: 1, rows: 1, cols: 1},
		{capacity: 4, rows: 1, cols: 4},
		{capacity: 5, rows: 1, cols: 5},
		{capacity: 12, rows: 3, cols: 5},
		{capacity: 30, rows: 6, cols: 5},
		{capacity: 50, rows: 8, cols: 7},
		{capacity: 100, rows: 10, cols: 10},
		{capacity: 250, rows: 25, cols: 10},
	}

	for _, tt := range tests {
		g := GridFor(&entity.Room{Capacity: tt.capacity})
		assert.Equal(t, tt.rows, g.Rows, "rows for capacity %d", tt.capacity)
		assert.Equal(t, tt.cols, g.Cols, "cols for capacity %d", tt.capacity)
	}
}

func TestGridFor_CoversCapacity(t *testing.T) {
	for c := 1; c <= 500; c++ {
		g := GridFor(&entity.Room{Capacity: c})
		require.GreaterOrEqual(t, g.Rows*g.Cols, c, "capacity %d", c)
		if c < 5 {
			require.Equal(t, c, g.Cols)
		} else {
			require.GreaterOrEqual(t, g.Cols, 5)
			require.LessOrEqual(t, g.Cols, 10)
		}
		require.Len(t, g.Seats(), c, "capacity %d", c)
	}
}

func TestGridFor_ExplicitSeatMap(t *testing.T) {
	room := &entity.Room{
		Capacity: 5,
		SeatMap: [][]bool{
			{true, true, false},
			{true, true, true},
		},
	}

	g := GridFor(room)
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 3, g.Cols)
	assert.True(t, g.Contains(seat(1, 2)))
	assert.False(t, g.Contains(seat(1, 3)), "aisle cell")
	assert.True(t, g.Contains(seat(2, 3)))
	assert.Len(t, g.Seats(), 5)

	room.SeatMap[0][2] = true
	assert.False(t, g.Contains(seat(1, 3)), "grid keeps its own copy of the map")
}

func TestGrid_Contains(t *testing.T) {
	g := GridFor(&entity.Room{Capacity: 12})

	assert.True(t, g.Contains(seat(1, 1)))
	assert.True(t, g.Contains(seat(3, 2)))
	assert.False(t, g.Contains(seat(3, 3)), "beyond capacity in the last row")
	assert.False(t, g.Contains(seat(0, 1)))
	assert.False(t, g.Contains(seat(1, 0)))
	assert.False(t, g.Contains(seat(4, 1)))
	assert.False(t, g.Contains(seat(1, 6)))
	assert.False(t, GridFor(nil).Contains(seat(1, 1)))
}

func TestSeatKey_OrderIndependent(t *testing.T) {
	a := SeatKey([]entity.Seat{seat(2, 1), seat(1, 10), seat(1, 2)})
	b := SeatKey([]entity.Seat{seat(1, 2), seat(2, 1), seat(1, 10)})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, SeatKey([]entity.Seat{seat(1, 2), seat(2, 1)}))
	assert.Equal(t, "", SeatKey(nil))
}

func TestSeatSet_Sorted(t *testing.T) {
	set := NewSeatSet(seat(2, 1), seat(1, 3), seat(1, 1))
	assert.Equal(t, []entity.Seat{seat(1, 1), seat(1, 3), seat(2, 1)}, set.Sorted())
}

func TestOccupiedSeats_FollowsTickets(t *testing.T) {
	ctx := context.Background()
	tickets := newMemTickets()
	session := uuid.New()
	other := uuid.New()

	s1, s2, s3 := seat(1, 1), seat(1, 2), seat(2, 2)
	t1 := &entity.Ticket{BaseSimple: entity.BaseSimple{ID: uuid.New()}, SessionID: session, Seat: &s1}
	t2 := &entity.Ticket{BaseSimple: entity.BaseSimple{ID: uuid.New()}, SessionID: session, Seat: &s2}
	foreign := &entity.Ticket{BaseSimple: entity.BaseSimple{ID: uuid.New()}, SessionID: other, Seat: &s3}
	seatless := &entity.Ticket{BaseSimple: entity.BaseSimple{ID: uuid.New()}, SessionID: session}
	for _, tk := range []*entity.Ticket{t1, t2, foreign, seatless} {
		tickets.put(tk)
	}

	occupied, err := OccupiedSeats(ctx, tickets, session)
	require.NoError(t, err)
	assert.Equal(t, NewSeatSet(s1, s2), occupied)

	require.NoError(t, tickets.Delete(ctx, t1.ID))
	occupied, err = OccupiedSeats(ctx, tickets, session)
	require.NoError(t, err)
	assert.Equal(t, NewSeatSet(s2), occupied)

	s4 := seat(3, 1)
	require.NoError(t, tickets.Create(ctx, &entity.Ticket{BaseSimple: entity.BaseSimple{ID: uuid.New()}, SessionID: session, Seat: &s4}))
	occupied, err = OccupiedSeats(ctx, tickets, session)
	require.NoError(t, err)
	assert.Equal(t, NewSeatSet(s2, s4), occupied)
}
