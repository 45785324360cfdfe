package reservation

import (
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFares() Fares {
	return Fares{Full: dec("20.00"), Half: dec("10.00")}
}

func newTestSelection(t *testing.T, full, half int, occupied SeatSet) Selection {
	t.Helper()
	grid := GridFor(&entity.Room{Capacity: 30})
	sel, err := NewSelection(uuid.New(), grid, occupied, testFares()).SetQuantities(full, half)
	require.NoError(t, err)
	return sel
}

func toggle(t *testing.T, sel Selection, seats ...entity.Seat) Selection {
	t.Helper()
	var err error
	for _, s := range seats {
		sel, err = sel.ToggleSeat(s)
		require.NoError(t, err)
	}
	return sel
}

func TestSelection_SlidingWindow(t *testing.T) {
	sel := newTestSelection(t, 2, 0, nil)

	sel = toggle(t, sel, seat(1, 1), seat(1, 2), seat(1, 3))

	assert.Equal(t, []entity.Seat{seat(1, 2), seat(1, 3)}, sel.Seats())
	assert.Equal(t, StateCollecting, sel.State())
}

func TestSelection_NeverExceedsCapacity(t *testing.T) {
	sel := newTestSelection(t, 1, 2, nil)
	grid := GridFor(&entity.Room{Capacity: 30})

	for _, s := range grid.Seats() {
		next, err := sel.ToggleSeat(s)
		require.NoError(t, err)
		sel = next
		require.LessOrEqual(t, len(sel.Seats()), 3)
	}
	assert.Len(t, sel.Seats(), 3)
}

func TestSelection_ToggleDeselects(t *testing.T) {
	sel := newTestSelection(t, 2, 0, nil)
	sel = toggle(t, sel, seat(1, 1), seat(2, 2), seat(1, 1))

	assert.Equal(t, []entity.Seat{seat(2, 2)}, sel.Seats())
}

func TestSelection_TransitionsArePure(t *testing.T) {
	before := newTestSelection(t, 2, 0, nil)
	before = toggle(t, before, seat(1, 1))

	after := toggle(t, before, seat(1, 2))

	assert.Equal(t, []entity.Seat{seat(1, 1)}, before.Seats())
	assert.Equal(t, []entity.Seat{seat(1, 1), seat(1, 2)}, after.Seats())
}

func TestSelection_RejectedSeats(t *testing.T) {
	occupied := NewSeatSet(seat(2, 3))

	tests := []struct {
		name string
		full int
		seat entity.Seat
	}{
		{name: "occupied", full: 2, seat: seat(2, 3)},
		{name: "outside grid", full: 2, seat: seat(7, 1)},
		{name: "outside columns", full: 2, seat: seat(1, 6)},
		{name: "no quantity chosen", full: 0, seat: seat(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := newTestSelection(t, tt.full, 0, occupied)

			next, err := sel.ToggleSeat(tt.seat)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, next.Seats())
		})
	}
}

func TestSelection_EditModeOwnSeatsSelectable(t *testing.T) {
	grid := GridFor(&entity.Room{Capacity: 30})
	occupied := NewSeatSet(seat(1, 1), seat(1, 2), seat(3, 3))
	own := NewSeatSet(seat(1, 1), seat(1, 2))

	sel, err := EditSelection(uuid.New(), grid, occupied, own, testFares()).SetQuantities(2, 0)
	require.NoError(t, err)
	assert.Equal(t, ModeEdit, sel.Mode())

	sel = toggle(t, sel, seat(1, 1), seat(1, 2))

	_, err = sel.ToggleSeat(seat(3, 3))
	require.Error(t, err)

	validated, err := sel.Validate(occupied)
	require.NoError(t, err)
	assert.Equal(t, StateValidated, validated.State())
}

func TestSelection_ShrinkingQuantitiesDropsOldest(t *testing.T) {
	sel := newTestSelection(t, 2, 1, nil)
	sel = toggle(t, sel, seat(1, 1), seat(1, 2), seat(1, 3))

	sel, err := sel.SetQuantities(1, 0)
	require.NoError(t, err)

	assert.Equal(t, []entity.Seat{seat(1, 3)}, sel.Seats())
	assert.Equal(t, 1, sel.Capacity())

	_, err = sel.SetQuantities(-1, 0)
	require.Error(t, err)
}

func TestSelection_Combos(t *testing.T) {
	combo := newCombo("Popcorn", "15.00", intPtr(3), 1)
	sel := newTestSelection(t, 1, 0, nil)

	_, err := sel.AddCombo(lineFor(combo, 0))
	require.Error(t, err)

	sel, err = sel.AddCombo(lineFor(combo, 2))
	require.NoError(t, err)
	sel, err = sel.AddCombo(lineFor(combo, 1))
	require.NoError(t, err)
	require.Len(t, sel.ComboLines(), 2)

	sel, err = sel.RemoveCombo(0)
	require.NoError(t, err)
	require.Len(t, sel.ComboLines(), 1)
	assert.Equal(t, 1, sel.ComboLines()[0].Quantity)

	_, err = sel.RemoveCombo(5)
	require.Error(t, err)
}

func TestSelection_ValidateUsesFreshOccupancy(t *testing.T) {
	sel := newTestSelection(t, 2, 0, nil)
	sel = toggle(t, sel, seat(1, 1), seat(1, 2))

	// another buyer took 1-2 after the flow was opened
	next, err := sel.Validate(NewSeatSet(seat(1, 2)))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []entity.Seat{seat(1, 2)}, verr.Seats)
	assert.Equal(t, StateCollecting, next.State())
}

func TestSelection_ValidateSeatCount(t *testing.T) {
	sel := newTestSelection(t, 2, 1, nil)
	sel = toggle(t, sel, seat(1, 1), seat(1, 2))

	_, err := sel.Validate(nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "2 seat(s) for 3 ticket(s)")
}

func TestSelection_FullFlow(t *testing.T) {
	combo := newCombo("Popcorn", "15.00", intPtr(3), 1)
	sel := newTestSelection(t, 1, 1, nil)
	sel = toggle(t, sel, seat(2, 1), seat(2, 2))
	sel, err := sel.AddCombo(lineFor(combo, 1))
	require.NoError(t, err)

	_, _, err = sel.Submit()
	require.ErrorIs(t, err, ErrInvalidTransition, "submit before validate")

	sel, err = sel.Validate(NewSeatSet())
	require.NoError(t, err)

	sel, req, err := sel.Submit()
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, sel.State())
	assert.Equal(t, 1, req.FullCount)
	assert.Equal(t, 1, req.HalfCount)
	assert.Equal(t, []entity.Seat{seat(2, 1), seat(2, 2)}, req.Seats)
	assert.True(t, req.FullFare.Equal(dec("20")))
	require.Len(t, req.ComboLines, 1)

	class, amount := req.FareFor(1)
	assert.Equal(t, entity.FareClassHalf, class)
	assert.True(t, amount.Equal(dec("10")))

	_, err = sel.ToggleSeat(seat(3, 3))
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = sel.Reset()
	require.ErrorIs(t, err, ErrInvalidTransition)

	committed, err := sel.Commit()
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, committed.State())

	failed, err := sel.Fail(errStoreDown)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, failed.State())
	assert.ErrorIs(t, failed.Err(), errStoreDown)

	reset, err := failed.Reset()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, reset.State())
	assert.Empty(t, reset.Seats())
	assert.Zero(t, reset.Capacity())
}

func TestReservationRequest_Validate(t *testing.T) {
	session := uuid.New()
	tests := []struct {
		name string
		req  ReservationRequest
		ok   bool
	}{
		{name: "valid", req: request(session, 1, 1, seat(1, 1), seat(1, 2)), ok: true},
		{name: "zero tickets", req: request(session, 0, 0)},
		{name: "negative count", req: request(session, -1, 2, seat(1, 1))},
		{name: "fewer seats", req: request(session, 2, 0, seat(1, 1))},
		{name: "more seats", req: request(session, 1, 0, seat(1, 1), seat(1, 2))},
		{name: "duplicate seat", req: request(session, 2, 0, seat(1, 1), seat(1, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
