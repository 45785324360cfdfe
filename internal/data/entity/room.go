package entity

// Room is a screening room. SeatMap is optional; when present each row lists
// which columns hold a physical seat.
type Room struct {
	Base
	Number   int      `db:"number"`
	Capacity int      `db:"capacity"`
	SeatMap  [][]bool `db:"seat_map"`
}

func (r *Room) HasSeatMap() bool {
	return len(r.SeatMap) > 0
}
