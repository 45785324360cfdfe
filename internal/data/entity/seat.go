package entity

import "fmt"

// Seat is a 1-based (row, column) coordinate inside a room's grid.
type Seat struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Key renders the seat as "row-col".
func (s Seat) Key() string {
	return fmt.Sprintf("%d-%d", s.Row, s.Column)
}

func (s Seat) String() string {
	return s.Key()
}
