package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a scheduled screening of a movie in a room.
type Session struct {
	Base
	MovieID       uuid.UUID `db:"movie_id"`
	RoomID        uuid.UUID `db:"room_id"`
	ScreeningTime time.Time `db:"screening_time"`
}

// SessionDetail is a session with the movie and room summaries embedded.
type SessionDetail struct {
	Session
	MovieTitle string `db:"movie_title"`
	RoomNumber int    `db:"room_number"`
}
