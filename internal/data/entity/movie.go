package entity

type Movie struct {
	Base
	Title             string  `db:"title"`
	Synopsis          *string `db:"synopsis"`
	Rating            string  `db:"rating"`
	Genre             string  `db:"genre"`
	DurationInMinutes int     `db:"duration_in_minutes"`
}
