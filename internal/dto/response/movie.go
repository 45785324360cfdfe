package response

import "cinema-reservation/internal/data/entity"

type MovieResponse struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Synopsis          *string `json:"synopsis,omitempty"`
	Rating            string  `json:"rating"`
	Genre             string  `json:"genre"`
	DurationInMinutes int     `json:"duration_in_minutes"`
}

func MovieToResponse(m *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:                m.ID.String(),
		Title:             m.Title,
		Synopsis:          m.Synopsis,
		Rating:            m.Rating,
		Genre:             m.Genre,
		DurationInMinutes: m.DurationInMinutes,
	}
}
