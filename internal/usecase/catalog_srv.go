package usecase

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/reservation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService exposes the read side the reservation flow starts from.
type CatalogService interface {
	GetMovies(ctx context.Context) ([]response.MovieResponse, error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error)
	GetSessions(ctx context.Context) ([]response.SessionResponse, error)
	GetSeatMap(ctx context.Context, sessionID string) (*response.SeatMapResponse, error)
	GetCombos(ctx context.Context) ([]response.ComboResponse, error)
}

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) GetMovies(ctx context.Context) ([]response.MovieResponse, error) {
	movies, err := s.repo.Movie.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get movies: %w", err)
	}

	result := make([]response.MovieResponse, len(movies))
	for i, m := range movies {
		result[i] = response.MovieToResponse(m)
	}
	return result, nil
}

func (s *catalogService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: movie ID %q", ErrInvalidInput, movieID)
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", movieID, err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrMovieNotFound)
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *catalogService) GetSessions(ctx context.Context) ([]response.SessionResponse, error) {
	sessions, err := s.repo.Session.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	result := make([]response.SessionResponse, len(sessions))
	for i, session := range sessions {
		result[i] = response.SessionToResponse(session)
	}
	return result, nil
}

// GetSeatMap renders the session's grid with a fresh occupancy read.
func (s *catalogService) GetSeatMap(ctx context.Context, sessionID string) (*response.SeatMapResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session ID %q", ErrInvalidInput, sessionID)
	}

	grid, err := loadGrid(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	occupied, err := reservation.OccupiedSeats(ctx, s.repo.Ticket, id)
	if err != nil {
		s.log.Error("Failed to read occupancy", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}

	seats := grid.Seats()
	resp := &response.SeatMapResponse{
		SessionID: id.String(),
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		Seats:     make([]response.SeatStatus, len(seats)),
	}
	for i, seat := range seats {
		taken := occupied.Has(seat)
		resp.Seats[i] = response.SeatStatus{Row: seat.Row, Column: seat.Column, Occupied: taken}
		if !taken {
			resp.Available++
		}
	}
	return resp, nil
}

func (s *catalogService) GetCombos(ctx context.Context) ([]response.ComboResponse, error) {
	combos, err := s.repo.Combo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get combos: %w", err)
	}

	result := make([]response.ComboResponse, len(combos))
	for i, c := range combos {
		result[i] = response.ComboToResponse(c)
	}
	return result, nil
}

// loadGrid resolves session -> room -> grid.
func loadGrid(ctx context.Context, repo *repository.Repository, sessionID uuid.UUID) (reservation.Grid, error) {
	session, err := repo.Session.FindByID(ctx, sessionID)
	if err != nil {
		return reservation.Grid{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if session == nil {
		return reservation.Grid{}, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	room, err := repo.Room.FindByID(ctx, session.RoomID)
	if err != nil {
		return reservation.Grid{}, fmt.Errorf("get room %s: %w", session.RoomID, err)
	}
	if room == nil {
		return reservation.Grid{}, fmt.Errorf("room %s: %w", session.RoomID, ErrRoomNotFound)
	}

	return reservation.GridFor(room), nil
}
