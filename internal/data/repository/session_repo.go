package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SessionDetail, error)
	FindAll(ctx context.Context) ([]*entity.SessionDetail, error)
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

const sessionDetailColumns = `
	s.id, s.movie_id, s.room_id, s.screening_time, s.created_at, s.updated_at,
	m.title, r.number
`

func scanSessionDetail(row pgx.Row) (*entity.SessionDetail, error) {
	var session entity.SessionDetail
	err := row.Scan(
		&session.ID,
		&session.MovieID,
		&session.RoomID,
		&session.ScreeningTime,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.MovieTitle,
		&session.RoomNumber,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SessionDetail, error) {
	query := `
		SELECT ` + sessionDetailColumns + `
		FROM sessions s
		JOIN movies m ON m.id = s.movie_id
		JOIN rooms r ON r.id = s.room_id
		WHERE s.id = $1
	`

	session, err := scanSessionDetail(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find session by ID",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return nil, fmt.Errorf("find session by ID %s: %w", id.String(), err)
	}

	return session, nil
}

func (r *sessionRepository) FindAll(ctx context.Context) ([]*entity.SessionDetail, error) {
	query := `
		SELECT ` + sessionDetailColumns + `
		FROM sessions s
		JOIN movies m ON m.id = s.movie_id
		JOIN rooms r ON r.id = s.room_id
		ORDER BY s.screening_time
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find sessions", zap.Error(err))
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.SessionDetail
	for rows.Next() {
		session, err := scanSessionDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan session row", zap.Error(err))
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
