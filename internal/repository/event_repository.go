package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/models"
)

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *database.DB
}

// NewPostgresEventRepository creates a new event repository
func NewPostgresEventRepository(db *database.DB) EventRepository {
	return &PostgresEventRepository{db: db}
}

// Upsert inserts an event or updates it when the (source, source_id) pair exists
func (r *PostgresEventRepository) Upsert(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, source_id, source, sport, league, home_team, away_team, start_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, source_id) DO UPDATE SET
			sport = EXCLUDED.sport,
			league = EXCLUDED.league,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			start_time = EXCLUDED.start_time,
			status = EXCLUDED.status
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		event.ID, event.SourceID, event.Source, event.Sport, event.League,
		event.HomeTeam, event.AwayTeam, event.StartTime, event.Status, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `
		SELECT id, source_id, source, sport, league, home_team, away_team, start_time, status, created_at
		FROM events
		WHERE id = $1
	`

	event := &models.Event{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&event.ID, &event.SourceID, &event.Source, &event.Sport, &event.League,
		&event.HomeTeam, &event.AwayTeam, &event.StartTime, &event.Status, &event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}

	return event, nil
}

// GetBySourceID retrieves an event by its provider identity
func (r *PostgresEventRepository) GetBySourceID(ctx context.Context, source, sourceID string) (*models.Event, error) {
	query := `
		SELECT id, source_id, source, sport, league, home_team, away_team, start_time, status, created_at
		FROM events
		WHERE source = $1 AND source_id = $2
	`

	event := &models.Event{}
	err := r.db.GetPool().QueryRow(ctx, query, source, sourceID).Scan(
		&event.ID, &event.SourceID, &event.Source, &event.Sport, &event.League,
		&event.HomeTeam, &event.AwayTeam, &event.StartTime, &event.Status, &event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event by source: %w", err)
	}

	return event, nil
}

// ListUpcoming retrieves events starting after the given time
func (r *PostgresEventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, source_id, source, sport, league, home_team, away_team, start_time, status, created_at
		FROM events
		WHERE start_time > $1
		ORDER BY start_time ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID, &event.SourceID, &event.Source, &event.Sport, &event.League,
			&event.HomeTeam, &event.AwayTeam, &event.StartTime, &event.Status, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
