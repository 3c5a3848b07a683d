package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// Create records a new bet
func (r *PostgresBetRepository) Create(ctx context.Context, bet *models.BetRecord) error {
	query := `
		INSERT INTO bets (id, user_id, event_id, event_name, market, outcome, bookmaker,
			model_name, odds, stake, probability, ev, status, placed_at, settled_at,
			profit_loss, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.UserID, bet.EventID, bet.EventName, bet.Market, bet.Outcome,
		bet.Bookmaker, bet.ModelName, bet.Odds, bet.Stake, bet.Probability, bet.EV,
		bet.Status, bet.PlacedAt, bet.SettledAt, bet.ProfitLoss, bet.CreatedAt, bet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	query := `
		SELECT id, user_id, event_id, event_name, market, outcome, bookmaker,
			model_name, odds, stake, probability, ev, status, placed_at, settled_at,
			profit_loss, created_at, updated_at
		FROM bets
		WHERE id = $1
	`

	bet := &models.BetRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&bet.ID, &bet.UserID, &bet.EventID, &bet.EventName, &bet.Market, &bet.Outcome,
		&bet.Bookmaker, &bet.ModelName, &bet.Odds, &bet.Stake, &bet.Probability, &bet.EV,
		&bet.Status, &bet.PlacedAt, &bet.SettledAt, &bet.ProfitLoss, &bet.CreatedAt, &bet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bet: %w", err)
	}

	return bet, nil
}

// GetByUserID retrieves a user's bet history, most recent first
func (r *PostgresBetRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BetRecord, error) {
	query := `
		SELECT id, user_id, event_id, event_name, market, outcome, bookmaker,
			model_name, odds, stake, probability, ev, status, placed_at, settled_at,
			profit_loss, created_at, updated_at
		FROM bets
		WHERE user_id = $1
		ORDER BY placed_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.BetRecord
	for rows.Next() {
		bet := &models.BetRecord{}
		err := rows.Scan(
			&bet.ID, &bet.UserID, &bet.EventID, &bet.EventName, &bet.Market, &bet.Outcome,
			&bet.Bookmaker, &bet.ModelName, &bet.Odds, &bet.Stake, &bet.Probability, &bet.EV,
			&bet.Status, &bet.PlacedAt, &bet.SettledAt, &bet.ProfitLoss, &bet.CreatedAt, &bet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// Update writes settlement fields back to an existing bet
func (r *PostgresBetRepository) Update(ctx context.Context, bet *models.BetRecord) error {
	query := `
		UPDATE bets
		SET status = $2, settled_at = $3, profit_loss = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, bet.ID, bet.Status, bet.SettledAt, bet.ProfitLoss)
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
