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

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *database.DB
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *database.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

// GetOrCreate retrieves a user profile, creating one with default
// preferences when it does not exist yet
func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	user, err := r.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	profile := models.NewUserProfile(id)
	query := `
		INSERT INTO users (id, risk_tolerance, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		profile.ID, profile.RiskTolerance, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Re-read in case a concurrent request created the row first.
	return r.GetByID(ctx, id)
}

// GetByID retrieves a user profile by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	query := `
		SELECT id, risk_tolerance, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.UserProfile{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&user.ID, &user.RiskTolerance, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// UpdateRiskTolerance changes a user's stored risk preference
func (r *PostgresUserRepository) UpdateRiskTolerance(ctx context.Context, id uuid.UUID, tolerance models.RiskTolerance) error {
	if !tolerance.Valid() {
		return fmt.Errorf("invalid risk tolerance %q", tolerance)
	}

	query := `
		UPDATE users
		SET risk_tolerance = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, id, tolerance)
	if err != nil {
		return fmt.Errorf("failed to update risk tolerance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
