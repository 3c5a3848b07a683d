package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/models"
)

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create registers a trained model
func (r *PostgresModelRepository) Create(ctx context.Context, model *models.ModelInfo) error {
	query := `
		INSERT INTO prediction_models (id, name, version, model_type, path, metrics,
			hyperparameters, trained_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (name) DO UPDATE SET
			version = EXCLUDED.version,
			model_type = EXCLUDED.model_type,
			path = EXCLUDED.path,
			metrics = EXCLUDED.metrics,
			hyperparameters = EXCLUDED.hyperparameters,
			trained_at = EXCLUDED.trained_at,
			updated_at = now()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		model.ID, model.Name, model.Version, model.ModelType, model.Path,
		model.Metrics, model.Hyperparameters, model.TrainedAt, model.Active,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}

	return nil
}

// GetByName retrieves a model by its registered name
func (r *PostgresModelRepository) GetByName(ctx context.Context, name string) (*models.ModelInfo, error) {
	query := `
		SELECT id, name, version, model_type, path, metrics, hyperparameters,
			trained_at, active, created_at, updated_at
		FROM prediction_models
		WHERE name = $1
	`

	model := &models.ModelInfo{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&model.ID, &model.Name, &model.Version, &model.ModelType, &model.Path,
		&model.Metrics, &model.Hyperparameters, &model.TrainedAt, &model.Active,
		&model.CreatedAt, &model.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query model: %w", err)
	}

	return model, nil
}

// List retrieves all registered models, most recently trained first
func (r *PostgresModelRepository) List(ctx context.Context) ([]*models.ModelInfo, error) {
	query := `
		SELECT id, name, version, model_type, path, metrics, hyperparameters,
			trained_at, active, created_at, updated_at
		FROM prediction_models
		ORDER BY trained_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var infos []*models.ModelInfo
	for rows.Next() {
		model := &models.ModelInfo{}
		err := rows.Scan(
			&model.ID, &model.Name, &model.Version, &model.ModelType, &model.Path,
			&model.Metrics, &model.Hyperparameters, &model.TrainedAt, &model.Active,
			&model.CreatedAt, &model.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		infos = append(infos, model)
	}

	return infos, rows.Err()
}

// SetActive marks the named model active and deactivates all others
func (r *PostgresModelRepository) SetActive(ctx context.Context, name string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE prediction_models SET active = false, updated_at = now() WHERE active`); err != nil {
			return fmt.Errorf("failed to deactivate models: %w", err)
		}

		tag, err := tx.Exec(ctx, `UPDATE prediction_models SET active = true, updated_at = now() WHERE name = $1`, name)
		if err != nil {
			return fmt.Errorf("failed to activate model: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrModelNotFound
		}

		return nil
	})
}
