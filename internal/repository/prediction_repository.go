package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Insert stores a single prediction
func (r *PostgresPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, model_name, event_id, market, outcome, probability, ev, features, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		prediction.ID, prediction.ModelName, prediction.EventID, prediction.Market,
		prediction.Outcome, prediction.Probability, prediction.EV, prediction.Features,
		prediction.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// InsertBatch stores multiple predictions using COPY for efficiency
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(predictions))
	for i, p := range predictions {
		rows[i] = []interface{}{
			p.ID, p.ModelName, p.EventID, p.Market, p.Outcome,
			p.Probability, p.EV, p.Features, p.PredictedAt,
		}
	}

	copyCount, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"predictions"},
		[]string{"id", "model_name", "event_id", "market", "outcome", "probability", "ev", "features", "predicted_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert predictions: %w", err)
	}

	if int(copyCount) != len(predictions) {
		return fmt.Errorf("expected to insert %d predictions, inserted %d", len(predictions), copyCount)
	}

	return nil
}

// GetByModel retrieves predictions emitted by a model since the given time
func (r *PostgresPredictionRepository) GetByModel(ctx context.Context, modelName string, since time.Time, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT id, model_name, event_id, market, outcome, probability, ev, features, predicted_at
		FROM predictions
		WHERE model_name = $1 AND predicted_at >= $2
		ORDER BY predicted_at DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, modelName, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p := &models.Prediction{}
		err := rows.Scan(
			&p.ID, &p.ModelName, &p.EventID, &p.Market, &p.Outcome,
			&p.Probability, &p.EV, &p.Features, &p.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}
