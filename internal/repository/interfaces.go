package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/edge-finder/internal/models"
)

// EventRepository defines operations for sporting events
type EventRepository interface {
	Upsert(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetBySourceID(ctx context.Context, source, sourceID string) (*models.Event, error)
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Event, error)
}

// QuoteRepository defines operations for odds quote snapshots
type QuoteRepository interface {
	Insert(ctx context.Context, quote *models.OddsQuote) error
	InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error
	GetByEventID(ctx context.Context, eventID uuid.UUID, start, end time.Time) ([]*models.OddsQuote, error)
	GetLatest(ctx context.Context, eventID uuid.UUID, market, outcome string) (*models.OddsQuote, error)
	GetSpread(ctx context.Context, eventID uuid.UUID, market string) (float64, error)
}

// BetRepository defines operations for recorded bets
type BetRepository interface {
	Create(ctx context.Context, bet *models.BetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BetRecord, error)
	Update(ctx context.Context, bet *models.BetRecord) error
}

// UserRepository defines operations for user profiles and preferences
type UserRepository interface {
	GetOrCreate(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	UpdateRiskTolerance(ctx context.Context, id uuid.UUID, tolerance models.RiskTolerance) error
}

// ModelRepository defines operations for registered prediction models
type ModelRepository interface {
	Create(ctx context.Context, model *models.ModelInfo) error
	GetByName(ctx context.Context, name string) (*models.ModelInfo, error)
	List(ctx context.Context) ([]*models.ModelInfo, error)
	SetActive(ctx context.Context, name string) error
}

// PredictionRepository defines operations for stored model predictions
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.Prediction) error
	InsertBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByModel(ctx context.Context, modelName string, since time.Time, limit int) ([]*models.Prediction, error)
}
