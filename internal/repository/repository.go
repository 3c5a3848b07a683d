package repository

import (
	"fmt"

	"github.com/yourusername/edge-finder/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Event      EventRepository
	Quote      QuoteRepository
	Bet        BetRepository
	User       UserRepository
	Model      ModelRepository
	Prediction PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Event:      NewPostgresEventRepository(db),
		Quote:      NewPostgresQuoteRepository(db),
		Bet:        NewPostgresBetRepository(db),
		User:       NewPostgresUserRepository(db),
		Model:      NewPostgresModelRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}, nil
}
