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

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// Insert stores a single odds quote
func (r *PostgresQuoteRepository) Insert(ctx context.Context, quote *models.OddsQuote) error {
	query := `
		INSERT INTO odds_quotes (time, event_id, market, outcome, bookmaker, price, handicap, event_name, market_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		quote.Time, quote.EventID, quote.Market, quote.Outcome, quote.Bookmaker,
		quote.Price, quote.Handicap, quote.EventName, quote.MarketName,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds quote: %w", err)
	}

	return nil
}

// InsertBatch stores multiple odds quotes using COPY for efficiency
func (r *PostgresQuoteRepository) InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(quotes))
	for i, q := range quotes {
		rows[i] = []interface{}{
			q.Time, q.EventID, q.Market, q.Outcome, q.Bookmaker,
			q.Price, q.Handicap, q.EventName, q.MarketName,
		}
	}

	copyCount, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"odds_quotes"},
		[]string{"time", "event_id", "market", "outcome", "bookmaker", "price", "handicap", "event_name", "market_name"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert odds quotes: %w", err)
	}

	if int(copyCount) != len(quotes) {
		return fmt.Errorf("expected to insert %d quotes, inserted %d", len(quotes), copyCount)
	}

	return nil
}

// GetByEventID retrieves quotes for an event within a time range
func (r *PostgresQuoteRepository) GetByEventID(ctx context.Context, eventID uuid.UUID, start, end time.Time) ([]*models.OddsQuote, error) {
	query := `
		SELECT time, event_id, market, outcome, bookmaker, price, handicap, event_name, market_name
		FROM odds_quotes
		WHERE event_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.OddsQuote
	for rows.Next() {
		quote := &models.OddsQuote{}
		err := rows.Scan(
			&quote.Time, &quote.EventID, &quote.Market, &quote.Outcome, &quote.Bookmaker,
			&quote.Price, &quote.Handicap, &quote.EventName, &quote.MarketName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}

// GetLatest retrieves the most recent quote for an outcome
func (r *PostgresQuoteRepository) GetLatest(ctx context.Context, eventID uuid.UUID, market, outcome string) (*models.OddsQuote, error) {
	query := `
		SELECT time, event_id, market, outcome, bookmaker, price, handicap, event_name, market_name
		FROM odds_quotes
		WHERE event_id = $1 AND market = $2 AND outcome = $3
		ORDER BY time DESC
		LIMIT 1
	`

	quote := &models.OddsQuote{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID, market, outcome).Scan(
		&quote.Time, &quote.EventID, &quote.Market, &quote.Outcome, &quote.Bookmaker,
		&quote.Price, &quote.Handicap, &quote.EventName, &quote.MarketName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quote: %w", err)
	}

	return quote, nil
}

// GetSpread returns the difference between the highest and lowest price
// recorded for a market across all its outcomes and bookmakers
func (r *PostgresQuoteRepository) GetSpread(ctx context.Context, eventID uuid.UUID, market string) (float64, error) {
	query := `
		SELECT COALESCE(MAX(price) - MIN(price), 0)
		FROM odds_quotes
		WHERE event_id = $1 AND market = $2
	`

	var spread float64
	err := r.db.GetPool().QueryRow(ctx, query, eventID, market).Scan(&spread)
	if err != nil {
		return 0, fmt.Errorf("failed to query odds spread: %w", err)
	}

	return spread, nil
}
