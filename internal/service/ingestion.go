package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/repository"
)

// IngestionStats counts the outcome of one ingestion run
type IngestionStats struct {
	mu             sync.Mutex
	EventsSeen     int
	QuotesInserted int
	Failures       int
	Duration       time.Duration
}

// String renders the stats for logging
func (s *IngestionStats) String() string {
	return fmt.Sprintf("events=%d quotes=%d failures=%d duration=%s",
		s.EventsSeen, s.QuotesInserted, s.Failures, s.Duration)
}

// QuoteSink receives freshly ingested quotes, e.g. for streaming them to
// websocket subscribers. Implementations must not block.
type QuoteSink interface {
	PublishQuotes(provider string, quotes []*models.OddsQuote)
}

// IngestionService polls odds providers and snapshots quotes to storage so
// historical prices are available for training data and spread features
type IngestionService struct {
	providers map[string]oddsfeed.Provider
	repos     *repository.Repositories
	logger    *logrus.Logger
	batchSize int
	sink      QuoteSink
}

// NewIngestionService creates an ingestion service
func NewIngestionService(providers map[string]oddsfeed.Provider, repos *repository.Repositories, log *logrus.Logger, batchSize int) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IngestionService{
		providers: providers,
		repos:     repos,
		logger:    log,
		batchSize: batchSize,
	}
}

// SetQuoteSink attaches a sink that receives every stored quote batch
func (s *IngestionService) SetQuoteSink(sink QuoteSink) {
	s.sink = sink
}

// IngestAll polls every enabled provider once
func (s *IngestionService) IngestAll(ctx context.Context) (*IngestionStats, error) {
	stats := &IngestionStats{}
	start := time.Now()

	for name, provider := range s.providers {
		if !provider.IsEnabled() {
			continue
		}
		if err := s.ingestProvider(ctx, provider, stats); err != nil {
			stats.Failures++
			s.logger.WithError(err).WithField("provider", name).Error("Provider ingestion failed")
		}
	}

	stats.Duration = time.Since(start)
	s.logger.WithField("stats", stats.String()).Info("Ingestion run completed")

	if stats.Failures > 0 && stats.QuotesInserted == 0 {
		return stats, fmt.Errorf("all providers failed during ingestion")
	}
	return stats, nil
}

// IngestProvider polls a single named provider
func (s *IngestionService) IngestProvider(ctx context.Context, name string) (*IngestionStats, error) {
	provider, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSite, name)
	}

	stats := &IngestionStats{}
	start := time.Now()
	err := s.ingestProvider(ctx, provider, stats)
	stats.Duration = time.Since(start)
	return stats, err
}

// ingestProvider fetches current odds and writes event and quote rows
func (s *IngestionService) ingestProvider(ctx context.Context, provider oddsfeed.Provider, stats *IngestionStats) error {
	fetchStart := time.Now()
	events, err := provider.FetchOdds(ctx, oddsfeed.OddsQuery{})
	if err != nil {
		metrics.RecordOddsFetch(provider.Name(), "error", time.Since(fetchStart).Seconds())
		if provErr, ok := err.(oddsfeed.ProviderError); ok {
			metrics.RecordProviderFailure(provider.Name(), provErr.Code)
		}
		return err
	}
	metrics.RecordOddsFetch(provider.Name(), "success", time.Since(fetchStart).Seconds())

	var batch []*models.OddsQuote
	now := time.Now().UTC()

	for _, event := range events {
		stats.EventsSeen++

		record := &models.Event{
			ID:        uuid.New(),
			SourceID:  event.SourceID,
			Source:    event.Source,
			StartTime: event.StartTime,
			Status:    event.Status,
			CreatedAt: now,
		}

		// Reuse the stored row when the event was seen before
		existing, err := s.repos.Event.GetBySourceID(ctx, event.Source, event.SourceID)
		switch {
		case err == nil:
			record = existing
		case err == models.ErrNotFound:
			if err := s.repos.Event.Upsert(ctx, record); err != nil {
				return fmt.Errorf("failed to store event %s: %w", event.SourceID, err)
			}
		default:
			return err
		}

		for _, market := range event.Markets {
			for _, outcome := range market.Outcomes {
				if outcome.BestPrice <= 1 {
					continue
				}
				batch = append(batch, &models.OddsQuote{
					Time:       event.FetchedAt,
					EventID:    record.ID,
					Market:     market.MarketID,
					Outcome:    outcome.Name,
					Bookmaker:  bestBookmaker(outcome),
					Price:      outcome.BestPrice,
					Handicap:   outcome.Handicap,
					EventName:  event.EventName,
					MarketName: market.MarketName,
				})

				if len(batch) >= s.batchSize {
					if err := s.flush(ctx, provider.Name(), batch, stats); err != nil {
						return err
					}
					batch = batch[:0]
				}
			}
		}
	}

	return s.flush(ctx, provider.Name(), batch, stats)
}

func (s *IngestionService) flush(ctx context.Context, providerName string, batch []*models.OddsQuote, stats *IngestionStats) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.repos.Quote.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert quote batch: %w", err)
	}
	stats.QuotesInserted += len(batch)
	metrics.QuotesIngestedTotal.WithLabelValues(providerName).Add(float64(len(batch)))

	if s.sink != nil {
		// The batch slice is reused by the caller, hand the sink a copy
		published := make([]*models.OddsQuote, len(batch))
		copy(published, batch)
		s.sink.PublishQuotes(providerName, published)
	}
	return nil
}

// bestBookmaker names the bookmaker holding the best price, falling back
// to the first priced bookmaker
func bestBookmaker(outcome oddsfeed.OutcomeOdds) string {
	for name, price := range outcome.Prices {
		if price == outcome.BestPrice {
			return name
		}
	}
	for name := range outcome.Prices {
		return name
	}
	return "best"
}
