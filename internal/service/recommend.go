// Package service implements the recommendation, history and ingestion
// workflows behind the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/predictor"
	"github.com/yourusername/edge-finder/internal/repository"
)

// RecommendRequest carries the user's choices for one recommendation run
type RecommendRequest struct {
	Site          string          // odds provider name
	ModelName     string          // registered prediction model
	EventID       string          // optional provider event filter
	MaxOdds       float64         // inclusive odds cap
	BetAmount     decimal.Decimal // stake used for profit projection
	DesiredProfit float64         // minimum return percentage on a winning bet
	UserID        uuid.UUID       // optional, for audit context
}

// RecommendResult is the ranked output of a recommendation run
type RecommendResult struct {
	RequestID       string                  `json:"request_id"`
	Site            string                  `json:"site"`
	ModelName       string                  `json:"model_name"`
	CandidatesSeen  int                     `json:"candidates_seen"`
	Recommendations []models.Recommendation `json:"recommendations"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// RecommendationService runs the fetch, predict and rank workflow
type RecommendationService struct {
	providers map[string]oddsfeed.Provider
	predictor *predictor.CachedPredictor
	repos     *repository.Repositories
	audit     *logger.AuditLogger
	cfg       config.RecommendationConfig
	oddsCache *cache.Cache
	logger    *logrus.Logger
}

// NewRecommendationService creates a recommendation service. repos may be
// nil when running without persistence.
func NewRecommendationService(
	providers map[string]oddsfeed.Provider,
	pred *predictor.CachedPredictor,
	repos *repository.Repositories,
	audit *logger.AuditLogger,
	cfg config.RecommendationConfig,
	oddsTTL time.Duration,
	log *logrus.Logger,
) *RecommendationService {
	if oddsTTL <= 0 {
		oddsTTL = 30 * time.Second
	}
	return &RecommendationService{
		providers: providers,
		predictor: pred,
		repos:     repos,
		audit:     audit,
		cfg:       cfg,
		oddsCache: cache.New(oddsTTL, oddsTTL*2),
		logger:    log,
	}
}

// Sites returns the names of the available odds providers
func (s *RecommendationService) Sites() []string {
	names := make([]string, 0, len(s.providers))
	for name, p := range s.providers {
		if p.IsEnabled() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Models returns the registered model names
func (s *RecommendationService) Models() []string {
	return s.predictor.ListModels()
}

// Recommend fetches odds from the chosen site, scores every priced outcome
// with the chosen model and returns value candidates ranked by expected
// value
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	started := time.Now()

	provider, ok := s.providers[req.Site]
	if !ok || !provider.IsEnabled() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSite, req.Site)
	}

	maxOdds := req.MaxOdds
	if maxOdds <= 1 {
		maxOdds = s.cfg.DefaultMaxOdds
	}

	events, err := s.fetchOdds(ctx, provider, req.EventID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, models.ErrNoOddsData
	}

	predictions, err := s.predictor.Predict(ctx, req.ModelName, events)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.BetCandidate, 0, len(predictions))
	for _, pred := range predictions {
		if pred.BestPrice <= 1 {
			continue
		}
		quote := models.OddsQuote{
			Time:       time.Now().UTC(),
			Market:     pred.MarketID,
			Outcome:    pred.Outcome,
			Bookmaker:  req.Site,
			Price:      pred.BestPrice,
			Handicap:   pred.Handicap,
			EventName:  eventDisplayName(pred),
			MarketName: pred.MarketName,
		}
		candidates = append(candidates, models.NewBetCandidate(quote, pred.Probability))
	}

	ranked := rankCandidates(candidates, s.cfg.MinExpectedValue, maxOdds, req.DesiredProfit)
	if len(ranked) > s.cfg.MaxCandidates {
		ranked = ranked[:s.cfg.MaxCandidates]
	}

	requestID := uuid.New().String()
	now := time.Now().UTC()
	result := &RecommendResult{
		RequestID:      requestID,
		Site:           req.Site,
		ModelName:      req.ModelName,
		CandidatesSeen: len(candidates),
		GeneratedAt:    now,
	}

	for _, c := range ranked {
		metrics.ObserveExpectedValue(c.EV)
		result.Recommendations = append(result.Recommendations, models.Recommendation{
			ID:              uuid.New(),
			EventName:       c.Quote.EventName,
			Market:          c.Quote.MarketName,
			Outcome:         c.Quote.Outcome,
			Bookmaker:       c.Quote.Bookmaker,
			Odds:            c.Quote.Price,
			Probability:     c.Probability,
			EV:              c.EV,
			Stake:           req.BetAmount,
			PotentialProfit: c.PotentialProfitFor(req.BetAmount),
			ModelName:       req.ModelName,
			GeneratedAt:     now,
		})
	}

	if s.audit != nil {
		s.audit.LogRecommendationServed(requestID, req.Site, req.ModelName, maxOdds, req.DesiredProfit, len(candidates), len(result.Recommendations))
	}

	s.persistPredictions(ctx, req.ModelName, predictions, now)

	metrics.RecordRecommendation(req.Site, req.ModelName, time.Since(started).Seconds())
	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"site":       req.Site,
		"model":      req.ModelName,
		"candidates": len(candidates),
		"served":     len(result.Recommendations),
	}).Info("Recommendation request completed")

	return result, nil
}

// fetchOdds retrieves provider odds with a short-lived cache so repeated
// requests within the TTL reuse one upstream call
func (s *RecommendationService) fetchOdds(ctx context.Context, provider oddsfeed.Provider, eventID string) ([]oddsfeed.EventOdds, error) {
	cacheKey := provider.Name() + ":" + eventID
	if cached, found := s.oddsCache.Get(cacheKey); found {
		if events, ok := cached.([]oddsfeed.EventOdds); ok {
			return events, nil
		}
	}

	start := time.Now()
	events, err := provider.FetchOdds(ctx, oddsfeed.OddsQuery{EventID: eventID})
	if err != nil {
		metrics.RecordOddsFetch(provider.Name(), "error", time.Since(start).Seconds())
		if provErr, ok := err.(oddsfeed.ProviderError); ok {
			metrics.RecordProviderFailure(provider.Name(), provErr.Code)
			if s.audit != nil {
				s.audit.LogProviderFailure(provider.Name(), provErr.Code, provErr.Message)
			}
		}
		return nil, fmt.Errorf("failed to fetch odds from %s: %w", provider.Name(), err)
	}
	metrics.RecordOddsFetch(provider.Name(), "success", time.Since(start).Seconds())

	s.oddsCache.SetDefault(cacheKey, events)
	return events, nil
}

// persistPredictions stores the scored outcomes for later analysis. Storage
// failures are logged, not returned: the recommendation itself succeeded.
func (s *RecommendationService) persistPredictions(ctx context.Context, modelName string, predictions []predictor.OutcomePrediction, at time.Time) {
	if s.repos == nil || len(predictions) == 0 {
		return
	}

	rows := make([]*models.Prediction, 0, len(predictions))
	for _, pred := range predictions {
		feats, _ := json.Marshal(map[string]interface{}{
			"best_price": pred.BestPrice,
			"handicap":   pred.Handicap,
		})
		rows = append(rows, &models.Prediction{
			ID:          uuid.New(),
			ModelName:   modelName,
			Market:      pred.MarketID,
			Outcome:     pred.Outcome,
			Probability: pred.Probability,
			EV:          models.ExpectedValue(pred.Probability, pred.BestPrice),
			Features:    feats,
			PredictedAt: at,
		})
	}

	if err := s.repos.Prediction.InsertBatch(ctx, rows); err != nil {
		s.logger.WithError(err).Warn("Failed to persist predictions")
	}
}

// rankCandidates filters to value bets and sorts them by EV descending.
// A candidate qualifies when its EV clears the threshold, its odds respect
// the inclusive cap and a winning unit bet returns at least the desired
// profit percentage.
func rankCandidates(candidates []models.BetCandidate, minEV, maxOdds, desiredProfit float64) []models.BetCandidate {
	ranked := make([]models.BetCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsValue(minEV, maxOdds) {
			continue
		}
		if desiredProfit > 0 && (c.Quote.Price-1)*100 < desiredProfit {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EV > ranked[j].EV
	})

	return ranked
}

func eventDisplayName(pred predictor.OutcomePrediction) string {
	if pred.EventName != "" {
		return pred.EventName
	}
	return pred.EventID
}
