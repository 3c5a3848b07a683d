package predictor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
)

// CachedPredictor wraps Predictor with per-outcome probability caching
type CachedPredictor struct {
	predictor *Predictor
	cache     *PredictionCache
	logger    *logrus.Logger
}

// NewCachedPredictor creates a cached predictor with the given TTL and
// maximum cache size
func NewCachedPredictor(predictor *Predictor, ttl time.Duration, maxSize int) *CachedPredictor {
	return &CachedPredictor{
		predictor: predictor,
		cache:     NewPredictionCache(ttl, maxSize),
		logger:    predictor.logger,
	}
}

// Predict serves cached probabilities where fresh, predicting only the
// outcomes that miss
func (c *CachedPredictor) Predict(ctx context.Context, modelName string, events []oddsfeed.EventOdds) ([]OutcomePrediction, error) {
	all := flattenOutcomes(events)
	if len(all) == 0 {
		return nil, nil
	}

	results := make([]OutcomePrediction, len(all))
	missByKey := make(map[CacheKey][]int)
	hits := 0

	for i, pred := range all {
		key := CacheKey{
			ModelName: modelName,
			EventID:   pred.EventID,
			MarketID:  pred.MarketID,
			Outcome:   pred.Outcome,
		}
		if prob, found := c.cache.Get(key); found {
			pred.Probability = prob
			results[i] = pred
			hits++
			metrics.RecordPrediction(modelName, true, 0)
			continue
		}
		missByKey[key] = append(missByKey[key], i)
	}

	if len(missByKey) == 0 {
		return results, nil
	}

	c.logger.WithFields(logrus.Fields{
		"model":  modelName,
		"total":  len(all),
		"cached": hits,
	}).Debug("Prediction with partial cache")

	fresh, err := c.predictor.Predict(ctx, modelName, events)
	if err != nil {
		return nil, err
	}

	for _, pred := range fresh {
		key := CacheKey{
			ModelName: modelName,
			EventID:   pred.EventID,
			MarketID:  pred.MarketID,
			Outcome:   pred.Outcome,
		}
		c.cache.Set(key, pred.Probability)
		for _, idx := range missByKey[key] {
			results[idx] = pred
		}
	}

	return results, nil
}

// ModelVersion returns the version of a loaded model
func (c *CachedPredictor) ModelVersion(modelName string) (string, error) {
	return c.predictor.ModelVersion(modelName)
}

// ListModels returns the registered model names
func (c *CachedPredictor) ListModels() []string {
	return c.predictor.ListModels()
}

// InvalidateModel drops cached probabilities and the loaded model
func (c *CachedPredictor) InvalidateModel(modelName string) {
	c.cache.InvalidateModel(modelName)
	c.predictor.Invalidate(modelName)
}

// CacheStats returns cache statistics
func (c *CachedPredictor) CacheStats() (hits, misses uint64, ratio float64) {
	return c.cache.Stats()
}
