package predictor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleEvents() []oddsfeed.EventOdds {
	return []oddsfeed.EventOdds{
		{
			SourceID:  "ev1",
			EventName: "Arsenal v Chelsea",
			Markets: []oddsfeed.MarketOdds{
				{
					MarketID:   "m1",
					MarketName: "Over/Under 2.5",
					Outcomes: []oddsfeed.OutcomeOdds{
						{Name: "Over 2.5", BestPrice: 2.1},
						{Name: "Under 2.5", BestPrice: 1.75},
					},
				},
			},
		},
	}
}

// trainTestModel fits a small logistic model on the sample event features
// and registers it under the given name
func trainTestModel(t *testing.T, dir, name string) *model.Registry {
	t.Helper()

	train := features.FromEventOdds(sampleEvents())
	features.Enrich(train)
	train.AddColumn("outcome", func(row int) features.Cell {
		return features.Numeric(float64(row % 2))
	})

	pipeline, err := features.FitPipeline(train, features.StrategyMean, "outcome")
	require.NoError(t, err)

	X, err := train.Matrix(pipeline.FeatureColumns)
	require.NoError(t, err)
	y, err := train.Matrix([]string{"outcome"})
	require.NoError(t, err)

	labels := make([]float64, len(y))
	for i := range y {
		labels[i] = y[i][0]
	}

	clf := model.NewLogisticRegression(50, 0.15)
	require.NoError(t, clf.Fit(X, labels))

	registry, err := model.NewRegistry(dir)
	require.NoError(t, err)
	_, err = registry.Save(name, "v1", clf, pipeline, nil)
	require.NoError(t, err)

	return registry
}

func TestPredictorPredict(t *testing.T) {
	registry := trainTestModel(t, t.TempDir(), "test-model")
	p := NewPredictor(registry, testLogger())

	preds, err := p.Predict(context.Background(), "test-model", sampleEvents())
	require.NoError(t, err)
	require.Len(t, preds, 2)

	for _, pred := range preds {
		assert.GreaterOrEqual(t, pred.Probability, 0.0)
		assert.LessOrEqual(t, pred.Probability, 1.0)
		assert.Equal(t, "ev1", pred.EventID)
	}
	assert.Equal(t, "Over 2.5", preds[0].Outcome)
	assert.Equal(t, 2.1, preds[0].BestPrice)
}

func TestPredictorUnknownModel(t *testing.T) {
	registry := trainTestModel(t, t.TempDir(), "test-model")
	p := NewPredictor(registry, testLogger())

	_, err := p.Predict(context.Background(), "missing-model", sampleEvents())
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
}

func TestPredictorEmptyEvents(t *testing.T) {
	registry := trainTestModel(t, t.TempDir(), "test-model")
	p := NewPredictor(registry, testLogger())

	preds, err := p.Predict(context.Background(), "test-model", nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestCachedPredictorHitsCache(t *testing.T) {
	registry := trainTestModel(t, t.TempDir(), "test-model")
	cached := NewCachedPredictor(NewPredictor(registry, testLogger()), time.Minute, 100)

	first, err := cached.Predict(context.Background(), "test-model", sampleEvents())
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := cached.Predict(context.Background(), "test-model", sampleEvents())
	require.NoError(t, err)
	require.Len(t, second, 2)

	for i := range first {
		assert.Equal(t, first[i].Probability, second[i].Probability)
	}

	hits, _, ratio := cached.CacheStats()
	assert.Equal(t, uint64(2), hits)
	assert.Greater(t, ratio, 0.0)
}

func TestCachedPredictorInvalidate(t *testing.T) {
	registry := trainTestModel(t, t.TempDir(), "test-model")
	cached := NewCachedPredictor(NewPredictor(registry, testLogger()), time.Minute, 100)

	_, err := cached.Predict(context.Background(), "test-model", sampleEvents())
	require.NoError(t, err)

	cached.InvalidateModel("test-model")

	_, err = cached.Predict(context.Background(), "test-model", sampleEvents())
	require.NoError(t, err)

	_, misses, _ := cached.CacheStats()
	assert.Equal(t, uint64(4), misses, "all lookups after invalidation should miss")
}

func TestPredictionCacheEviction(t *testing.T) {
	pc := NewPredictionCache(10*time.Millisecond, 2)
	key := CacheKey{ModelName: "m", EventID: "e", MarketID: "mk", Outcome: "o"}

	pc.Set(key, 0.6)
	if p, found := pc.Get(key); !found || p != 0.6 {
		t.Fatalf("Expected cached value 0.6, got %v found=%v", p, found)
	}

	time.Sleep(20 * time.Millisecond)
	if _, found := pc.Get(key); found {
		t.Error("Expected entry to expire")
	}
}
