package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/predictor"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeProvider returns canned odds without any network access
type fakeProvider struct {
	name    string
	enabled bool
	events  []oddsfeed.EventOdds
	err     error
	calls   int
}

func (f *fakeProvider) FetchOdds(ctx context.Context, query oddsfeed.OddsQuery) ([]oddsfeed.EventOdds, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) IsEnabled() bool { return f.enabled }

func testEvents() []oddsfeed.EventOdds {
	return []oddsfeed.EventOdds{
		{
			SourceID:  "ev1",
			Source:    "fake_book",
			EventName: "Arsenal v Chelsea",
			FetchedAt: time.Now().UTC(),
			Markets: []oddsfeed.MarketOdds{
				{
					MarketID:   "m1",
					MarketName: "Over/Under 2.5",
					Outcomes: []oddsfeed.OutcomeOdds{
						{Name: "Over 2.5", BestPrice: 2.2, Prices: map[string]float64{"bet365": 2.2}},
						{Name: "Under 2.5", BestPrice: 1.7, Prices: map[string]float64{"bet365": 1.7}},
						{Name: "Exactly 2.5", BestPrice: 12.0, Prices: map[string]float64{"bet365": 12.0}},
					},
				},
			},
		},
	}
}

// trainedPredictor registers a small model fit on the test event features
func trainedPredictor(t *testing.T, name string) *predictor.CachedPredictor {
	t.Helper()

	train := features.FromEventOdds(testEvents())
	features.Enrich(train)
	train.AddColumn("outcome", func(row int) features.Cell {
		return features.Numeric(float64(row % 2))
	})

	pipeline, err := features.FitPipeline(train, features.StrategyMean, "outcome")
	require.NoError(t, err)

	X, err := train.Matrix(pipeline.FeatureColumns)
	require.NoError(t, err)
	labels := []float64{0, 1, 0}

	clf := model.NewLogisticRegression(50, 0.15)
	require.NoError(t, clf.Fit(X, labels))

	registry, err := model.NewRegistry(t.TempDir())
	require.NoError(t, err)
	_, err = registry.Save(name, "v1", clf, pipeline, nil)
	require.NoError(t, err)

	return predictor.NewCachedPredictor(predictor.NewPredictor(registry, testLogger()), time.Minute, 100)
}

func testRecommendationConfig() config.RecommendationConfig {
	return config.RecommendationConfig{
		MinExpectedValue: 0,
		DefaultMaxOdds:   20,
		MaxCandidates:    10,
	}
}

func newTestService(t *testing.T, provider oddsfeed.Provider) *RecommendationService {
	t.Helper()
	return NewRecommendationService(
		map[string]oddsfeed.Provider{provider.Name(): provider},
		trainedPredictor(t, "test-model"),
		nil, nil,
		testRecommendationConfig(),
		time.Minute,
		testLogger(),
	)
}

func TestRecommendUnknownSite(t *testing.T) {
	svc := newTestService(t, &fakeProvider{name: "fake_book", enabled: true, events: testEvents()})

	_, err := svc.Recommend(context.Background(), RecommendRequest{
		Site:      "mystery_book",
		ModelName: "test-model",
	})
	assert.True(t, errors.Is(err, models.ErrUnknownSite))
}

func TestRecommendRanksByEV(t *testing.T) {
	svc := newTestService(t, &fakeProvider{name: "fake_book", enabled: true, events: testEvents()})

	result, err := svc.Recommend(context.Background(), RecommendRequest{
		Site:      "fake_book",
		ModelName: "test-model",
		MaxOdds:   20,
		BetAmount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.CandidatesSeen)
	for i := 1; i < len(result.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			result.Recommendations[i-1].EV,
			result.Recommendations[i].EV,
			"recommendations must be sorted by EV descending")
	}
	for _, rec := range result.Recommendations {
		assert.Greater(t, rec.EV, 0.0, "only positive-EV candidates are served")
		assert.LessOrEqual(t, rec.Odds, 20.0)
		expectedProfit := decimal.NewFromInt(10).Mul(decimal.NewFromFloat(rec.Odds - 1))
		assert.True(t, rec.PotentialProfit.Equal(expectedProfit))
	}
}

func TestRecommendMaxOddsInclusive(t *testing.T) {
	events := testEvents()
	svc := newTestService(t, &fakeProvider{name: "fake_book", enabled: true, events: events})

	result, err := svc.Recommend(context.Background(), RecommendRequest{
		Site:      "fake_book",
		ModelName: "test-model",
		MaxOdds:   2.2,
		BetAmount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	for _, rec := range result.Recommendations {
		assert.LessOrEqual(t, rec.Odds, 2.2, "odds equal to the cap are allowed")
	}
	// The 12.0 outcome is always excluded by the cap
	for _, rec := range result.Recommendations {
		assert.NotEqual(t, "Exactly 2.5", rec.Outcome)
	}
}

func TestRecommendDesiredProfitFilter(t *testing.T) {
	svc := newTestService(t, &fakeProvider{name: "fake_book", enabled: true, events: testEvents()})

	// A winning bet at odds 2.2 returns 120%; requiring 500% excludes
	// everything below odds 6.0
	result, err := svc.Recommend(context.Background(), RecommendRequest{
		Site:          "fake_book",
		ModelName:     "test-model",
		MaxOdds:       20,
		BetAmount:     decimal.NewFromInt(1),
		DesiredProfit: 500,
	})
	require.NoError(t, err)

	for _, rec := range result.Recommendations {
		assert.GreaterOrEqual(t, (rec.Odds-1)*100, 500.0)
	}
}

func TestRecommendProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		name:    "fake_book",
		enabled: true,
		err:     oddsfeed.NewProviderError("fake_book", oddsfeed.ErrCodeServerError, "boom", nil),
	}
	svc := newTestService(t, provider)

	_, err := svc.Recommend(context.Background(), RecommendRequest{
		Site:      "fake_book",
		ModelName: "test-model",
	})
	assert.Error(t, err)
}

func TestRecommendCachesOdds(t *testing.T) {
	provider := &fakeProvider{name: "fake_book", enabled: true, events: testEvents()}
	svc := newTestService(t, provider)

	req := RecommendRequest{
		Site:      "fake_book",
		ModelName: "test-model",
		BetAmount: decimal.NewFromInt(1),
	}

	_, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Recommend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "second request should reuse cached odds")
}

func TestSitesListsEnabledOnly(t *testing.T) {
	svc := NewRecommendationService(
		map[string]oddsfeed.Provider{
			"on":  &fakeProvider{name: "on", enabled: true},
			"off": &fakeProvider{name: "off", enabled: false},
		},
		trainedPredictor(t, "test-model"),
		nil, nil,
		testRecommendationConfig(),
		time.Minute,
		testLogger(),
	)

	assert.Equal(t, []string{"on"}, svc.Sites())
}

func TestRankCandidates(t *testing.T) {
	quote := func(price float64) models.OddsQuote {
		return models.OddsQuote{Price: price, Outcome: "x"}
	}

	candidates := []models.BetCandidate{
		models.NewBetCandidate(quote(2.0), 0.6),  // ev 0.2
		models.NewBetCandidate(quote(3.0), 0.5),  // ev 1.0
		models.NewBetCandidate(quote(2.0), 0.4),  // ev -0.2, filtered
		models.NewBetCandidate(quote(50.0), 0.9), // odds above cap, filtered
	}

	ranked := rankCandidates(candidates, 0, 10, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, 1.0, ranked[0].EV)
	assert.InDelta(t, 0.2, ranked[1].EV, 1e-9)
}

func TestExpectedValueBreakEven(t *testing.T) {
	// p=0.5 at odds 2.0 is exactly break-even and must not qualify
	c := models.NewBetCandidate(models.OddsQuote{Price: 2.0}, 0.5)
	assert.InDelta(t, 0.0, c.EV, 1e-12)

	ranked := rankCandidates([]models.BetCandidate{c}, 0, 10, 0)
	assert.Empty(t, ranked, "zero EV is not strictly positive")
}
