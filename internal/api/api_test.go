package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/predictor"
	"github.com/yourusername/edge-finder/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubProvider struct {
	events []oddsfeed.EventOdds
}

func (p *stubProvider) FetchOdds(ctx context.Context, query oddsfeed.OddsQuery) ([]oddsfeed.EventOdds, error) {
	return p.events, nil
}

func (p *stubProvider) Name() string    { return "stub_book" }
func (p *stubProvider) IsEnabled() bool { return true }

func stubEvents() []oddsfeed.EventOdds {
	return []oddsfeed.EventOdds{
		{
			SourceID:  "ev1",
			Source:    "stub_book",
			EventName: "Leeds v Villa",
			FetchedAt: time.Now().UTC(),
			Markets: []oddsfeed.MarketOdds{
				{
					MarketID:   "m1",
					MarketName: "Match Winner",
					Outcomes: []oddsfeed.OutcomeOdds{
						{Name: "Leeds", BestPrice: 2.4, Prices: map[string]float64{"bet365": 2.4}},
						{Name: "Villa", BestPrice: 2.9, Prices: map[string]float64{"bet365": 2.9}},
					},
				},
			},
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	train := features.FromEventOdds(stubEvents())
	features.Enrich(train)
	train.AddColumn("outcome", func(row int) features.Cell {
		return features.Numeric(float64(row % 2))
	})

	pipeline, err := features.FitPipeline(train, features.StrategyMean, "outcome")
	require.NoError(t, err)
	X, err := train.Matrix(pipeline.FeatureColumns)
	require.NoError(t, err)

	clf := model.NewLogisticRegression(50, 0.15)
	require.NoError(t, clf.Fit(X, []float64{0, 1}))

	registry, err := model.NewRegistry(t.TempDir())
	require.NoError(t, err)
	_, err = registry.Save("value-model", "v1", clf, pipeline, nil)
	require.NoError(t, err)

	pred := predictor.NewCachedPredictor(predictor.NewPredictor(registry, testLogger()), time.Minute, 100)

	recommend := service.NewRecommendationService(
		map[string]oddsfeed.Provider{"stub_book": &stubProvider{events: stubEvents()}},
		pred,
		nil, nil,
		config.RecommendationConfig{MinExpectedValue: 0, DefaultMaxOdds: 20, MaxCandidates: 10},
		time.Minute,
		testLogger(),
	)

	return NewRouter(RouterConfig{
		Recommend: recommend,
		History:   service.NewHistoryService(nil, nil, testLogger()),
		Logger:    testLogger(),
		Server:    config.ServerConfig{},
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListSites(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/sites", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sites []string `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"stub_book"}, resp.Sites)
}

func TestListModels(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Models, "value-model")
}

func TestCreateRecommendations(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", gin.H{
		"site":       "stub_book",
		"model":      "value-model",
		"max_odds":   10,
		"bet_amount": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Site            string `json:"site"`
		CandidatesSeen  int    `json:"candidates_seen"`
		Recommendations []struct {
			Odds float64 `json:"odds"`
			EV   float64 `json:"ev"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stub_book", resp.Site)
	assert.Equal(t, 2, resp.CandidatesSeen)
	for _, r := range resp.Recommendations {
		assert.Greater(t, r.EV, 0.0)
		assert.LessOrEqual(t, r.Odds, 10.0)
	}
}

func TestCreateRecommendationsValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing site", gin.H{"model": "value-model", "bet_amount": 10}},
		{"missing model", gin.H{"site": "stub_book", "bet_amount": 10}},
		{"zero bet amount", gin.H{"site": "stub_book", "model": "value-model", "bet_amount": 0}},
		{"desired profit too large", gin.H{"site": "stub_book", "model": "value-model", "bet_amount": 10, "desired_profit": 1001}},
		{"max odds below 1", gin.H{"site": "stub_book", "model": "value-model", "bet_amount": 10, "max_odds": 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateRecommendationsUnknownSite(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", gin.H{
		"site":       "nowhere",
		"model":      "value-model",
		"bet_amount": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecommendationsUnknownModel(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", gin.H{
		"site":       "stub_book",
		"model":      "no-such-model",
		"bet_amount": 10,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpointsRejectBadIDs(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/api/v1/users/not-a-uuid/bets", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/api/v1/users/not-a-uuid/preferences", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPut, "/api/v1/bets/not-a-uuid/settlement", gin.H{"status": "won"}).Code)
}

func TestUpdatePreferencesValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/users/7f9c24e5-2f80-4d1a-b2af-31a1f4dd2d10/preferences", gin.H{
		"risk_tolerance": "reckless",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
