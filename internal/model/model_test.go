package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/models"
)

// separableData builds a trivially separable binary problem: label is 1
// when the first feature is positive
func separableData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		v := float64(i%10) + 1
		X = append(X, []float64{v, 0.5})
		y = append(y, 1)
		X = append(X, []float64{-v, 0.5})
		y = append(y, 0)
	}
	return X, y
}

func TestLogisticRegressionLearnsSeparableData(t *testing.T) {
	X, y := separableData()

	clf := NewLogisticRegression(400, 0.15)
	require.NoError(t, clf.Fit(X, y))

	pPos, err := clf.PredictProba([]float64{5, 0.5})
	require.NoError(t, err)
	pNeg, err := clf.PredictProba([]float64{-5, 0.5})
	require.NoError(t, err)

	assert.Greater(t, pPos, 0.5, "positive sample should score above 0.5")
	assert.Less(t, pNeg, 0.5, "negative sample should score below 0.5")
}

func TestLogisticRegressionUntrained(t *testing.T) {
	clf := NewLogisticRegression(0, 0)
	_, err := clf.PredictProba([]float64{1})
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestLogisticRegressionDimensionMismatch(t *testing.T) {
	X, y := separableData()
	clf := NewLogisticRegression(50, 0.15)
	require.NoError(t, clf.Fit(X, y))

	_, err := clf.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRandomForestLearnsSeparableData(t *testing.T) {
	X, y := separableData()

	clf := NewRandomForest(25, 4, 1)
	require.NoError(t, clf.Fit(X, y))

	pPos, err := clf.PredictProba([]float64{5, 0.5})
	require.NoError(t, err)
	pNeg, err := clf.PredictProba([]float64{-5, 0.5})
	require.NoError(t, err)

	assert.Greater(t, pPos, 0.5)
	assert.Less(t, pNeg, 0.5)
}

func TestRandomForestDeterministicSeed(t *testing.T) {
	X, y := separableData()

	a := NewRandomForest(10, 4, 7)
	require.NoError(t, a.Fit(X, y))
	b := NewRandomForest(10, 4, 7)
	require.NoError(t, b.Fit(X, y))

	pa, err := a.PredictProba([]float64{3, 0.5})
	require.NoError(t, err)
	pb, err := b.PredictProba([]float64{3, 0.5})
	require.NoError(t, err)

	assert.Equal(t, pa, pb, "same seed should produce the same ensemble")
}

func TestFitRejectsBadLabels(t *testing.T) {
	clf := NewLogisticRegression(10, 0.1)
	err := clf.Fit([][]float64{{1}, {2}}, []float64{0, 0.5})
	assert.Error(t, err)
}

func TestEvaluateMetrics(t *testing.T) {
	X, y := separableData()
	clf := NewLogisticRegression(400, 0.15)
	require.NoError(t, clf.Fit(X, y))

	m, err := Evaluate(clf, X, y)
	require.NoError(t, err)

	assert.Greater(t, m.Accuracy, 0.9)
	assert.Greater(t, m.F1, 0.9)
	assert.Equal(t, len(X), m.Samples)
}

func TestCrossValidate(t *testing.T) {
	X, y := separableData()

	m, err := CrossValidate(TypeLogistic, DefaultOptions(), X, y, 4, 42)
	require.NoError(t, err)
	assert.Greater(t, m.Accuracy, 0.8)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New("neural_net", DefaultOptions())
	assert.Error(t, err)
}

func TestRegistryRoundTrip(t *testing.T) {
	dir := t.TempDir()

	registry, err := NewRegistry(dir)
	require.NoError(t, err)

	X, y := separableData()
	clf := NewLogisticRegression(100, 0.15)
	require.NoError(t, clf.Fit(X, y))

	pipeline := &features.Pipeline{
		Strategy:       features.StrategyMean,
		Scaler:         &features.Scaler{Columns: []string{"a"}, Means: map[string]float64{"a": 0}, Stddevs: map[string]float64{"a": 1}},
		Encoder:        &features.Encoder{Categories: map[string][]string{}},
		FeatureColumns: []string{"a", "b"},
	}

	metrics, err := Evaluate(clf, X, y)
	require.NoError(t, err)

	_, err = registry.Save("soccer-logistic", "v1", clf, pipeline, metrics)
	require.NoError(t, err)

	// A fresh registry instance reads the persisted index
	reopened, err := NewRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"soccer-logistic"}, reopened.List())

	artifact, err := reopened.Load("soccer-logistic")
	require.NoError(t, err)
	assert.Equal(t, TypeLogistic, artifact.ModelType)
	assert.Equal(t, []string{"a", "b"}, artifact.Pipeline.FeatureColumns)

	loaded, err := artifact.Classifier()
	require.NoError(t, err)

	want, err := clf.PredictProba([]float64{3, 0.5})
	require.NoError(t, err)
	got, err := loaded.PredictProba([]float64{3, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestRegistryUnknownModel(t *testing.T) {
	registry, err := NewRegistry(t.TempDir())
	require.NoError(t, err)

	_, err = registry.Load("missing")
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
}

func TestArtifactUnknownType(t *testing.T) {
	artifact := &Artifact{
		Name:      "bad",
		ModelType: "gradient_boosting",
		Model:     json.RawMessage(`{}`),
	}
	_, err := artifact.Classifier()
	assert.Error(t, err)
}
