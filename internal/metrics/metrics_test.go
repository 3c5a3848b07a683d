package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordOddsFetch(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordOddsFetch("rapid_odds", "success", 0.12)
		RecordOddsFetch("inplay_forks", "error", 1.5)
	})
}

func TestRecordRecommendation(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRecommendation("rapid_odds", "soccer-logistic", 0.8)
	})
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPrediction("soccer-logistic", false, 0.01)
		RecordPrediction("soccer-logistic", true, 0)
	})
}

func TestObserveExpectedValue(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name string
		ev   float64
	}{
		{"positive edge", 0.12},
		{"break even", 0},
		{"negative edge", -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				ObserveExpectedValue(tt.ev)
			})
		})
	}
}
