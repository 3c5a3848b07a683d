package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
)

// OutcomePrediction pairs an outcome's identity and price with the model's
// probability estimate
type OutcomePrediction struct {
	EventID     string
	EventName   string
	MarketID    string
	MarketName  string
	Outcome     string
	BestPrice   float64
	Handicap    *float64
	Probability float64
}

// loadedModel is a deserialized artifact ready for serving
type loadedModel struct {
	classifier model.Classifier
	pipeline   *features.Pipeline
	version    string
}

// Predictor serves probabilities from registry artifacts. Models are
// deserialized lazily and reused across requests.
type Predictor struct {
	registry *model.Registry
	logger   *logrus.Logger

	mu     sync.RWMutex
	loaded map[string]*loadedModel
}

// NewPredictor creates a predictor backed by a model registry
func NewPredictor(registry *model.Registry, logger *logrus.Logger) *Predictor {
	return &Predictor{
		registry: registry,
		logger:   logger,
		loaded:   make(map[string]*loadedModel),
	}
}

// Predict estimates a probability for every priced outcome in the events
func (p *Predictor) Predict(ctx context.Context, modelName string, events []oddsfeed.EventOdds) ([]OutcomePrediction, error) {
	lm, err := p.load(modelName)
	if err != nil {
		return nil, err
	}

	predictions := flattenOutcomes(events)
	if len(predictions) == 0 {
		return nil, nil
	}

	dataset := features.FromEventOdds(events)
	features.Enrich(dataset)

	matrix, err := lm.pipeline.Apply(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to apply feature pipeline: %w", err)
	}
	if len(matrix) != len(predictions) {
		return nil, fmt.Errorf("feature matrix has %d rows for %d outcomes", len(matrix), len(predictions))
	}

	start := time.Now()
	for i := range predictions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prob, err := lm.classifier.PredictProba(matrix[i])
		if err != nil {
			return nil, fmt.Errorf("prediction failed for outcome %q: %w", predictions[i].Outcome, err)
		}
		predictions[i].Probability = prob
	}
	metrics.RecordPrediction(modelName, false, time.Since(start).Seconds())

	return predictions, nil
}

// ModelVersion returns the version of a loaded model
func (p *Predictor) ModelVersion(modelName string) (string, error) {
	lm, err := p.load(modelName)
	if err != nil {
		return "", err
	}
	return lm.version, nil
}

// ListModels returns the names registered on disk
func (p *Predictor) ListModels() []string {
	return p.registry.List()
}

// Invalidate drops a loaded model so the next prediction reloads it from
// the registry
func (p *Predictor) Invalidate(modelName string) {
	p.mu.Lock()
	delete(p.loaded, modelName)
	p.mu.Unlock()
}

// load returns the deserialized model, reading it from the registry on
// first use
func (p *Predictor) load(modelName string) (*loadedModel, error) {
	p.mu.RLock()
	lm, ok := p.loaded[modelName]
	p.mu.RUnlock()
	if ok {
		return lm, nil
	}

	artifact, err := p.registry.Load(modelName)
	if err != nil {
		return nil, err
	}

	classifier, err := artifact.Classifier()
	if err != nil {
		return nil, err
	}
	if artifact.Pipeline == nil {
		return nil, fmt.Errorf("artifact %q has no feature pipeline", modelName)
	}

	lm = &loadedModel{
		classifier: classifier,
		pipeline:   artifact.Pipeline,
		version:    artifact.Version,
	}

	p.mu.Lock()
	p.loaded[modelName] = lm
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"model":   modelName,
		"version": artifact.Version,
		"type":    artifact.ModelType,
	}).Info("Loaded prediction model")

	return lm, nil
}

// flattenOutcomes lists outcomes in the same row order FromEventOdds uses
func flattenOutcomes(events []oddsfeed.EventOdds) []OutcomePrediction {
	var out []OutcomePrediction
	for _, event := range events {
		for _, market := range event.Markets {
			for _, outcome := range market.Outcomes {
				out = append(out, OutcomePrediction{
					EventID:    event.SourceID,
					EventName:  event.EventName,
					MarketID:   market.MarketID,
					MarketName: market.MarketName,
					Outcome:    outcome.Name,
					BestPrice:  outcome.BestPrice,
					Handicap:   outcome.Handicap,
				})
			}
		}
	}
	return out
}
