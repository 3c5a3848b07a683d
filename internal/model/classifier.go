// Package model implements the binary classifiers used to estimate outcome
// probabilities from engineered odds features.
package model

import (
	"errors"
	"fmt"
)

// Model type tags stored with serialized models
const (
	TypeLogistic     = "logistic_regression"
	TypeRandomForest = "random_forest"
)

// ErrNotTrained is returned when predicting with a model that has no weights
var ErrNotTrained = errors.New("model has not been trained")

// Classifier estimates the probability of the positive class for feature
// vectors
type Classifier interface {
	// Fit trains the classifier on feature matrix X and binary labels y
	Fit(X [][]float64, y []float64) error

	// PredictProba returns the positive-class probability for one vector
	PredictProba(x []float64) (float64, error)

	// Type returns the model type tag
	Type() string
}

// New creates an untrained classifier of the given type
func New(modelType string, opts Options) (Classifier, error) {
	switch modelType {
	case TypeLogistic:
		return NewLogisticRegression(opts.Iterations, opts.LearningRate), nil
	case TypeRandomForest:
		return NewRandomForest(opts.Trees, opts.MaxDepth, opts.Seed), nil
	default:
		return nil, fmt.Errorf("unknown model type %q", modelType)
	}
}

// Options holds training hyperparameters for all classifier types
type Options struct {
	Iterations   int     // logistic regression gradient descent iterations
	LearningRate float64 // logistic regression step size
	Trees        int     // random forest ensemble size
	MaxDepth     int     // random forest tree depth limit
	Seed         int64   // random forest bootstrap seed
}

// DefaultOptions returns the training defaults
func DefaultOptions() Options {
	return Options{
		Iterations:   400,
		LearningRate: 0.15,
		Trees:        100,
		MaxDepth:     8,
		Seed:         1,
	}
}

// validateTrainingData checks shape invariants shared by all classifiers
func validateTrainingData(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix has %d rows, labels have %d", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return errors.New("training set has no features")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label at row %d is %v, expected 0 or 1", i, label)
		}
	}
	return nil
}
