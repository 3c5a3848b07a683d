package model

import (
	"fmt"
	"math"
)

// LogisticRegression is a binary classifier trained with gradient descent
// on log-loss. The first weight is the intercept.
type LogisticRegression struct {
	Weights      []float64 `json:"weights"`
	Iterations   int       `json:"iterations"`
	LearningRate float64   `json:"learning_rate"`
}

// NewLogisticRegression creates an untrained logistic regression
func NewLogisticRegression(iterations int, learningRate float64) *LogisticRegression {
	if iterations <= 0 {
		iterations = 400
	}
	if learningRate <= 0 {
		learningRate = 0.15
	}
	return &LogisticRegression{
		Iterations:   iterations,
		LearningRate: learningRate,
	}
}

// Fit trains the weights on feature matrix X and binary labels y
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}

	n := len(X)
	width := len(X[0]) + 1 // intercept term
	w := make([]float64, width)

	for iter := 0; iter < m.Iterations; iter++ {
		for i, row := range X {
			z := w[0]
			for k, v := range row {
				z += w[k+1] * v
			}
			p := sigmoid(z)
			// gradient of -[y*log(p)+(1-y)*log(1-p)] = (p-y)*x
			g := p - y[i]
			step := m.LearningRate * g / float64(n)
			w[0] -= step
			for k, v := range row {
				w[k+1] -= step * v
			}
		}
	}

	m.Weights = w
	return nil
}

// PredictProba returns the positive-class probability for one vector
func (m *LogisticRegression) PredictProba(x []float64) (float64, error) {
	if len(m.Weights) == 0 {
		return 0, ErrNotTrained
	}
	if len(x) != len(m.Weights)-1 {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(x), len(m.Weights)-1)
	}

	z := m.Weights[0]
	for k, v := range x {
		z += m.Weights[k+1] * v
	}
	return sigmoid(z), nil
}

// Type returns the model type tag
func (m *LogisticRegression) Type() string {
	return TypeLogistic
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
