package model

import (
	"fmt"
	"math/rand"
)

// Metrics holds binary classification evaluation results
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Samples   int     `json:"samples"`
}

// Evaluate computes accuracy, precision, recall and F1 against true labels
// using a 0.5 decision threshold
func Evaluate(clf Classifier, X [][]float64, y []float64) (*Metrics, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows, labels have %d", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("empty evaluation set")
	}

	var tp, tn, fp, fn float64
	for i, x := range X {
		p, err := clf.PredictProba(x)
		if err != nil {
			return nil, err
		}
		predicted := 0.0
		if p >= 0.5 {
			predicted = 1.0
		}
		switch {
		case predicted == 1 && y[i] == 1:
			tp++
		case predicted == 0 && y[i] == 0:
			tn++
		case predicted == 1 && y[i] == 0:
			fp++
		default:
			fn++
		}
	}

	m := &Metrics{Samples: len(X)}
	m.Accuracy = (tp + tn) / float64(len(X))
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m, nil
}

// CrossValidate runs k-fold cross validation, training a fresh classifier
// per fold, and returns averaged metrics
func CrossValidate(modelType string, opts Options, X [][]float64, y []float64, folds int, seed int64) (*Metrics, error) {
	if folds < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", folds)
	}
	if len(X) < folds {
		return nil, fmt.Errorf("need at least %d samples for %d folds, got %d", folds, folds, len(X))
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(X))

	total := &Metrics{}
	for fold := 0; fold < folds; fold++ {
		var trainX, testX [][]float64
		var trainY, testY []float64
		for i, idx := range perm {
			if i%folds == fold {
				testX = append(testX, X[idx])
				testY = append(testY, y[idx])
			} else {
				trainX = append(trainX, X[idx])
				trainY = append(trainY, y[idx])
			}
		}

		clf, err := New(modelType, opts)
		if err != nil {
			return nil, err
		}
		if err := clf.Fit(trainX, trainY); err != nil {
			return nil, fmt.Errorf("fold %d training failed: %w", fold, err)
		}

		m, err := Evaluate(clf, testX, testY)
		if err != nil {
			return nil, fmt.Errorf("fold %d evaluation failed: %w", fold, err)
		}

		total.Accuracy += m.Accuracy
		total.Precision += m.Precision
		total.Recall += m.Recall
		total.F1 += m.F1
		total.Samples += m.Samples
	}

	k := float64(folds)
	total.Accuracy /= k
	total.Precision /= k
	total.Recall /= k
	total.F1 /= k

	return total, nil
}
