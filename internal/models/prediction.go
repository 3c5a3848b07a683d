package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Prediction represents a model probability emitted for a single outcome
type Prediction struct {
	ID          uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	ModelName   string          `db:"model_name" json:"model_name" validate:"required"`
	EventID     uuid.UUID       `db:"event_id" json:"event_id"`
	Market      string          `db:"market" json:"market"`
	Outcome     string          `db:"outcome" json:"outcome"`
	Probability float64         `db:"probability" json:"probability" validate:"required,gte=0,lte=1"`
	EV          float64         `db:"ev" json:"ev"`
	Features    json.RawMessage `db:"features" json:"features"`
	PredictedAt time.Time       `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// GetFeature retrieves a feature value from the Features JSON
func (p *Prediction) GetFeature(name string) (interface{}, error) {
	if p.Features == nil {
		return nil, nil
	}

	var features map[string]interface{}
	if err := json.Unmarshal(p.Features, &features); err != nil {
		return nil, err
	}

	return features[name], nil
}

// MeetsThreshold checks if the probability meets the given threshold
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Probability >= threshold
}
