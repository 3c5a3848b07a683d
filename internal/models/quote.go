package models

import (
	"time"

	"github.com/google/uuid"
)

// OddsQuote represents a point-in-time bookmaker price for a single outcome
type OddsQuote struct {
	Time       time.Time `db:"time" json:"time" validate:"required"`
	EventID    uuid.UUID `db:"event_id" json:"event_id" validate:"required,uuid4"`
	Market     string    `db:"market" json:"market" validate:"required"`
	Outcome    string    `db:"outcome" json:"outcome" validate:"required"`
	Bookmaker  string    `db:"bookmaker" json:"bookmaker" validate:"required"`
	Price      float64   `db:"price" json:"price" validate:"required,gt=1"`
	Handicap   *float64  `db:"handicap" json:"handicap"`
	EventName  string    `db:"event_name" json:"event_name"`
	MarketName string    `db:"market_name" json:"market_name"`
}

// ImpliedProbability returns the probability implied by the decimal price,
// clipped to at most 1. Non-positive prices yield 0.
func (q *OddsQuote) ImpliedProbability() float64 {
	if q.Price <= 0 {
		return 0
	}
	p := 1.0 / q.Price
	if p > 1 {
		return 1
	}
	return p
}

// ProfitMargin returns 1 minus the implied probability
func (q *OddsQuote) ProfitMargin() float64 {
	return 1 - q.ImpliedProbability()
}

// HandicapSign classifies the handicap as positive, negative or zero
func (q *OddsQuote) HandicapSign() string {
	if q.Handicap == nil || *q.Handicap == 0 {
		return "zero"
	}
	if *q.Handicap > 0 {
		return "positive"
	}
	return "negative"
}
