package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpectedValue computes the expected value of a unit-stake bet given the
// model probability and decimal odds: p*odds - (1-p)
func ExpectedValue(probability, odds float64) float64 {
	return probability*odds - (1 - probability)
}

// BetCandidate couples an odds quote with a model probability for ranking
type BetCandidate struct {
	Quote       OddsQuote `json:"quote"`
	Probability float64   `json:"probability"`
	EV          float64   `json:"ev"`
}

// NewBetCandidate builds a candidate with its EV precomputed
func NewBetCandidate(quote OddsQuote, probability float64) BetCandidate {
	return BetCandidate{
		Quote:       quote,
		Probability: probability,
		EV:          ExpectedValue(probability, quote.Price),
	}
}

// IsValue reports whether the candidate clears the EV threshold and odds cap
func (c *BetCandidate) IsValue(minEV, maxOdds float64) bool {
	return c.EV > minEV && c.Quote.Price <= maxOdds
}

// Recommendation is a ranked candidate bet returned to the user
type Recommendation struct {
	ID              uuid.UUID       `json:"id"`
	EventName       string          `json:"event_name"`
	Market          string          `json:"market"`
	Outcome         string          `json:"outcome"`
	Bookmaker       string          `json:"bookmaker"`
	Odds            float64         `json:"odds"`
	Probability     float64         `json:"probability"`
	EV              float64         `json:"ev"`
	Stake           decimal.Decimal `json:"stake"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	ModelName       string          `json:"model_name"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// PotentialProfitFor returns the profit a winning bet of the given stake
// would yield at the quote's odds
func (c *BetCandidate) PotentialProfitFor(stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(decimal.NewFromFloat(c.Quote.Price - 1))
}
