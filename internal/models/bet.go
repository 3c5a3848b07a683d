package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle status of a recorded bet
type BetStatus string

const (
	BetStatusPlaced BetStatus = "placed"
	BetStatusWon    BetStatus = "won"
	BetStatusLost   BetStatus = "lost"
	BetStatusVoid   BetStatus = "void"
)

// BetRecord represents a bet recorded against a user's history
type BetRecord struct {
	ID          uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id" validate:"required,uuid4"`
	EventID     uuid.UUID       `db:"event_id" json:"event_id"`
	EventName   string          `db:"event_name" json:"event_name"`
	Market      string          `db:"market" json:"market"`
	Outcome     string          `db:"outcome" json:"outcome"`
	Bookmaker   string          `db:"bookmaker" json:"bookmaker"`
	ModelName   string          `db:"model_name" json:"model_name" validate:"required"`
	Odds        float64         `db:"odds" json:"odds" validate:"required,gt=1"`
	Stake       decimal.Decimal `db:"stake" json:"stake"`
	Probability float64         `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	EV          float64         `db:"ev" json:"ev"`
	Status      BetStatus       `db:"status" json:"status" validate:"required,oneof=placed won lost void"`
	PlacedAt    time.Time       `db:"placed_at" json:"placed_at" validate:"required"`
	SettledAt   *time.Time      `db:"settled_at" json:"settled_at"`
	ProfitLoss  *decimal.Decimal `db:"profit_loss" json:"profit_loss"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// IsSettled checks if the bet has reached a terminal status
func (b *BetRecord) IsSettled() bool {
	return b.Status == BetStatusWon || b.Status == BetStatusLost || b.Status == BetStatusVoid
}

// PotentialProfit returns the profit the bet would yield if it wins
func (b *BetRecord) PotentialProfit() decimal.Decimal {
	return b.Stake.Mul(decimal.NewFromFloat(b.Odds - 1))
}

// GetROI returns the realised return on investment as a percentage
func (b *BetRecord) GetROI() float64 {
	if b.Stake.IsZero() || b.ProfitLoss == nil {
		return 0
	}
	roi, _ := b.ProfitLoss.Div(b.Stake).Mul(decimal.NewFromInt(100)).Float64()
	return roi
}
