package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskTolerance is a per-user preference recorded alongside bet history.
// It is stored and surfaced to the user but never consulted when ranking bets.
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// DefaultRiskTolerance is assigned to users who have never set a preference
const DefaultRiskTolerance = RiskToleranceMedium

// Valid reports whether the value is one of the known tolerance levels
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh:
		return true
	}
	return false
}

// UserProfile represents a user of the betting tool and their preferences
type UserProfile struct {
	ID            uuid.UUID     `db:"id" json:"id" validate:"required,uuid4"`
	RiskTolerance RiskTolerance `db:"risk_tolerance" json:"risk_tolerance" validate:"required,oneof=low medium high"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// NewUserProfile creates a profile with default preferences
func NewUserProfile(id uuid.UUID) *UserProfile {
	now := time.Now()
	return &UserProfile{
		ID:            id,
		RiskTolerance: DefaultRiskTolerance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
