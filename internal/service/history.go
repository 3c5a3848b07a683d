package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/repository"
)

// RecordBetRequest captures a bet the user wants added to their history
type RecordBetRequest struct {
	UserID      uuid.UUID
	EventName   string
	Market      string
	Outcome     string
	Bookmaker   string
	ModelName   string
	Odds        float64
	Stake       decimal.Decimal
	Probability float64
}

// HistoryService manages user bet history and preferences
type HistoryService struct {
	repos  *repository.Repositories
	audit  *logger.AuditLogger
	logger *logrus.Logger
}

// NewHistoryService creates a history service
func NewHistoryService(repos *repository.Repositories, audit *logger.AuditLogger, log *logrus.Logger) *HistoryService {
	return &HistoryService{
		repos:  repos,
		audit:  audit,
		logger: log,
	}
}

// RecordBet writes a new bet to the user's history
func (s *HistoryService) RecordBet(ctx context.Context, req RecordBetRequest) (*models.BetRecord, error) {
	if req.Odds <= 1 {
		return nil, fmt.Errorf("odds must be greater than 1, got %v", req.Odds)
	}
	if req.Stake.IsNegative() || req.Stake.IsZero() {
		return nil, fmt.Errorf("stake must be positive")
	}

	// The user row must exist for the foreign key
	if _, err := s.repos.User.GetOrCreate(ctx, req.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bet := &models.BetRecord{
		ID:          uuid.New(),
		UserID:      req.UserID,
		EventName:   req.EventName,
		Market:      req.Market,
		Outcome:     req.Outcome,
		Bookmaker:   req.Bookmaker,
		ModelName:   req.ModelName,
		Odds:        req.Odds,
		Stake:       req.Stake,
		Probability: req.Probability,
		EV:          models.ExpectedValue(req.Probability, req.Odds),
		Status:      models.BetStatusPlaced,
		PlacedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repos.Bet.Create(ctx, bet); err != nil {
		return nil, err
	}

	metrics.RecordBetRecorded()
	if s.audit != nil {
		stake, _ := bet.Stake.Float64()
		s.audit.LogBetRecorded(bet.ID.String(), bet.UserID.String(), bet.ModelName, bet.Outcome, stake, bet.Odds, bet.EV, now)
	}

	return bet, nil
}

// SettleBet records the outcome of a placed bet
func (s *HistoryService) SettleBet(ctx context.Context, betID uuid.UUID, status models.BetStatus) (*models.BetRecord, error) {
	bet, err := s.repos.Bet.GetByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.IsSettled() {
		return nil, fmt.Errorf("%w: %s", models.ErrAlreadySettled, betID)
	}

	now := time.Now().UTC()
	bet.Status = status
	bet.SettledAt = &now

	var pnl decimal.Decimal
	switch status {
	case models.BetStatusWon:
		pnl = bet.PotentialProfit()
	case models.BetStatusLost:
		pnl = bet.Stake.Neg()
	case models.BetStatusVoid:
		pnl = decimal.Zero
	default:
		return nil, fmt.Errorf("invalid settlement status %q", status)
	}
	bet.ProfitLoss = &pnl

	if err := s.repos.Bet.Update(ctx, bet); err != nil {
		return nil, err
	}

	return bet, nil
}

// BetHistory lists a user's most recent bets
func (s *HistoryService) BetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BetRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repos.Bet.GetByUserID(ctx, userID, limit)
}

// Preferences returns the user's profile, creating it with defaults on
// first access
func (s *HistoryService) Preferences(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return s.repos.User.GetOrCreate(ctx, userID)
}

// UpdateRiskTolerance stores a new risk preference. The value is recorded
// and surfaced but never changes how bets are ranked.
func (s *HistoryService) UpdateRiskTolerance(ctx context.Context, userID uuid.UUID, tolerance models.RiskTolerance) (*models.UserProfile, error) {
	if !tolerance.Valid() {
		return nil, fmt.Errorf("invalid risk tolerance %q", tolerance)
	}

	profile, err := s.repos.User.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := profile.RiskTolerance

	if err := s.repos.User.UpdateRiskTolerance(ctx, userID, tolerance); err != nil {
		return nil, err
	}
	profile.RiskTolerance = tolerance

	if s.audit != nil {
		s.audit.LogPreferenceChange(userID.String(), "risk_tolerance", string(previous), string(tolerance))
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"previous": previous,
		"current":  tolerance,
	}).Info("Risk tolerance updated")

	return profile, nil
}
