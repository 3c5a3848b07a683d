package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/service"
)

// Handler serves the JSON API backed by the recommendation and history
// services
type Handler struct {
	recommend *service.RecommendationService
	history   *service.HistoryService
	logger    *logrus.Logger
}

// NewHandler creates the API handler
func NewHandler(recommend *service.RecommendationService, history *service.HistoryService, logger *logrus.Logger) *Handler {
	return &Handler{
		recommend: recommend,
		history:   history,
		logger:    logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// recommendationRequest is the POST /recommendations payload. Bounds
// mirror the form the tool grew out of: positive stake, odds cap above 1,
// desired profit as a percentage between 1 and 1000.
type recommendationRequest struct {
	Site          string  `json:"site" binding:"required"`
	Model         string  `json:"model" binding:"required"`
	EventID       string  `json:"event_id"`
	MaxOdds       float64 `json:"max_odds" binding:"omitempty,gt=1"`
	BetAmount     float64 `json:"bet_amount" binding:"required,gt=0"`
	DesiredProfit float64 `json:"desired_profit" binding:"omitempty,min=1,max=1000"`
	UserID        string  `json:"user_id" binding:"omitempty,uuid"`
}

// ListSites returns the enabled odds providers
// GET /api/v1/sites
func (h *Handler) ListSites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sites": h.recommend.Sites()})
}

// ListModels returns the registered prediction models
// GET /api/v1/models
func (h *Handler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.recommend.Models()})
}

// CreateRecommendations runs a recommendation request
// POST /api/v1/recommendations
func (h *Handler) CreateRecommendations(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	svcReq := service.RecommendRequest{
		Site:          req.Site,
		ModelName:     req.Model,
		EventID:       req.EventID,
		MaxOdds:       req.MaxOdds,
		BetAmount:     decimal.NewFromFloat(req.BetAmount),
		DesiredProfit: req.DesiredProfit,
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
			return
		}
		svcReq.UserID = userID
	}

	result, err := h.recommend.Recommend(c.Request.Context(), svcReq)
	if err != nil {
		h.writeRecommendError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeRecommendError maps service errors onto HTTP statuses: bad input is
// 400, a missing model 404, an upstream provider failure 502
func (h *Handler) writeRecommendError(c *gin.Context, err error) {
	var provErr oddsfeed.ProviderError
	switch {
	case errors.Is(err, models.ErrUnknownSite):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrModelNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNoOddsData):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &provErr):
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).Error("Recommendation request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// GetPreferences returns a user's stored preferences
// GET /api/v1/users/:id/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	profile, err := h.history.Preferences(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load preferences")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type preferencesRequest struct {
	RiskTolerance string `json:"risk_tolerance" binding:"required,oneof=low medium high"`
}

// UpdatePreferences stores a user's risk tolerance
// PUT /api/v1/users/:id/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	profile, err := h.history.UpdateRiskTolerance(c.Request.Context(), userID, models.RiskTolerance(req.RiskTolerance))
	if err != nil {
		h.logger.WithError(err).Error("Failed to update preferences")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListBets returns a user's bet history, newest first
// GET /api/v1/users/:id/bets
func (h *Handler) ListBets(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	bets, err := h.history.BetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bet history")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

type recordBetRequest struct {
	EventName   string  `json:"event_name" binding:"required"`
	Market      string  `json:"market"`
	Outcome     string  `json:"outcome" binding:"required"`
	Bookmaker   string  `json:"bookmaker"`
	Model       string  `json:"model" binding:"required"`
	Odds        float64 `json:"odds" binding:"required,gt=1"`
	Stake       float64 `json:"stake" binding:"required,gt=0"`
	Probability float64 `json:"probability" binding:"omitempty,gte=0,lte=1"`
}

// CreateBet records a bet against a user's history
// POST /api/v1/users/:id/bets
func (h *Handler) CreateBet(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req recordBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	bet, err := h.history.RecordBet(c.Request.Context(), service.RecordBetRequest{
		UserID:      userID,
		EventName:   req.EventName,
		Market:      req.Market,
		Outcome:     req.Outcome,
		Bookmaker:   req.Bookmaker,
		ModelName:   req.Model,
		Odds:        req.Odds,
		Stake:       decimal.NewFromFloat(req.Stake),
		Probability: req.Probability,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to record bet")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusCreated, bet)
}

type settleBetRequest struct {
	Status string `json:"status" binding:"required,oneof=won lost void"`
}

// SettleBet settles a recorded bet and writes its profit or loss
// PUT /api/v1/bets/:id/settlement
func (h *Handler) SettleBet(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	var req settleBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	bet, err := h.history.SettleBet(c.Request.Context(), betID, models.BetStatus(req.Status))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "bet not found"})
			return
		}
		if errors.Is(err, models.ErrAlreadySettled) {
			c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to settle bet")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, bet)
}

func (h *Handler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}
