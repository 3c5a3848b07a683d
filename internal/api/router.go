// Package api exposes the value-finder over HTTP: recommendation runs,
// model and site discovery, user preferences and bet history, and a
// websocket stream of freshly ingested odds.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/service"
)

// RouterConfig bundles everything the HTTP layer depends on
type RouterConfig struct {
	Recommend     *service.RecommendationService
	History       *service.HistoryService
	Hub           *OddsHub
	Logger        *logrus.Logger
	Server        config.ServerConfig
	Environment   string
	HealthHandler http.Handler
}

// NewRouter builds the gin engine with all routes and middleware attached
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Logger))
	router.Use(CORS(cfg.Server.AllowedOrigins))

	handler := NewHandler(cfg.Recommend, cfg.History, cfg.Logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/sites", handler.ListSites)
		v1.GET("/models", handler.ListModels)
		v1.POST("/recommendations", handler.CreateRecommendations)

		v1.GET("/users/:id/preferences", handler.GetPreferences)
		v1.PUT("/users/:id/preferences", handler.UpdatePreferences)
		v1.GET("/users/:id/bets", handler.ListBets)
		v1.POST("/users/:id/bets", handler.CreateBet)
		v1.PUT("/bets/:id/settlement", handler.SettleBet)
	}

	if cfg.Hub != nil {
		router.GET("/ws/odds", cfg.Hub.HandleWS)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.HealthHandler != nil {
		router.GET("/healthz", gin.WrapH(cfg.HealthHandler))
	} else {
		router.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	return router
}
