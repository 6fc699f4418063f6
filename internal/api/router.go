package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/api/handlers"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/services"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Store    *storage.Store
	Cache    *services.CacheService
	Provider handlers.HealthChecker
	AI       handlers.HealthChecker
	Logger   *logrus.Logger
}

// SetupRouter builds the gin engine with all routes registered.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Cache, deps.Provider, deps.AI, deps.Logger)
	snapshotHandler := handlers.NewSnapshotHandler(deps.Store, deps.Cache, deps.Logger)

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/recommendations", snapshotHandler.GetRecommendations)
		v1.GET("/roster", snapshotHandler.GetRoster)
		v1.GET("/swaps", snapshotHandler.GetSwaps)
		v1.GET("/free-agents", snapshotHandler.GetFreeAgents)
		v1.GET("/standings", snapshotHandler.GetStandings)
		v1.GET("/summary", snapshotHandler.GetSummary)
	}

	return router
}
