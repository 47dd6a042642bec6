package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/tennis-sim/internal/api/handlers"
	"github.com/stitts-dev/tennis-sim/internal/api/middleware"
	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/pkg/cache"
	"github.com/stitts-dev/tennis-sim/pkg/config"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

// NewRouter wires every route of the HTTP service
func NewRouter(cfg config.Config, resultCache *cache.ResultCache, collector *metrics.Collector) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(collector), gin.Recovery())

	log := logger.WithService(serviceName)
	simulationHandler := handlers.NewSimulationHandler(cfg, resultCache, collector, log)
	healthHandler := handlers.NewHealthHandler(resultCache, log)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/simulate", simulationHandler.RunSimulation)
		apiV1.POST("/pipeline", simulationHandler.RunPipeline)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	return router
}

const serviceName = "tennis-sim"
