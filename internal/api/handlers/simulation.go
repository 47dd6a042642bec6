package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/optimizer"
	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/internal/simulator"
	"github.com/stitts-dev/tennis-sim/pkg/cache"
	"github.com/stitts-dev/tennis-sim/pkg/config"
)

// SimulationHandler serves slate simulations and full pipeline runs
type SimulationHandler struct {
	config  config.Config
	cache   *cache.ResultCache
	metrics *metrics.Collector
	logger  *logrus.Entry
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(
	cfg config.Config,
	cache *cache.ResultCache,
	collector *metrics.Collector,
	logger *logrus.Entry,
) *SimulationHandler {
	return &SimulationHandler{
		config:  cfg,
		cache:   cache,
		metrics: collector,
		logger:  logger,
	}
}

func (h *SimulationHandler) runner(cfg config.Config) *pipeline.Runner {
	return pipeline.NewRunner(cfg.PipelineSettings(), pipeline.WithMetrics(h.metrics))
}

// cacheKey digests everything that determines a result. Worker count does not.
func cacheKey(kind string, cfg config.Config, inputs ...any) (string, error) {
	settings := cfg.PipelineSettings()
	settings.Simulation.Workers = 0
	settings.Optimizer.Workers = 0
	return cache.Key(append([]any{kind, settings}, inputs...)...)
}

// RunSimulation handles POST /api/v1/simulate
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := req.Settings.Apply(h.config)
	if err != nil {
		invalidSettings(c, err)
		return
	}
	details := c.Query("details") == "true"

	key, err := cacheKey("simulate", cfg, req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cached, err := h.cache.GetSlateResult(c.Request.Context(), key); err == nil {
		h.metrics.CacheLookup(true)
		h.logger.WithField("cache_key", key).Info("Returning cached simulation result")
		c.JSON(http.StatusOK, newSimulateResponse(cached, true, details))
		return
	}
	h.metrics.CacheLookup(false)

	slate, err := h.runner(cfg).Simulate(c.Request.Context(), req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.cache.SetSlateResult(c.Request.Context(), key, slate); err != nil {
		h.logger.WithError(err).Warn("Failed to cache simulation result")
	}
	c.JSON(http.StatusOK, newSimulateResponse(slate, false, details))
}

// RunPipeline handles POST /api/v1/pipeline
func (h *SimulationHandler) RunPipeline(c *gin.Context) {
	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := req.Settings.Apply(h.config)
	if err != nil {
		invalidSettings(c, err)
		return
	}
	details := c.Query("details") == "true"

	key, err := cacheKey("pipeline", cfg, req.Roster, req.Salaries)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cached, err := h.cache.GetPipelineResult(c.Request.Context(), key); err == nil {
		h.metrics.CacheLookup(true)
		h.logger.WithFields(logrus.Fields{
			"cache_key": key,
			"run_id":    cached.RunID,
		}).Info("Returning cached pipeline result")
		c.JSON(http.StatusOK, newPipelineResponse(cached, true, details))
		return
	}
	h.metrics.CacheLookup(false)

	res, err := h.runner(cfg).Run(c.Request.Context(), req.Roster, models.NewSalaryPool(req.Salaries))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.cache.SetPipelineResult(c.Request.Context(), key, res); err != nil {
		h.logger.WithError(err).Warn("Failed to cache pipeline result")
	}
	c.JSON(http.StatusOK, newPipelineResponse(res, false, details))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Invalid request format",
		Code:  "INVALID_REQUEST",
		Details: map[string]string{
			"validation_error": err.Error(),
		},
	})
}

func invalidSettings(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Invalid settings",
		Code:  "INVALID_SETTINGS",
		Details: map[string]string{
			"validation_error": err.Error(),
		},
	})
}

// fail maps structural run failures to 422 and everything else to 500
func (h *SimulationHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	code := ""
	switch {
	case errors.Is(err, simulator.ErrEmptyRoster):
		code = "EMPTY_ROSTER"
	case errors.Is(err, simulator.ErrNoValidPairings):
		code = "NO_VALID_PAIRINGS"
	case errors.Is(err, simulator.ErrDuplicateCompetitor):
		code = "DUPLICATE_COMPETITOR"
	case errors.Is(err, optimizer.ErrEmptyProjection):
		code = "NO_DRAFTABLE_COMPETITORS"
	case errors.Is(err, simulator.ErrInvalidSettings), errors.Is(err, optimizer.ErrInvalidSettings):
		code = "INVALID_SETTINGS"
	}
	if code != "" {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Slate cannot be processed",
			Code:    code,
			Details: map[string]string{"error": err.Error()},
		})
		return
	}

	h.logger.WithError(err).Error("Simulation run failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Simulation run failed",
		Code:    "SIMULATION_ERROR",
		Details: map[string]string{"error": err.Error()},
	})
}
