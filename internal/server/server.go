package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/tennis-sim/internal/api"
	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/pkg/cache"
	"github.com/stitts-dev/tennis-sim/pkg/config"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP service until ctx is canceled, then shuts down gracefully
func Serve(ctx context.Context, cfg *config.Config) error {
	log := logger.WithService("tennis-sim")
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting tennis simulation service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	resultCache := cache.NewResultCache(redisClient, cfg.CacheTTL, log.WithField("component", "cache"))
	defer resultCache.Close()

	if err := resultCache.Ping(ctx); err != nil {
		// the service runs without a cache; readiness reports the failure
		log.WithError(err).Warn("Redis unreachable, results will not be cached")
	}

	router := api.NewRouter(*cfg, resultCache, metrics.NewCollector())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Tennis simulation service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down tennis simulation service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Tennis simulation service exited")
	return nil
}
