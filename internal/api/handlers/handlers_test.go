package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/pkg/cache"
	"github.com/stitts-dev/tennis-sim/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func baseConfig() config.Config {
	return config.Config{
		Env:               "test",
		PreMatchVariance:  0.5,
		InMatchVariance:   0.2,
		NumSimulations:    100,
		SimulationWorkers: 2,
		Seed:              3,
		BucketSize:        10,
		NumLineups:        3,
		PoolMultiple:      1,
		SalaryCap:         50000,
		RosterSize:        2,
		MinUniquePlayers:  1,
	}
}

func setupRouter(resultCache *cache.ResultCache) *gin.Engine {
	simulation := NewSimulationHandler(baseConfig(), resultCache, metrics.NewCollector(), quietLogger())
	health := NewHealthHandler(resultCache, quietLogger())

	router := gin.New()
	router.POST("/api/v1/simulate", simulation.RunSimulation)
	router.POST("/api/v1/pipeline", simulation.RunPipeline)
	router.GET("/health", health.GetHealth)
	router.GET("/ready", health.GetReady)
	return router
}

func disabledCache() *cache.ResultCache {
	return cache.NewResultCache(nil, time.Minute, quietLogger())
}

func entry(pairing, name, opponent string) models.RosterEntry {
	return models.RosterEntry{
		PairingID: pairing,
		Name:      name,
		Opponent:  opponent,
		Metrics: models.Metrics{
			FirstServePct:           0.62,
			FirstServeWonPct:        0.72,
			SecondServeWonPct:       0.52,
			FirstServeReturnWonPct:  0.29,
			SecondServeReturnWonPct: 0.50,
			AcesPerMatch:            5,
			DoubleFaultsPerMatch:    2.5,
		},
	}
}

func testRoster() []models.RosterEntry {
	return []models.RosterEntry{
		entry("1", "Sinner", "Paul"), entry("1", "Paul", "Sinner"),
		entry("2", "Swiatek", "Gauff"), entry("2", "Gauff", "Swiatek"),
		entry("3", "Alcaraz", "Ruud"), entry("3", "Ruud", "Alcaraz"),
	}
}

func testSalaries() []models.SalaryEntry {
	return []models.SalaryEntry{
		{Name: "Sinner", Salary: 10000}, {Name: "Paul", Salary: 7000},
		{Name: "Swiatek", Salary: 9800}, {Name: "Gauff", Salary: 7600},
		{Name: "Alcaraz", Salary: 9900}, {Name: "Ruud", Salary: 6800},
	}
}

func post(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRunSimulation(t *testing.T) {
	router := setupRouter(disabledCache())

	w := post(t, router, "/api/v1/simulate", SimulateRequest{Roster: testRoster()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
	assert.Equal(t, 100, resp.Trials)
	assert.Len(t, resp.Summaries, 6)
	assert.Empty(t, resp.Distributions)
	assert.Equal(t, 100, resp.Records["Sinner"].Wins+resp.Records["Sinner"].Losses)
}

func TestRunSimulationDetails(t *testing.T) {
	router := setupRouter(disabledCache())
	sims := 40

	w := post(t, router, "/api/v1/simulate?details=true", SimulateRequest{
		Roster:   testRoster(),
		Settings: &SettingsOverrides{NumSimulations: &sims},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Distributions, 6)
	assert.Len(t, resp.Distributions[0].Scores, sims)
}

func TestRunSimulationErrors(t *testing.T) {
	noTrials := 0

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{name: "invalid json", body: "{not json", status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "missing roster", body: map[string]any{}, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{
			name:   "invalid settings",
			body:   SimulateRequest{Roster: testRoster(), Settings: &SettingsOverrides{NumSimulations: &noTrials}},
			status: http.StatusBadRequest,
			code:   "INVALID_SETTINGS",
		},
		{
			name:   "no valid pairings",
			body:   SimulateRequest{Roster: testRoster()[:1]},
			status: http.StatusUnprocessableEntity,
			code:   "NO_VALID_PAIRINGS",
		},
		{
			name:   "duplicate competitor",
			body:   SimulateRequest{Roster: append(testRoster(), entry("4", "Sinner", "X"), entry("4", "X", "Sinner"))},
			status: http.StatusUnprocessableEntity,
			code:   "DUPLICATE_COMPETITOR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(disabledCache())
			w := post(t, router, "/api/v1/simulate", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestRunPipeline(t *testing.T) {
	router := setupRouter(disabledCache())

	w := post(t, router, "/api/v1/pipeline?details=true", PipelineRequest{
		Roster:   testRoster(),
		Salaries: testSalaries(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PipelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, uint64(3), resp.Seed)
	require.NotEmpty(t, resp.Final.Lineups)
	assert.LessOrEqual(t, len(resp.Final.Lineups), 3)
	assert.Equal(t, 3, resp.Final.Requested)
	assert.Equal(t, resp.Final.Partial(), resp.Partial)
	assert.Len(t, resp.SetUsage, 3)
	for _, l := range resp.Final.Lineups {
		assert.Len(t, l.Players, 2)
		assert.NotEqual(t, l.Players[0].PairingID, l.Players[1].PairingID)
	}
}

func TestBucketSizeOnlyLimitsPipeline(t *testing.T) {
	router := setupRouter(disabledCache())
	sims, bucket := 20, 500
	settings := &SettingsOverrides{NumSimulations: &sims, BucketSize: &bucket}

	w := post(t, router, "/api/v1/simulate", SimulateRequest{Roster: testRoster(), Settings: settings})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post(t, router, "/api/v1/pipeline", PipelineRequest{
		Roster:   testRoster(),
		Salaries: testSalaries(),
		Settings: settings,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_SETTINGS", decodeError(t, w).Code)
}

func TestRunPipelineWithoutDraftableCompetitors(t *testing.T) {
	router := setupRouter(disabledCache())

	w := post(t, router, "/api/v1/pipeline", PipelineRequest{
		Roster:   testRoster(),
		Salaries: []models.SalaryEntry{{Name: "Nobody", Salary: 5000}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NO_DRAFTABLE_COMPETITORS", decodeError(t, w).Code)
}

func TestHealthWithoutCache(t *testing.T) {
	router := setupRouter(disabledCache())

	for _, path := range []string{"/health", "/ready"} {
		w := get(router, path)
		require.Equal(t, http.StatusOK, w.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "not_configured", status.Checks["redis"])
		assert.Equal(t, "tennis-sim", status.Service)
	}
}

func TestReadyWithUnreachableCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	router := setupRouter(cache.NewResultCache(client, time.Minute, quietLogger()))

	w := get(router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
}

func TestSettingsOverridesApply(t *testing.T) {
	sims, seed, salaryCap := 250, uint64(42), 40000
	variance := 0.0

	cfg, err := (&SettingsOverrides{
		NumSimulations:   &sims,
		Seed:             &seed,
		SalaryCap:        &salaryCap,
		PreMatchVariance: &variance,
	}).Apply(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.NumSimulations)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 40000, cfg.SalaryCap)
	assert.Zero(t, cfg.PreMatchVariance)
	assert.Equal(t, 10, cfg.BucketSize)

	var none *SettingsOverrides
	cfg, err = none.Apply(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, baseConfig(), cfg)

	negative := -1
	_, err = (&SettingsOverrides{RosterSize: &negative}).Apply(baseConfig())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
