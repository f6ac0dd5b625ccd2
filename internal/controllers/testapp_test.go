package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"botstats/internal/controllers"
	"botstats/internal/middleware"
	"botstats/internal/models"
	"botstats/internal/routes"
	"botstats/internal/services"
)

const (
	adminPassword = "test-admin-secret"
	testServerID  = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
)

// testApp is a full router wired over real services: mock clock, temp
// data directory, local-only backend, fresh metrics registry.
type testApp struct {
	router *gin.Engine
	state  *services.State
	clock  *quartz.Mock
	logs   *services.LogBuffer
	hub    *services.WebSocketHub
	sched  *services.Scheduler
	dir    string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := quartz.NewMock(t)
	state := services.NewState(clock, 8*time.Second)
	dir := t.TempDir()
	backend := services.NewLocalBackend(services.NewFileStore(dir))
	metrics := services.NewMetrics(prometheus.NewRegistry())
	logs := services.NewLogBuffer()
	hub := services.NewWebSocketHub(state, metrics)

	// An hour-long tick on a mock clock: the loop never fires unless a
	// test advances time, but forced backups still work and Close still
	// waits for them.
	sched := services.StartScheduler(t.Context(), services.SchedulerOptions{
		State:           state,
		Backend:         backend,
		Clock:           clock,
		Metrics:         metrics,
		Interval:        time.Hour,
		FlushEveryTicks: 1,
		BackupEvery:     time.Hour,
	})
	t.Cleanup(func() { _ = sched.Close() })

	auth := services.NewAdminAuth(adminPassword)
	seclog := middleware.NewSecurityLogger()

	statsCtl := &controllers.StatsController{
		State:      state,
		Scheduler:  sched,
		Backend:    backend,
		Metrics:    metrics,
		Logs:       logs,
		SysInfo:    services.NewSysInfoCache(dir, time.Minute),
		InstanceID: "test-instance",
		StartedAt:  time.Now().Add(-time.Minute),
	}
	historyCtl := &controllers.HistoryController{State: state}
	wsCtl := &controllers.WebSocketController{Hub: hub}
	adminCtl := &controllers.AdminController{
		State:     state,
		Scheduler: sched,
		Backend:   backend,
		Auth:      auth,
		Seclog:    seclog,
	}

	r := gin.New()
	routes.RegisterAPIRoutes(r, statsCtl, historyCtl, wsCtl)
	routes.RegisterAdminRoutes(r, adminCtl, middleware.NewAuthRateLimiter())

	return &testApp{
		router: r,
		state:  state,
		clock:  clock,
		logs:   logs,
		hub:    hub,
		sched:  sched,
		dir:    dir,
	}
}

// doRequest runs one request through a router. A non-nil body is sent
// as JSON; a non-empty bearer goes into the Authorization header.
func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (a *testApp) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	return doRequest(t, a.router, method, path, body, bearer)
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return a.do(t, http.MethodGet, path, nil, "")
}

func (a *testApp) adminGet(t *testing.T, path string) *httptest.ResponseRecorder {
	return a.do(t, http.MethodGet, path, nil, adminPassword)
}

func (a *testApp) adminPost(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	return a.do(t, http.MethodPost, path, body, adminPassword)
}

// postReport ingests one report through the public endpoint.
func (a *testApp) postReport(t *testing.T, rep *models.StatsReport) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/stats", rep, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func testReport(bots int, spawned, killed int64) *models.StatsReport {
	return &models.StatsReport{
		ServerID:          testServerID,
		BotsCount:         bots,
		BotsSpawnedTotal:  spawned,
		BotsKilledTotal:   killed,
		ModVersion:        "1.4.0",
		MinecraftVersion:  "1.21.4",
		RealPlayersCount:  2,
		TotalPlayersCount: bots + 2,
		ServerCore:        "paper",
	}
}
