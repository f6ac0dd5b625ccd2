package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"botstats/internal/config"
	"botstats/internal/controllers"
	"botstats/internal/middleware"
	"botstats/internal/routes"
	"botstats/internal/services"
)

func main() {
	cfg := config.Load()

	// Capture the log tail before anything logs, so /api/logs sees
	// the whole boot sequence.
	logs := services.NewLogBuffer()
	logs.Install()

	instanceID := uuid.NewString()
	startedAt := time.Now().UTC()
	log.Printf("[STARTUP] botstats starting (instance %s)", instanceID)

	clock := quartz.NewReal()
	store := services.NewFileStore(cfg.DataDir)

	var backend services.Backend
	if cfg.BackupEnabled() {
		backend = services.NewGitBackend(store, cfg.GitHubRepo, cfg.GitHubToken, cfg.GitHubBranch)
	} else {
		backend = services.NewLocalBackend(store)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	persisted, err := backend.Load(loadCtx)
	cancelLoad()
	if err != nil {
		log.Printf("[STARTUP] Could not load durable state, starting empty: %v", err)
		persisted = services.NewPersistedState()
	}

	state := services.NewState(clock, cfg.OnlineThreshold)
	state.RestoreFrom(persisted)
	log.Printf("[STARTUP] Loaded %d servers", state.ServerCount())
	log.Printf("[STARTUP] Loaded %d history points", state.HistoryPoints())
	if cfg.BackupEnabled() {
		log.Printf("[STARTUP] Remote backup: enabled (branch %s, every %v)", cfg.GitHubBranch, cfg.BackupInterval)
	} else {
		log.Printf("[STARTUP] Remote backup: disabled")
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	adminAuth := services.NewAdminAuth(cfg.AdminPassword)
	if !adminAuth.Enabled() {
		log.Printf("[STARTUP] Admin surface disabled (ADMIN_PASSWORD not set)")
	}

	hub := services.NewWebSocketHub(state, metrics)
	go hub.Run()

	backupEvery := cfg.BackupInterval
	if !cfg.BackupEnabled() {
		backupEvery = 0
	}
	scheduler := services.StartScheduler(context.Background(), services.SchedulerOptions{
		State:           state,
		Backend:         backend,
		Clock:           clock,
		Metrics:         metrics,
		Interval:        cfg.TickInterval,
		FlushEveryTicks: cfg.FlushEveryTicks,
		BackupEvery:     backupEvery,
	})

	seclog := middleware.NewSecurityLogger()

	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter()))

	statsCtrl := &controllers.StatsController{
		State:         state,
		Scheduler:     scheduler,
		Backend:       backend,
		Metrics:       metrics,
		Logs:          logs,
		SysInfo:       services.NewSysInfoCache(cfg.DataDir, 2*time.Second),
		FlushOnReport: cfg.FlushEveryTicks == 0,
		InstanceID:    instanceID,
		StartedAt:     startedAt,
	}
	historyCtrl := &controllers.HistoryController{State: state}
	wsCtrl := &controllers.WebSocketController{Hub: hub}
	adminCtrl := &controllers.AdminController{
		State:     state,
		Scheduler: scheduler,
		Backend:   backend,
		Auth:      adminAuth,
		Seclog:    seclog,
	}

	routes.RegisterAPIRoutes(r, statsCtrl, historyCtrl, wsCtrl)
	routes.RegisterAdminRoutes(r, adminCtrl, middleware.NewAuthRateLimiter())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Printf("[STARTUP] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[STARTUP] Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	stop()

	log.Printf("[SHUTDOWN] Signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[SHUTDOWN] HTTP drain: %v", err)
	}
	hub.Stop()

	// Final flush and backup attempt happen inside Close.
	if err := scheduler.Close(); err != nil {
		log.Printf("[SHUTDOWN] Scheduler close: %v", err)
	}
	log.Printf("[SHUTDOWN] Complete")
}
