package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradelog/internal/config"
	cronrunner "github.com/tradelog/internal/cron"
	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/handler"
	"github.com/tradelog/internal/logger"
	"github.com/tradelog/internal/router"
	"github.com/tradelog/internal/service"
	"github.com/tradelog/internal/storage"

	_ "github.com/tradelog/docs"
)

//go:generate swag init -d ../.. -g cmd/server/main.go -o ../../docs

// @title           Trade Log API
// @version         1.0.0
// @description     Personal trade journal: trades, reviews, fund snapshots and reference lists.
// @BasePath        /
// @schemes         http https

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := os.Getenv("TRADELOG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TRADELOG_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	var store storage.ObjectStore
	if cfg.Qiniu.Enabled() {
		qiniu, err := storage.NewQiniuStore(cfg.Qiniu, cfg.Upload.TokenExpires)
		if err != nil {
			log.Fatal("qiniu store init failed", zap.Error(err))
		}
		store = qiniu
	} else {
		log.Warn("qiniu is not configured, upload endpoints are disabled")
	}
	uploads := service.NewUploadService(store, cfg.Upload)

	gin.SetMode(ginMode(cfg))
	api := handler.NewAPI(dbConn, uploads, log)
	engine := router.SetupRouter(api, log)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		if err := cronRunner.AddStagingSweep(cfg.Cron.StagingSweep, cfg.Upload.StagingDir, cfg.Cron.StagingMaxAge); err != nil {
			log.Warn("cron register staging sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}
}

func ginMode(cfg config.Config) string {
	if mode := strings.TrimSpace(cfg.Server.GinMode); mode != "" {
		return mode
	}
	if strings.EqualFold(cfg.App.Env, "dev") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
