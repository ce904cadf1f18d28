package main

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tradelog/internal/config"
	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/logger"
)

// 示例数据生成器，已有数据的表会被跳过
func main() {
	cfgPath := os.Getenv("TRADELOG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := strings.EqualFold(os.Getenv("TRADELOG_ENV_ONLY"), "true") || os.Getenv("TRADELOG_ENV_ONLY") == "1"

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

	report, err := seed(context.Background(), dbConn.Gorm)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	for _, table := range report {
		if table.Skipped {
			log.Info("table already has data, skipped", zap.String("table", table.Name))
			continue
		}
		log.Info("table seeded", zap.String("table", table.Name), zap.Int("rows", table.Rows))
	}
}
