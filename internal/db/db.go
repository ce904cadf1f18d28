package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradelog/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB 持有 gorm 句柄与底层连接池，由 main 构造后注入各个服务。
type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// Open 根据配置建立连接池。sqlite 的 DSN 为空时回退到 tradelog.db。
func Open(cfg config.DBConfig) (*DB, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		path := strings.TrimSpace(cfg.DSN)
		if path == "" {
			path = "tradelog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(withForeignKeys(path))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return Wrap(gdb, cfg)
}

// Wrap 为已有的 gorm 实例套上连接池参数，测试中用于包装内存数据库。
func Wrap(gdb *gorm.DB, cfg config.DBConfig) (*DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return &DB{Gorm: gdb, SQL: sqlDB}, nil
}

// Close 释放连接池。
func Close(handle *DB) error {
	if handle == nil || handle.SQL == nil {
		return nil
	}
	return handle.SQL.Close()
}

// Ping 执行一次 SELECT 1 探测数据库可用性。
func Ping(ctx context.Context, handle *DB) error {
	if handle == nil || handle.Gorm == nil {
		return errors.New("database not initialized")
	}
	var one int
	return handle.Gorm.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// withForeignKeys 打开 sqlite 的外键检查，已显式设置时保持不变
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
