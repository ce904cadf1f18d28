package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 汇总运行服务所需的全部配置。
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Upload UploadConfig `mapstructure:"upload"`
	Qiniu  QiniuConfig  `mapstructure:"qiniu"`
	Cron   CronConfig   `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	GinMode  string `mapstructure:"gin_mode"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig 描述数据库连接。Driver 支持 postgres 与 sqlite。
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type UploadConfig struct {
	StagingDir   string        `mapstructure:"staging_dir"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
	TokenExpires time.Duration `mapstructure:"token_expires"`
}

// QiniuConfig 为七牛云对象存储的访问参数，AccessKey 为空时上传功能关闭。
type QiniuConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Domain    string `mapstructure:"domain"`
	UseHTTPS  bool   `mapstructure:"use_https"`
}

// Enabled 判断七牛配置是否完整。
func (q QiniuConfig) Enabled() bool {
	return strings.TrimSpace(q.AccessKey) != "" &&
		strings.TrimSpace(q.SecretKey) != "" &&
		strings.TrimSpace(q.Bucket) != "" &&
		strings.TrimSpace(q.Domain) != ""
}

type CronConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	StagingSweep  string        `mapstructure:"staging_sweep"`
	StagingMaxAge time.Duration `mapstructure:"staging_max_age"`
}

// Load 读取配置文件与 TRADELOG_ 前缀的环境变量，并为缺失项提供默认值。
// 配置文件不存在时仅使用环境变量与默认值。
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// DATABASE_URL 兼容旧部署方式
	if err := v.BindEnv("db.dsn", "TRADELOG_DB_DSN", "DATABASE_URL"); err != nil {
		return Config{}, err
	}

	if !envOnly && strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if cfg.Upload.StagingDir == "" {
		cfg.Upload.StagingDir = os.TempDir()
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "tradelog.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("upload.staging_dir", "")
	v.SetDefault("upload.max_bytes", 20<<20)
	v.SetDefault("upload.token_expires", "1h")
	v.SetDefault("qiniu.access_key", "")
	v.SetDefault("qiniu.secret_key", "")
	v.SetDefault("qiniu.bucket", "")
	v.SetDefault("qiniu.domain", "")
	v.SetDefault("qiniu.use_https", false)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.staging_sweep", "@every 30m")
	v.SetDefault("cron.staging_max_age", "1h")
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
