package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App        AppConfig
	Service    ServiceConfig
	DB         DBConfig
	Redis      RedisConfig
	Pricing    PricingConfig
	Financials FinancialsConfig
	Cron       CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERFIN_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERFIN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORDERFIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERFIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERFIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERFIN_DB_DSN"`
	Driver string `envconfig:"ORDERFIN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ORDERFIN_DB_HOST"`
	Port     int    `envconfig:"ORDERFIN_DB_PORT" default:"5432"`
	User     string `envconfig:"ORDERFIN_DB_USER"`
	Password string `envconfig:"ORDERFIN_DB_PASSWORD"`
	Name     string `envconfig:"ORDERFIN_DB_NAME"`
	SSLMode  string `envconfig:"ORDERFIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERFIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERFIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERFIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERFIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"ORDERFIN_DB_AUTO_MIGRATE" default:"false"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either ORDERFIN_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERFIN_REDIS_URL"`
	Address      string        `envconfig:"ORDERFIN_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERFIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERFIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERFIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERFIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERFIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERFIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERFIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig controls the order price snapshot cache.
type PricingConfig struct {
	// SnapshotTTL is how long a recomputed price snapshot stays fresh.
	SnapshotTTL time.Duration `envconfig:"ORDERFIN_PRICING_SNAPSHOT_TTL" default:"1h"`
}

// FinancialsConfig controls the derived financial view cache.
type FinancialsConfig struct {
	CacheTTL time.Duration `envconfig:"ORDERFIN_FINANCIALS_CACHE_TTL" default:"30s"`
	// MaxBatchSize caps how many orders a single batch request may resolve.
	MaxBatchSize int `envconfig:"ORDERFIN_FINANCIALS_MAX_BATCH" default:"100"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ORDERFIN_CRON_INTERVAL" default:"15m"`
	// RefreshBatchSize bounds how many expired orders one refresh cycle reprices.
	RefreshBatchSize int `envconfig:"ORDERFIN_CRON_REFRESH_BATCH" default:"200"`
}
