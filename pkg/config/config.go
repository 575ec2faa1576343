package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "QUOTES3D_APP_ENV"
	EnvDBDSN  = "QUOTES3D_DB_DSN"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Printer  PrinterConfig
	Pricing  PricingConfig
	Shipping ShippingConfig
	Quote    QuoteConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTES3D_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTES3D_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUOTES3D_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTES3D_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"QUOTES3D_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"QUOTES3D_DB_DSN" default:"quotes.db"`

	MaxOpenConns    int           `envconfig:"QUOTES3D_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTES3D_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTES3D_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTES3D_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch strings.ToLower(d.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	if d.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

// RedisConfig is optional; the idempotency layer is skipped when no URL is set.
type RedisConfig struct {
	URL          string        `envconfig:"QUOTES3D_REDIS_URL"`
	PoolSize     int           `envconfig:"QUOTES3D_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTES3D_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTES3D_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTES3D_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTES3D_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type UploadConfig struct {
	MaxFileSizeBytes int64 `envconfig:"QUOTES3D_UPLOAD_MAX_FILE_SIZE" default:"52428800"`
	MaxFilesPerQuote int   `envconfig:"QUOTES3D_UPLOAD_MAX_FILES" default:"10"`
}

// PrinterConfig carries the build envelope in millimeters. Defaults match the
// HP MJF 4200 bed.
type PrinterConfig struct {
	MaxX float64 `envconfig:"QUOTES3D_PRINTER_MAX_X" default:"380"`
	MaxY float64 `envconfig:"QUOTES3D_PRINTER_MAX_Y" default:"284"`
	MaxZ float64 `envconfig:"QUOTES3D_PRINTER_MAX_Z" default:"380"`
}

// PricingConfig holds the rate card. Rates are USD per cm³.
type PricingConfig struct {
	PA12GreyRate  float64 `envconfig:"QUOTES3D_RATE_PA12_GREY" default:"0.50"`
	PA12BlackRate float64 `envconfig:"QUOTES3D_RATE_PA12_BLACK" default:"0.55"`
	PA12GBRate    float64 `envconfig:"QUOTES3D_RATE_PA12_GB" default:"0.60"`

	MarkupPercent   float64 `envconfig:"QUOTES3D_MARKUP_PERCENT" default:"15"`
	MinimumOrderUSD float64 `envconfig:"QUOTES3D_MINIMUM_ORDER_USD" default:"20"`
	MaxQuantity     int     `envconfig:"QUOTES3D_MAX_QUANTITY" default:"1000"`
	Currency        string  `envconfig:"QUOTES3D_CURRENCY" default:"USD"`
}

// MaterialRates returns the rate card keyed by material identifier.
func (p PricingConfig) MaterialRates() map[string]float64 {
	return map[string]float64{
		"PA12_GREY":  p.PA12GreyRate,
		"PA12_BLACK": p.PA12BlackRate,
		"PA12_GB":    p.PA12GBRate,
	}
}

// ShippingConfig maps aggregate size (cm³) onto flat delivery costs.
type ShippingConfig struct {
	SmallCost  float64 `envconfig:"QUOTES3D_SHIPPING_SMALL_COST" default:"5"`
	MediumCost float64 `envconfig:"QUOTES3D_SHIPPING_MEDIUM_COST" default:"10"`
	LargeCost  float64 `envconfig:"QUOTES3D_SHIPPING_LARGE_COST" default:"15"`

	SmallThresholdCM3  float64 `envconfig:"QUOTES3D_SHIPPING_SMALL_THRESHOLD" default:"100"`
	MediumThresholdCM3 float64 `envconfig:"QUOTES3D_SHIPPING_MEDIUM_THRESHOLD" default:"500"`
}

func (s ShippingConfig) validate() error {
	if s.SmallThresholdCM3 >= s.MediumThresholdCM3 {
		return fmt.Errorf("shipping thresholds must ascend: small %.2f >= medium %.2f", s.SmallThresholdCM3, s.MediumThresholdCM3)
	}
	return nil
}

type QuoteConfig struct {
	TTL time.Duration `envconfig:"QUOTES3D_QUOTE_TTL" default:"24h"`
}
