package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BASHO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
	CartStoreSQL    = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Environment variable names referenced outside envconfig (tests, docs).
const (
	EnvAppEnv         = "BASHO_APP_ENV"
	EnvPort           = "BASHO_APP_PORT"
	EnvBackendBaseURL = "BASHO_BACKEND_BASE_URL"
	EnvCartStore      = "BASHO_CART_STORE"
	EnvRedisURL       = "BASHO_REDIS_URL"
	EnvDBDSN          = "BASHO_DB_DSN"
	EnvDBDriver       = "BASHO_DB_DRIVER"
)

type Config struct {
	App          AppConfig
	Backend      BackendConfig
	Cart         CartConfig
	Pricing      PricingConfig
	Booking      BookingConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"BASHO_APP_ENV" required:"true"`
	Port         string   `envconfig:"BASHO_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"BASHO_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"BASHO_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"BASHO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BASHO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the Basho backend API the storefront consumes.
type BackendConfig struct {
	BaseURL          string        `envconfig:"BASHO_BACKEND_BASE_URL" required:"true"`
	Timeout          time.Duration `envconfig:"BASHO_BACKEND_TIMEOUT" default:"10s"`
	FixturesFallback bool          `envconfig:"BASHO_BACKEND_FIXTURES_FALLBACK" default:"true"`
}

type CartConfig struct {
	Store         string        `envconfig:"BASHO_CART_STORE" default:"memory"`
	KeyPrefix     string        `envconfig:"BASHO_CART_KEY_PREFIX" default:"basho-cart"`
	SessionTTL    time.Duration `envconfig:"BASHO_CART_SESSION_TTL" default:"720h"`
	PurgeInterval time.Duration `envconfig:"BASHO_CART_PURGE_INTERVAL" default:"1h"`
}

type PricingConfig struct {
	FreeShippingThreshold int64  `envconfig:"BASHO_PRICING_FREE_SHIPPING_THRESHOLD" default:"3000"`
	FlatShippingFee       int64  `envconfig:"BASHO_PRICING_FLAT_SHIPPING_FEE" default:"100"`
	TaxRate               string `envconfig:"BASHO_PRICING_TAX_RATE" default:"0.18"`
	Currency              string `envconfig:"BASHO_PRICING_CURRENCY" default:"INR"`
}

type BookingConfig struct {
	SubmitLockTTL          time.Duration `envconfig:"BASHO_BOOKING_SUBMIT_LOCK_TTL" default:"30s"`
	IdempotencyTTL         time.Duration `envconfig:"BASHO_BOOKING_IDEMPOTENCY_TTL" default:"24h"`
	CheckoutIdempotencyTTL time.Duration `envconfig:"BASHO_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type DBConfig struct {
	DSN    string `envconfig:"BASHO_DB_DSN"`
	Driver string `envconfig:"BASHO_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"BASHO_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BASHO_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BASHO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BASHO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BASHO_REDIS_URL"`
	Address      string        `envconfig:"BASHO_REDIS_ADDR"`
	Password     string        `envconfig:"BASHO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BASHO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BASHO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BASHO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BASHO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BASHO_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BASHO_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// RateLimitConfig throttles booking submissions and order creation per client
// IP. Enforced only when redis is configured.
type RateLimitConfig struct {
	SubmitWindow time.Duration `envconfig:"BASHO_RATE_LIMIT_SUBMIT_WINDOW" default:"1m"`
	SubmitLimit  int           `envconfig:"BASHO_RATE_LIMIT_SUBMIT_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BASHO_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	c.Cart.Store = strings.ToLower(strings.TrimSpace(c.Cart.Store))
	switch c.Cart.Store {
	case CartStoreMemory:
	case CartStoreRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s=redis requires BASHO_REDIS_URL or BASHO_REDIS_ADDR", EnvCartStore)
		}
	case CartStoreSQL:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("%s=sql requires %s", EnvCartStore, EnvDBDSN)
		}
	default:
		return fmt.Errorf("unknown %s %q", EnvCartStore, c.Cart.Store)
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	if c.DB.Driver != DBDriverPostgres && c.DB.Driver != DBDriverSQLite {
		return fmt.Errorf("unknown %s %q", EnvDBDriver, c.DB.Driver)
	}

	if c.Pricing.FreeShippingThreshold < 0 || c.Pricing.FlatShippingFee < 0 {
		return fmt.Errorf("pricing thresholds must be non-negative")
	}
	return nil
}
