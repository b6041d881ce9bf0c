package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Inventory    InventoryConfig
	Holdings     HoldingsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"KITROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"KITROOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KITROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KITROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KITROOM_DB_DSN"`
	Driver string `envconfig:"KITROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KITROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"KITROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KITROOM_DB_USER"`
	LegacyPassword string `envconfig:"KITROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"KITROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"KITROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KITROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KITROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KITROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KITROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KITROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KITROOM_REDIS_ADDR"`
	Password     string        `envconfig:"KITROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"KITROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KITROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KITROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KITROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KITROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KITROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers the token the member identity provider issues. The API only
// verifies the signature and trusts the member id claim; auth policy lives
// upstream.
type JWTConfig struct {
	Secret string `envconfig:"KITROOM_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"KITROOM_JWT_ISSUER" required:"true"`
}

type InventoryConfig struct {
	// LocateBatchLimit bounds how many records a category lookup may fetch.
	LocateBatchLimit int `envconfig:"KITROOM_INVENTORY_LOCATE_BATCH_LIMIT" default:"500"`
	// LocateTimeout is the query-time budget for a single locate call.
	LocateTimeout time.Duration `envconfig:"KITROOM_INVENTORY_LOCATE_TIMEOUT" default:"3s"`
}

type HoldingsConfig struct {
	// GuardTTL is the window during which a repeated identical submission is
	// acknowledged without reprocessing. Process-local only.
	GuardTTL time.Duration `envconfig:"KITROOM_HOLDINGS_GUARD_TTL" default:"15s"`
	// TxMaxRetries bounds retries of the reconcile transaction on commit
	// conflicts before surfacing a retryable error.
	TxMaxRetries int `envconfig:"KITROOM_HOLDINGS_TX_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KITROOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KITROOM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
