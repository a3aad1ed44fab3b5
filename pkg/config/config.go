package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "WEARHAUS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Square   SquareConfig
	Checkout CheckoutConfig
	PubSub   PubSubConfig
	Outbox   OutboxConfig
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
	Env          string `envconfig:"WEARHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"WEARHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WEARHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WEARHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WEARHAUS_DB_DSN"`

	Host     string `envconfig:"WEARHAUS_DB_HOST"`
	Port     int    `envconfig:"WEARHAUS_DB_PORT" default:"5432"`
	User     string `envconfig:"WEARHAUS_DB_USER"`
	Password string `envconfig:"WEARHAUS_DB_PASSWORD"`
	Name     string `envconfig:"WEARHAUS_DB_NAME"`
	SSLMode  string `envconfig:"WEARHAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WEARHAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WEARHAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WEARHAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WEARHAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"WEARHAUS_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WEARHAUS_REDIS_URL"`
	Address      string        `envconfig:"WEARHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"WEARHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"WEARHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WEARHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WEARHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WEARHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WEARHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WEARHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WEARHAUS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WEARHAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WEARHAUS_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"WEARHAUS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WEARHAUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WEARHAUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WEARHAUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WEARHAUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WEARHAUS_ARGON_KEY_LEN" default:"32"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"WEARHAUS_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"WEARHAUS_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"WEARHAUS_SQUARE_ENV" default:"sandbox"`
}

// Environment reports the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type CheckoutConfig struct {
	Currency        string        `envconfig:"WEARHAUS_CHECKOUT_CURRENCY" default:"USD"`
	CaptureTimeout  time.Duration `envconfig:"WEARHAUS_CHECKOUT_CAPTURE_TIMEOUT" default:"15s"`
	IdempotencyTTL  time.Duration `envconfig:"WEARHAUS_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
	LoginWindow     time.Duration `envconfig:"WEARHAUS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"WEARHAUS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow  time.Duration `envconfig:"WEARHAUS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"WEARHAUS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"10"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"WEARHAUS_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"WEARHAUS_PUBSUB_ORDERS_TOPIC" default:"wearhaus-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WEARHAUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WEARHAUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WEARHAUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct {
		env   string
		value string
	}{
		{"WEARHAUS_DB_HOST", db.Host},
		{"WEARHAUS_DB_USER", db.User},
		{"WEARHAUS_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either WEARHAUS_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
