package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Dispatch DispatchConfig
	Kafka    KafkaConfig
	Sweep    SweepConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// JWTConfig validates operator tokens for the admin surface. Tokens are issued elsewhere.
type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type StripeConfig struct {
	SecretKey string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	// APIBase overrides the API endpoint (stripe-mock in local environments).
	APIBase string `envconfig:"STRIPE_API_BASE"`
}

type CheckoutConfig struct {
	CartTTL              time.Duration `envconfig:"CART_TTL" default:"30m"`
	DefaultShippingCents int64         `envconfig:"DEFAULT_SHIPPING_CENTS" default:"0"`
	SuccessURL           string        `envconfig:"CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/checkout/success"`
	CancelURL            string        `envconfig:"CHECKOUT_CANCEL_URL" default:"http://localhost:3000/checkout/cancel"`
}

type DispatchConfig struct {
	Timeout     time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"10s"`
	MaxAttempts int           `envconfig:"DISPATCH_MAX_ATTEMPTS" default:"8"`
	RatePerSec  float64       `envconfig:"DISPATCH_RATE_PER_SEC" default:"20"`
	BatchSize   int           `envconfig:"DISPATCH_BATCH_SIZE" default:"100"`
}

type KafkaConfig struct {
	Brokers    string `envconfig:"KAFKA_BROKERS"`
	OrderTopic string `envconfig:"KAFKA_ORDER_TOPIC" default:"merchant.orders"`
}

type SweepConfig struct {
	BatchSize int `envconfig:"SWEEP_BATCH_SIZE" default:"200"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Stripe: StripeConfig{
			SecretKey: "sk_test_dummy",
		},
		Checkout: CheckoutConfig{
			CartTTL:    30 * time.Minute,
			SuccessURL: "http://localhost:3000/checkout/success",
			CancelURL:  "http://localhost:3000/checkout/cancel",
		},
		Dispatch: DispatchConfig{
			Timeout:     2 * time.Second,
			MaxAttempts: 3,
			RatePerSec:  100,
			BatchSize:   50,
		},
		Kafka: KafkaConfig{
			OrderTopic: "merchant.orders",
		},
		Sweep: SweepConfig{
			BatchSize: 50,
		},
	}
}
