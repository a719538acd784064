package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	RazorpayKeyID     string        `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string        `envconfig:"RAZORPAY_KEY_SECRET"`
	GatewayBaseURL    string        `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com"`
	GatewayTimeout    time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"5s"`
	CheckoutScriptURL string        `envconfig:"CHECKOUT_SCRIPT_URL" default:"https://checkout.razorpay.com/v1/checkout.js"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"storefront"`

	PostgresHost     string `envconfig:"DB_HOST"`
	PostgresPort     int    `envconfig:"DB_PORT" default:"5432"`
	PostgresUser     string `envconfig:"DB_USER" default:"postgres"`
	PostgresPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	PostgresDBName   string `envconfig:"DB_NAME" default:"storefront"`
	MigrationsPath   string `envconfig:"MIGRATIONS_PATH" default:"./internal/ledger/migrations"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	AuditTopic   string   `envconfig:"AUDIT_TOPIC" default:"payment-events"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
