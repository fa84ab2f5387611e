package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type DishConfig struct {
	Env          string `yaml:"env" env:"DISH_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	Storage      `yaml:"storage"`
	KafkaService `yaml:"kafka-service"`
	Notification `yaml:"notification"`
	Auth         `yaml:"auth"`
	Negotiation  `yaml:"negotiation"`
	LogConfig    `yaml:"log_config"`
	Tracing      `yaml:"tracing"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// GRPCServer only serves the standard health service.
type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"9090"`
}

type Storage struct {
	// postgres | dynamodb | memory
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"DISH_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	DynamoDB       `yaml:"dynamodb"`
}

type DynamoDB struct {
	Region        string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint      string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`
	RequestsTable string `yaml:"requests_table" env:"DYNAMODB_REQUESTS_TABLE" env-default:"dish_requests"`
	OffersTable   string `yaml:"offers_table" env:"DYNAMODB_OFFERS_TABLE" env-default:"dish_offers"`
	HistoryTable  string `yaml:"history_table" env:"DYNAMODB_HISTORY_TABLE" env-default:"dish_offer_history"`
}

type KafkaService struct {
	Enabled    bool   `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Host       string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port       string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	Topic      string `yaml:"topic" env:"KAFKA_OFFER_TOPIC" env-default:"offer-events"`
	Username   string `yaml:"username" env:"KAFKA_USERNAME"`
	Password   string `yaml:"password" env:"KAFKA_PASSWORD"`
	Mechanism  string `yaml:"mechanism" env:"KAFKA_SASL_MECHANISM"`
	TLSEnabled bool   `yaml:"tls_enabled" env:"KAFKA_TLS_ENABLED"`
}

// Notification configures the optional offer callback webhook.
type Notification struct {
	WebhookURL     string        `yaml:"webhook_url" env:"OFFER_WEBHOOK_URL"`
	WebhookSecret  string        `yaml:"webhook_secret" env:"OFFER_WEBHOOK_SECRET"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout" env:"OFFER_WEBHOOK_TIMEOUT" env-default:"5s"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type Negotiation struct {
	OfferTTL         time.Duration `yaml:"offer_ttl" env:"OFFER_TTL" env-default:"30m"`
	SweepInterval    time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL" env-default:"5s"`
	SweepBatchSize   int           `yaml:"sweep_batch_size" env:"SWEEP_BATCH_SIZE" env-default:"100"`
	SiblingPolicy    string        `yaml:"sibling_policy" env:"SIBLING_POLICY" env-default:"reject_siblings"`
	WizardSessionTTL time.Duration `yaml:"wizard_session_ttl" env:"WIZARD_SESSION_TTL" env-default:"15m"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Tracing struct {
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"dish-request-service"`
}

func MustLoad() *DishConfig {
	// Processing env config variable and file
	configPath := os.Getenv("DISH_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("DISH_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}
	return cfg
}

// Load reads the YAML file at path; environment variables override file values.
func Load(path string) (*DishConfig, error) {
	var cfg DishConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
