package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	NotifierLog   = "log"
	NotifierKafka = "kafka"
)

// Config is the typed environment of the API server.
type Config struct {
	Env string `env:"GO_ENV" envDefault:"development"`

	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":7070"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"notesboard.db"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:7070"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	Notifier     string        `env:"NOTIFIER" envDefault:"log"`
	KafkaBrokers []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string        `env:"KAFKA_TOPIC" envDefault:"verification-codes"`
	KafkaTimeout time.Duration `env:"KAFKA_TIMEOUT" envDefault:"5s"`

	// Live note events are only pushed when the gateway endpoint is set.
	WSGatewayEndpoint string `env:"WS_GATEWAY_ENDPOINT"`
	WSGatewayRegion   string `env:"WS_GATEWAY_REGION" envDefault:"us-east-2"`

	NodeID         int64         `env:"NODE_ID" envDefault:"1"`
	PendingUserTTL time.Duration `env:"PENDING_USER_TTL" envDefault:"168h"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load exports the environment (".env" in development, SSM Parameter Store in
// production) and decodes it into a Config.
func Load() (*Config, error) {
	if os.Getenv("GO_ENV") == "production" {
		if err := loadProdEnv(); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	return Parse()
}

// Parse decodes and validates the current process environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Notifier {
	case NotifierLog:
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when NOTIFIER=kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q (expected %q or %q)", c.Notifier, NotifierLog, NotifierKafka))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}

	if c.PendingUserTTL <= 0 {
		errs = append(errs, fmt.Errorf("PENDING_USER_TTL must be positive, got %s", c.PendingUserTTL))
	}

	// Snowflake reserves 10 bits for the node
	if c.NodeID < 0 || c.NodeID > 1023 {
		errs = append(errs, fmt.Errorf("NODE_ID must be between 0 and 1023, got %d", c.NodeID))
	}

	if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", c.PublicBaseURL))
	}

	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		errs = append(errs, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
