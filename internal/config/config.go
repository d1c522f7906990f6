package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type CupomConfig struct {
	Env          string `yaml:"env" env:"CUPOM_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	Storage      `yaml:"storage"`
	CupomDB      `yaml:"cupom_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	Redis        `yaml:"redis"`
	Auth         `yaml:"auth"`
	ClaimGate    `yaml:"claim_gate"`
	Webhook      `yaml:"webhook"`
	Background   `yaml:"background"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"15s"`
	CORSOrigins  []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:","`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Storage selects the repository implementation: "postgres" or "memory".
// SeedFile is only read by the memory driver.
type Storage struct {
	Driver   string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	SeedFile string `yaml:"seed_file" env:"STORAGE_SEED_FILE"`
}

type CupomDB struct {
	Dsn          string `yaml:"dsn" env:"CUPOM_DB_DSN"`
	SkipMigrate  bool   `yaml:"skip_migrations" env:"CUPOM_DB_SKIP_MIGRATIONS"`
	MaxOpenConns int    `yaml:"max_open_conns" env-default:"20"`
	MaxIdleConns int    `yaml:"max_idle_conns" env-default:"5"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"coupon-events"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"cupom-webhooks"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer    string `yaml:"issuer" env:"AUTH_ISSUER" env-default:"querodesconto"`
}

type ClaimGate struct {
	Enabled bool `yaml:"enabled" env:"CLAIM_GATE_ENABLED"`
}

type Webhook struct {
	Enabled bool          `yaml:"enabled" env:"WEBHOOK_ENABLED"`
	Secret  string        `yaml:"secret" env:"WEBHOOK_SECRET"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Background struct {
	GateReconcileInterval time.Duration `yaml:"gate_reconcile_interval" env-default:"1m"`
	GaugeInterval         time.Duration `yaml:"gauge_interval" env-default:"30s"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*CupomConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	var cfg CupomConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *CupomConfig {
	configPath := os.Getenv("CUPOM_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("CUPOM_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return cfg
}

func (c *CupomConfig) validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.CupomDB.Dsn == "" {
			return fmt.Errorf("cupom_db.dsn is required for the postgres storage driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.KafkaService.Enabled && len(c.KafkaService.Brokers) == 0 {
		return fmt.Errorf("kafka-service.brokers is required when kafka is enabled")
	}
	if c.ClaimGate.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("claim_gate requires redis to be enabled")
	}
	return nil
}
