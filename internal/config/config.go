package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type CommissionConfig struct {
	Env             string `yaml:"env"`
	HTTPServer      `yaml:"http_server"`
	CommissionDB    `yaml:"commission_db"`
	LogConfig       `yaml:"log_config"`
	KafkaService    `yaml:"kafka-service"`
	DocumentService `yaml:"document-service"`
	LedgerService   `yaml:"ledger-service"`
	Settlement      `yaml:"settlement"`
	Metrics         `yaml:"metrics"`

	// Role/rate pairs applied when an order enters the allocation stage
	// with no allocations of its own.
	DefaultRules []RuleConfig `yaml:"default_rules"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type CommissionDB struct {
	Dsn string `yaml:"dsn"`

	// When set, SQL migrations from this directory are applied on startup
	// instead of relying on auto-migration alone.
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Mechanism  string `yaml:"mechanism"`
	TLSEnabled bool   `yaml:"tls_enabled"`

	OrderTopic       string `yaml:"order_topic" env-default:"order-events"`
	SettlementTopic  string `yaml:"settlement_topic" env-default:"settlement-events"`
	FulfillmentTopic string `yaml:"fulfillment_topic" env-default:"fulfillment-events"`
	ConsumerGroup    string `yaml:"consumer_group" env-default:"commission-service"`
}

type DocumentService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type LedgerService struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env-default:"5"`
	MaxAttempts    int    `yaml:"max_attempts" env-default:"4"`
	BackoffBaseMs  int    `yaml:"backoff_base_ms" env-default:"200"`
}

type Settlement struct {
	AutoConfirm              bool `yaml:"auto_confirm" env-default:"true"`
	ReconcileIntervalSeconds int  `yaml:"reconcile_interval_seconds" env-default:"60"`
	ReconcileBatchSize       int  `yaml:"reconcile_batch_size" env-default:"200"`
}

type Metrics struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type RuleConfig struct {
	Role string  `yaml:"role"`
	Rate float64 `yaml:"rate"`
}

func MustLoad() *CommissionConfig {

	// Processing env config variable and file
	configPath := os.Getenv("COMMISSION_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("COMMISSION_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg CommissionConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
