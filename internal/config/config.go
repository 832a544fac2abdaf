package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/pharmalink/ledger/internal/types"
)

//go:embed config.yaml
var defaultConfig []byte

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Email      EmailConfig      `mapstructure:"email"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Pyroscope  PyroscopeConfig  `mapstructure:"pyroscope"`
	Credit     CreditConfig     `mapstructure:"credit"`
	Rewards    RewardsConfig    `mapstructure:"rewards"`
	Penalty    PenaltyConfig    `mapstructure:"penalty"`
	Invoice    InvoiceConfig    `mapstructure:"invoice"`
}

type DeploymentConfig struct {
	Mode        types.RunMode     `mapstructure:"mode" validate:"required"`
	Environment types.Environment `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	DBLevel        types.LogLevel `mapstructure:"db_level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type PostgresConfig struct {
	Driver                 types.DatabaseDriver `mapstructure:"driver"`
	Host                   string               `mapstructure:"host"`
	Port                   int                  `mapstructure:"port"`
	User                   string               `mapstructure:"user"`
	Password               string               `mapstructure:"password"`
	DBName                 string               `mapstructure:"dbname"`
	SSLMode                string               `mapstructure:"sslmode"`
	MaxOpenConns           int                  `mapstructure:"max_open_conns"`
	MaxIdleConns           int                  `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int                  `mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool                 `mapstructure:"auto_migrate"`
	SQLitePath             string               `mapstructure:"sqlite_path"`
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Type     types.CacheType `mapstructure:"type"`
	OfferTTL time.Duration   `mapstructure:"offer_ttl"`
}

type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
	ActivityTopic string   `mapstructure:"activity_topic"`
}

type StripeConfig struct {
	SecretKey  string        `mapstructure:"secret_key"`
	Currency   string        `mapstructure:"currency"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	ReplyTo      string `mapstructure:"reply_to"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type PyroscopeConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ServerAddress   string `mapstructure:"server_address"`
	ApplicationName string `mapstructure:"application_name"`
}

type CreditConfig struct {
	DefaultInterestRate decimal.Decimal `mapstructure:"default_interest_rate"`
	DefaultNetTerms     int             `mapstructure:"default_net_terms"`
	ApplicationTTLDays  int             `mapstructure:"application_ttl_days"`
}

type RewardsConfig struct {
	// PointValue is the currency value of a single reward point.
	PointValue decimal.Decimal `mapstructure:"point_value"`
	// EarnRate is points earned per currency unit paid.
	EarnRate decimal.Decimal `mapstructure:"earn_rate"`
}

type PenaltyConfig struct {
	MaxWorkers int           `mapstructure:"max_workers"`
	RunLockTTL time.Duration `mapstructure:"run_lock_ttl"`
}

type InvoiceConfig struct {
	DefaultNetTerms   int `mapstructure:"default_net_terms"`
	NumberMaxAttempts int `mapstructure:"number_max_attempts"`
}

// NewConfig loads the embedded defaults, then .env, then LEDGER_* environment variables.
func NewConfig() (*Configuration, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Configuration
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetDefaultConfig returns the embedded defaults and panics if they are broken.
func GetDefaultConfig() *Configuration {
	cfg, err := NewConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load default config: %v", err))
	}
	return cfg
}

func (c *Configuration) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Credit.DefaultInterestRate.IsNegative() {
		return fmt.Errorf("credit.default_interest_rate must not be negative")
	}
	if err := types.NetTerms(c.Credit.DefaultNetTerms).Validate(); err != nil {
		return fmt.Errorf("credit.default_net_terms: %w", err)
	}
	if !c.Rewards.PointValue.IsPositive() {
		return fmt.Errorf("rewards.point_value must be positive")
	}
	if c.Penalty.MaxWorkers <= 0 {
		c.Penalty.MaxWorkers = 1
	}
	if c.Invoice.NumberMaxAttempts <= 0 {
		c.Invoice.NumberMaxAttempts = 3
	}
	if c.Invoice.DefaultNetTerms <= 0 {
		c.Invoice.DefaultNetTerms = int(types.DefaultNetTerms)
	}
	if c.Kafka.Enabled && len(lo.Compact(c.Kafka.Brokers)) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
