package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"freight/internal/adapters/out/rabbitmq"
	"freight/internal/adapters/out/redisbus"
	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
	"freight/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "FREIGHT_"
	EnvConfigPath     = EnvPrefix + "CONFIG"
	DefaultConfigPath = "configs/config.yaml"
)

type Config struct {
	LogLevel string `koanf:"log_level"`

	HTTP        HTTPConfig        `koanf:"http"`
	Database    DatabaseConfig    `koanf:"database"`
	Events      EventsConfig      `koanf:"events"`
	Redis       RedisConfig       `koanf:"redis"`
	Kafka       KafkaConfig       `koanf:"kafka"`
	RabbitMQ    RabbitMQConfig    `koanf:"rabbitmq"`
	Award       AwardConfig       `koanf:"award"`
	Negotiation NegotiationConfig `koanf:"negotiation"`
	Eligibility EligibilityConfig `koanf:"eligibility"`
	Compliance  ComplianceConfig  `koanf:"compliance"`
	Bids        BidsConfig        `koanf:"bids"`
	Jobs        JobsConfig        `koanf:"jobs"`
}

type HTTPConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"`
	RateLimit       float64       `koanf:"rate_limit"`
	Burst           int           `koanf:"burst"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SslMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// DSN is the libpq keyword form understood by both gorm and golang-migrate.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode,
	)
}

type EventsConfig struct {
	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

// RedisConfig enables cross-instance event delivery when Addr is set.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Channel  string `koanf:"channel"`
}

// KafkaConfig enables the domain event stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers      []string      `koanf:"brokers"`
	Topic        string        `koanf:"topic"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RabbitMQConfig enables the notification queue when URL is set.
type RabbitMQConfig struct {
	URL   string `koanf:"url"`
	Queue string `koanf:"queue"`
}

type AwardConfig struct {
	ShipmentPolicy string `koanf:"shipment_policy"`
	InvoiceOnAward bool   `koanf:"invoice_on_award"`
}

type NegotiationConfig struct {
	AmountFloor string `koanf:"amount_floor"`
}

type EligibilityConfig struct {
	RequireVerified  string `koanf:"require_verified"`
	MinReliability   string `koanf:"min_reliability"`
	ReliabilityFloor int    `koanf:"reliability_floor"`
	ServiceZones     string `koanf:"service_zones"`
	TruckType        string `koanf:"truck_type"`
}

type ComplianceConfig struct {
	MissingBlocks bool `koanf:"missing_blocks"`
}

type BidsConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type JobsConfig struct {
	BidExpirySchedule   string `koanf:"bid_expiry_schedule"`
	BidExpiryBatch      int    `koanf:"bid_expiry_batch"`
	AwardRepairSchedule string `koanf:"award_repair_schedule"`
	AwardRepairBatch    int    `koanf:"award_repair_batch"`
}

func DefaultConfig() Config {
	policy := services.DefaultEligibilityPolicy()
	schedule := jobs.DefaultConfig()
	return Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "1M",
			RateLimit:       20,
			Burst:           40,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "freight",
			Name:            "freight",
			SslMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Events: EventsConfig{
			PublishTimeout: 3 * time.Second,
		},
		Redis: RedisConfig{
			Channel: redisbus.DefaultChannel,
		},
		Kafka: KafkaConfig{
			Topic:        "freight.events",
			WriteTimeout: 5 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			Queue: rabbitmq.DefaultQueue,
		},
		Award: AwardConfig{
			ShipmentPolicy: string(commands.ShipmentEager),
		},
		Negotiation: NegotiationConfig{
			AmountFloor: "100",
		},
		Eligibility: EligibilityConfig{
			RequireVerified:  string(policy.RequireVerified),
			MinReliability:   string(policy.MinReliability),
			ReliabilityFloor: policy.ReliabilityFloor,
			ServiceZones:     string(policy.ServiceZones),
			TruckType:        string(policy.TruckType),
		},
		Bids: BidsConfig{
			TTL: 48 * time.Hour,
		},
		Jobs: JobsConfig{
			BidExpirySchedule:   schedule.BidExpirySchedule,
			BidExpiryBatch:      schedule.BidExpiryBatch,
			AwardRepairSchedule: schedule.AwardRepairSchedule,
			AwardRepairBatch:    schedule.AwardRepairBatch,
		},
	}
}

// LoadConfig layers defaults, the optional YAML file and FREIGHT_* environment
// variables, in that order. A .env file in the working directory is loaded
// into the environment first when present. Nested keys use a double
// underscore: FREIGHT_DATABASE__HOST sets database.host.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}
	return loadConfig(path)
}

func loadConfig(path string) (Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		if key == EnvConfigPath {
			return "", nil
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if key == "kafka.brokers" {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errList []error
	if c.HTTP.Port == "" {
		errList = append(errList, errors.New("http.port is required"))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errList = append(errList, errors.New("database.host and database.name are required"))
	}
	if err := commands.ShipmentPolicy(c.Award.ShipmentPolicy).Validate(); err != nil {
		errList = append(errList, fmt.Errorf("award.shipment_policy: %w", err))
	}
	if _, err := c.AmountFloor(); err != nil {
		errList = append(errList, fmt.Errorf("negotiation.amount_floor: %w", err))
	}
	if err := c.EligibilityPolicy().Validate(); err != nil {
		errList = append(errList, fmt.Errorf("eligibility: %w", err))
	}
	if c.Events.PublishTimeout < 0 {
		errList = append(errList, errors.New("events.publish_timeout must not be negative"))
	}
	if c.Bids.TTL < 0 {
		errList = append(errList, errors.New("bids.ttl must not be negative"))
	}
	return errors.Join(errList...)
}

func (c Config) EligibilityPolicy() services.EligibilityPolicy {
	return services.EligibilityPolicy{
		RequireVerified:  services.PolicyMode(c.Eligibility.RequireVerified),
		MinReliability:   services.PolicyMode(c.Eligibility.MinReliability),
		ReliabilityFloor: c.Eligibility.ReliabilityFloor,
		ServiceZones:     services.PolicyMode(c.Eligibility.ServiceZones),
		TruckType:        services.PolicyMode(c.Eligibility.TruckType),
	}
}

func (c Config) AwardOptions() commands.AwardOptions {
	return commands.AwardOptions{
		ShipmentPolicy: commands.ShipmentPolicy(c.Award.ShipmentPolicy),
		InvoiceOnAward: c.Award.InvoiceOnAward,
	}
}

func (c Config) AmountFloor() (kernel.Money, error) {
	return kernel.ParseMoney(c.Negotiation.AmountFloor)
}

func (c Config) JobsConfig() jobs.Config {
	return jobs.Config{
		BidExpirySchedule:   c.Jobs.BidExpirySchedule,
		BidExpiryBatch:      c.Jobs.BidExpiryBatch,
		AwardRepairSchedule: c.Jobs.AwardRepairSchedule,
		AwardRepairBatch:    c.Jobs.AwardRepairBatch,
	}
}
