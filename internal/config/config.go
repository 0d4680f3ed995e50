package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Pricing PricingConfig
	Ledger  LedgerConfig
	Kafka   KafkaConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type PricingConfig struct {
	TaxRate    float64
	ServiceFee float64
}

type LedgerConfig struct {
	SeedFile        string
	SummaryTimezone *time.Location
}

// KafkaConfig is optional; an empty broker list disables the Kafka publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PRICING_TAX_RATE", 0.0825)
	v.SetDefault("PRICING_SERVICE_FEE", 3.50)
	v.SetDefault("LEDGER_SEED_FILE", "")
	v.SetDefault("SUMMARY_TIMEZONE", "UTC")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "frontdash.orders")

	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SHUTDOWN_TIMEOUT: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("SUMMARY_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("parsing SUMMARY_TIMEZONE: %w", err)
	}

	taxRate := v.GetFloat64("PRICING_TAX_RATE")
	serviceFee := v.GetFloat64("PRICING_SERVICE_FEE")
	if taxRate < 0 || serviceFee < 0 {
		return nil, fmt.Errorf("pricing values must be non-negative: taxRate=%v serviceFee=%v", taxRate, serviceFee)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Pricing: PricingConfig{
			TaxRate:    taxRate,
			ServiceFee: serviceFee,
		},
		Ledger: LedgerConfig{
			SeedFile:        v.GetString("LEDGER_SEED_FILE"),
			SummaryTimezone: location,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
