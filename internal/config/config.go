package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	DataPattern     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CacheSize       int

	// Kafka publishing of loaded snapshots.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	BatchSize    int

	// NOAA STAR download configuration.
	NOAABaseURL     string
	NOAATimeout     time.Duration
	NOAARate        float64
	NOAAConcurrency int
	NOAAYearStart   int
	NOAAYearEnd     int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	noaaTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("NOAA_TIMEOUT", "30s"))
	if err != nil || noaaTimeout <= 0 {
		return nil, errors.New("invalid NOAA_TIMEOUT")
	}

	noaaRate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NOAA_RATE", "2"), 64)
	if err != nil || noaaRate <= 0 {
		return nil, errors.New("invalid NOAA_RATE")
	}

	cacheSize, err := positiveInt("CACHE_SIZE", "8")
	if err != nil {
		return nil, err
	}
	concurrency, err := positiveInt("NOAA_CONCURRENCY", "4")
	if err != nil {
		return nil, err
	}
	yearStart, err := positiveInt("NOAA_YEAR_START", "1981")
	if err != nil {
		return nil, err
	}
	yearEnd, err := positiveInt("NOAA_YEAR_END", "2024")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "vhi_data"),
		DataPattern:     sharedcfg.EnvOrDefault("DATA_PATTERN", "*.csv"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CacheSize:       cacheSize,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "vhi-observations"),
		BatchSize:    batchSize,

		NOAABaseURL:     sharedcfg.EnvOrDefault("NOAA_BASE_URL", "https://www.star.nesdis.noaa.gov/smcd/emb/vci/VH/get_TS_admin.php"),
		NOAATimeout:     noaaTimeout,
		NOAARate:        noaaRate,
		NOAAConcurrency: concurrency,
		NOAAYearStart:   yearStart,
		NOAAYearEnd:     yearEnd,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if !doublestar.ValidatePattern(cfg.DataPattern) {
		return nil, fmt.Errorf("invalid DATA_PATTERN %q", cfg.DataPattern)
	}
	if cfg.NOAAYearStart > cfg.NOAAYearEnd {
		return nil, errors.New("NOAA_YEAR_START must not be after NOAA_YEAR_END")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func positiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
