package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/envutil"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type DBConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

type TxConfig struct {
	MaxWaitMS int `yaml:"max_wait_ms"`
	TimeoutMS int `yaml:"timeout_ms"`
}

func (c TxConfig) MaxWait() time.Duration { return time.Duration(c.MaxWaitMS) * time.Millisecond }
func (c TxConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMS) * time.Millisecond }

type ProgressConfig struct {
	CompletedAtPolicy    string `yaml:"completed_at_policy"`
	ReconcileSchedule    string `yaml:"reconcile_schedule"`
	ReconcileConcurrency int    `yaml:"reconcile_concurrency"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	LogMode     string         `yaml:"log_mode"`
	Environment string         `yaml:"environment"`
	DB          DBConfig       `yaml:"db"`
	Tx          TxConfig       `yaml:"tx"`
	Progress    ProgressConfig `yaml:"progress"`
	Redis       RedisConfig    `yaml:"redis"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Otel        OtelConfig     `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode:     "development",
		Environment: "development",
		DB: DBConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "coursetrack",
			SSLMode:    "disable",
			SQLitePath: "coursetrack.db",
		},
		Tx:       TxConfig{MaxWaitMS: 5000, TimeoutMS: 15000},
		Progress: ProgressConfig{CompletedAtPolicy: string(domainagg.CompletedAtDerive), ReconcileSchedule: "0 3 * * *", ReconcileConcurrency: 4},
		Redis:    RedisConfig{Channel: "progress"},
		Metrics:  MetricsConfig{Addr: ":9090"},
		Otel:     OtelConfig{SampleRatio: 1},
	}
}

// LoadConfig layers defaults, then the YAML file named by CONFIG_FILE, then the environment
// (optionally preloaded from .env). The environment always wins.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env", "error", err)
	}

	cfg := defaultConfig()
	if path, ok := envutil.Lookup("CONFIG_FILE"); ok {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
		log.Info("loaded config file", "path", path)
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Environment = envutil.String("ENVIRONMENT", cfg.Environment)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.Tx.MaxWaitMS = envutil.Int("TX_MAX_WAIT_MS", cfg.Tx.MaxWaitMS)
	cfg.Tx.TimeoutMS = envutil.Int("TX_TIMEOUT_MS", cfg.Tx.TimeoutMS)

	cfg.Progress.CompletedAtPolicy = envutil.String("COMPLETED_AT_POLICY", cfg.Progress.CompletedAtPolicy)
	// An explicitly empty schedule disables the scheduler, so presence matters here.
	if v, ok := os.LookupEnv("PROGRESS_RECONCILE_SCHEDULE"); ok {
		cfg.Progress.ReconcileSchedule = strings.TrimSpace(v)
	}
	cfg.Progress.ReconcileConcurrency = envutil.Int("PROGRESS_RECONCILE_CONCURRENCY", cfg.Progress.ReconcileConcurrency)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver)
	}
	switch domainagg.CompletedAtPolicy(c.Progress.CompletedAtPolicy) {
	case domainagg.CompletedAtDerive, domainagg.CompletedAtClearOnRemoval:
	default:
		return fmt.Errorf("unsupported COMPLETED_AT_POLICY %q", c.Progress.CompletedAtPolicy)
	}
	if c.Tx.MaxWaitMS <= 0 || c.Tx.TimeoutMS <= 0 {
		return fmt.Errorf("transaction bounds must be positive (max_wait_ms=%d timeout_ms=%d)", c.Tx.MaxWaitMS, c.Tx.TimeoutMS)
	}
	return nil
}
