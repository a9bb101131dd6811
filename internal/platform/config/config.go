package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from the environment.
type Config struct {
	Server   Server
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Contacts ContactsConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"CONTACTS_ADDR"`
	Port              string        `env:"PORT"                       envDefault:"3000"`
	ReadHeaderTimeout time.Duration `env:"CONTACTS_READ_HEADER_TIMEOUT" envDefault:"5s"`
	RequestTimeout    time.Duration `env:"CONTACTS_REQUEST_TIMEOUT"     envDefault:"30s"`
	ShutdownTimeout   time.Duration `env:"CONTACTS_SHUTDOWN_TIMEOUT"    envDefault:"10s"`
}

// ListenAddr prefers CONTACTS_ADDR and falls back to ":" + PORT.
func (s Server) ListenAddr() string {
	if s.Addr != "" {
		return s.Addr
	}
	return ":" + s.Port
}

type LogConfig struct {
	Level  string `env:"CONTACTS_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"CONTACTS_LOG_FORMAT" envDefault:"text"`
}

// DatabaseConfig selects the Postgres store. An empty URL keeps contacts in memory.
type DatabaseConfig struct {
	URL             string        `env:"CONTACTS_DATABASE_URL"`
	MaxOpenConns    int           `env:"CONTACTS_DATABASE_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"CONTACTS_DATABASE_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONTACTS_DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig enables the export cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"CONTACTS_REDIS_URL"`
	PoolSize     int           `env:"CONTACTS_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"CONTACTS_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"CONTACTS_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"CONTACTS_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"CONTACTS_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// KafkaConfig enables contact event publishing. No brokers means events are only logged.
type KafkaConfig struct {
	Brokers           []string `env:"CONTACTS_KAFKA_BROKERS"            envSeparator:","`
	Topic             string   `env:"CONTACTS_KAFKA_TOPIC"              envDefault:"contacts.events"`
	Partitions        int32    `env:"CONTACTS_KAFKA_TOPIC_PARTITIONS"   envDefault:"3"`
	ReplicationFactor int16    `env:"CONTACTS_KAFKA_TOPIC_REPLICATION"  envDefault:"1"`
}

type ContactsConfig struct {
	MaxImageBytes  int64         `env:"CONTACTS_MAX_IMAGE_BYTES"  envDefault:"5242880"`
	ExportCacheTTL time.Duration `env:"CONTACTS_EXPORT_CACHE_TTL" envDefault:"1m"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid CONTACTS_LOG_FORMAT %q: want text or json", c.Log.Format)
	}
	if c.Contacts.MaxImageBytes <= 0 {
		return fmt.Errorf("CONTACTS_MAX_IMAGE_BYTES must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("CONTACTS_KAFKA_TOPIC is required when brokers are set")
	}
	return nil
}
