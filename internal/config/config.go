package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Backends admitidos para cada pieza intercambiable.
const (
	DBSQLite   = "sqlite"
	DBPostgres = "postgres"

	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	BusMemory = "memory"
	BusKafka  = "kafka"
	BusNATS   = "nats"
)

type Config struct {
	DBBackend        string        `toml:"db_backend"`
	SQLitePath       string        `toml:"sqlite_path"`
	PostgresDSN      string        `toml:"postgres_dsn"`
	SavedFilterStore string        `toml:"saved_filter_store"`
	MongoURI         string        `toml:"mongo_uri"`
	MongoDB          string        `toml:"mongo_db"`
	RedisAddr        string        `toml:"redis_addr"`
	EventBus         string        `toml:"event_bus"`
	KafkaBrokers     []string      `toml:"kafka_brokers"`
	KafkaTopic       string        `toml:"kafka_topic"`
	NATSURL          string        `toml:"nats_url"`
	NATSPrefix       string        `toml:"nats_prefix"`
	ClickHouseAddr   string        `toml:"clickhouse_addr"`
	ClickHouseDB     string        `toml:"clickhouse_db"`
	HTTPPort         string        `toml:"http_port"`
	CacheTTL         time.Duration `toml:"cache_ttl"`
	OutboxPeriod     time.Duration `toml:"outbox_period"`
	OutboxLimit      int           `toml:"outbox_limit"`
}

// Defaults devuelve la configuración de un despliegue local sin servicios externos.
func Defaults() *Config {
	return &Config{
		DBBackend:        DBSQLite,
		SQLitePath:       "./medialist.db",
		SavedFilterStore: StoreSQLite,
		MongoDB:          "medialist",
		RedisAddr:        "localhost:6379",
		EventBus:         BusMemory,
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaTopic:       "medialist-events",
		NATSURL:          "nats://127.0.0.1:4222",
		NATSPrefix:       "medialist.",
		ClickHouseDB:     "medialist",
		HTTPPort:         "8080",
		CacheTTL:         5 * time.Minute,
		OutboxPeriod:     1 * time.Second,
		OutboxLimit:      10,
	}
}

// LoadConfig aplica, por orden: valores por defecto, el fichero .env, el
// TOML indicado en MEDIALIST_CONFIG y las variables de entorno.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv("MEDIALIST_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DB_BACKEND", &c.DBBackend)
	setString("SQLITE_PATH", &c.SQLitePath)
	setString("POSTGRES_DSN", &c.PostgresDSN)
	setString("SAVED_FILTER_STORE", &c.SavedFilterStore)
	setString("MONGO_URI", &c.MongoURI)
	setString("MONGO_DB", &c.MongoDB)
	setString("REDIS_ADDR", &c.RedisAddr)
	setString("EVENT_BUS", &c.EventBus)
	setString("KAFKA_TOPIC", &c.KafkaTopic)
	setString("NATS_URL", &c.NATSURL)
	setString("NATS_PREFIX", &c.NATSPrefix)
	setString("CLICKHOUSE_ADDR", &c.ClickHouseAddr)
	setString("CLICKHOUSE_DB", &c.ClickHouseDB)
	setString("HTTP_PORT", &c.HTTPPort)

	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = strings.Split(v, ",")
	}

	for key, dst := range map[string]*time.Duration{
		"CACHE_TTL":     &c.CacheTTL,
		"OUTBOX_PERIOD": &c.OutboxPeriod,
	} {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := getenv("OUTBOX_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OUTBOX_LIMIT: %w", err)
		}
		c.OutboxLimit = n
	}
	return nil
}

// Validate comprueba que los backends elegidos tienen lo que necesitan.
func (c *Config) Validate() error {
	switch c.DBBackend {
	case DBSQLite:
	case DBPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres backend requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown db backend %q", c.DBBackend)
	}

	switch c.SavedFilterStore {
	case StoreSQLite:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("mongo saved filter store requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown saved filter store %q", c.SavedFilterStore)
	}

	switch c.EventBus {
	case BusMemory, BusKafka, BusNATS:
	default:
		return fmt.Errorf("unknown event bus %q", c.EventBus)
	}

	if c.OutboxPeriod <= 0 || c.OutboxLimit <= 0 {
		return errors.New("outbox period and limit must be positive")
	}
	return nil
}
