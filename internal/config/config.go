// Package config loads server settings from defaults, an optional YAML file and WALLWARS_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mcoot/wallwars-go/internal/api"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/storage/mongo"
	"github.com/mcoot/wallwars-go/internal/storage/postgres"
	"github.com/mcoot/wallwars-go/internal/storage/redis"
)

// EnvPrefix namespaces every environment override, e.g. WALLWARS_STORAGE_TYPE
const EnvPrefix = "WALLWARS"

// Storage type constants
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Rating  RatingConfig  `mapstructure:"rating"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	PoolSize       int           `mapstructure:"pool_size"`
	MinIdleConns   int           `mapstructure:"min_idle_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type PostgresConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RatingConfig struct {
	// Tau is the Glicko-2 system constant limiting volatility change
	Tau float64 `mapstructure:"tau"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is json or text
	Format string `mapstructure:"format"`
}

// LoadDotEnv copies variables from .env files into the environment.
// Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration. An explicit path must exist; without one,
// ./config.yaml is read when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("storage.type", StorageMemory)

	rd := redis.DefaultConfig()
	v.SetDefault("storage.redis.url", rd.URL)
	v.SetDefault("storage.redis.pool_size", rd.PoolSize)
	v.SetDefault("storage.redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("storage.redis.connect_timeout", rd.ConnectTimeout)

	mg := mongo.DefaultConfig()
	v.SetDefault("storage.mongo.uri", mg.URI)
	v.SetDefault("storage.mongo.database", mg.Database)
	v.SetDefault("storage.mongo.connect_timeout", mg.ConnectTimeout)

	pg := postgres.DefaultConfig()
	v.SetDefault("storage.postgres.url", pg.URL)
	v.SetDefault("storage.postgres.max_conns", pg.MaxConns)
	v.SetDefault("storage.postgres.connect_timeout", pg.ConnectTimeout)

	v.SetDefault("rating.tau", rating.DefaultConfig().Tau)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageRedis, StorageMongo, StoragePostgres:
	default:
		return fmt.Errorf("invalid storage.type %q: must be memory, redis, mongo or postgres", c.Storage.Type)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Rating.Tau <= 0 {
		return fmt.Errorf("invalid rating.tau %v: must be positive", c.Rating.Tau)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log.format %q: must be json or text", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level (debug, info, warn, error)
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// APIServer converts to the HTTP server settings
func (s ServerConfig) APIServer() api.ServerConfig {
	return api.ServerConfig{
		Host:            s.Host,
		Port:            s.Port,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}

func (r RedisConfig) Backend() redis.Config {
	return redis.Config{
		URL:            r.URL,
		PoolSize:       r.PoolSize,
		MinIdleConns:   r.MinIdleConns,
		ConnectTimeout: r.ConnectTimeout,
	}
}

func (m MongoConfig) Backend() mongo.Config {
	return mongo.Config{
		URI:            m.URI,
		Database:       m.Database,
		ConnectTimeout: m.ConnectTimeout,
	}
}

func (p PostgresConfig) Backend() postgres.Config {
	return postgres.Config{
		URL:            p.URL,
		MaxConns:       p.MaxConns,
		ConnectTimeout: p.ConnectTimeout,
	}
}

// Engine converts to the rating engine settings
func (r RatingConfig) Engine() rating.Config {
	return rating.Config{Tau: r.Tau}
}
