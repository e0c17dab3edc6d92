package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// config is the full daemon configuration. Every key can come from the
// config file or from a TICK_ environment variable with dots replaced
// by underscores: store.redis.addr becomes TICK_STORE_REDIS_ADDR.
type config struct {
	Environment     string        `mapstructure:"environment"`
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Log       logConfig       `mapstructure:"log"`
	Store     storeConfig     `mapstructure:"store"`
	Scheduler schedulerConfig `mapstructure:"scheduler"`
	Poller    pollerConfig    `mapstructure:"poller"`
	Alerts    alertsConfig    `mapstructure:"alerts"`
}

type logConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type storeConfig struct {
	// Driver selects the backend: memory, sqlite, redis, postgres,
	// or mongo.
	Driver   string         `mapstructure:"driver"`
	SQLite   sqliteConfig   `mapstructure:"sqlite"`
	Redis    redisConfig    `mapstructure:"redis"`
	Postgres postgresConfig `mapstructure:"postgres"`
	Mongo    mongoConfig    `mapstructure:"mongo"`
}

type sqliteConfig struct {
	Path string `mapstructure:"path"`
}

type redisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type postgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type mongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type schedulerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// LeaseTTL enables the per-job claim step when positive. Leave at
	// zero for single-poller deployments.
	LeaseTTL       time.Duration `mapstructure:"lease_ttl"`
	AlertRetention time.Duration `mapstructure:"alert_retention"`
}

type pollerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type alertsConfig struct {
	GitHub githubConfig `mapstructure:"github"`
}

// githubConfig names the repository alert issues are filed in. The
// sink is enabled only when token, owner, and repo are all set.
type githubConfig struct {
	Token  string   `mapstructure:"token"`
	Owner  string   `mapstructure:"owner"`
	Repo   string   `mapstructure:"repo"`
	Labels []string `mapstructure:"labels"`
}

// loadConfig reads the optional file at path, then applies TICK_
// environment overrides on top of the defaults.
func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix("TICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "production")
	v.SetDefault("listen", ":8080")
	v.SetDefault("shutdown_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite.path", "tick.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "tick")

	v.SetDefault("scheduler.concurrency", 1)
	v.SetDefault("scheduler.lease_ttl", "0s")
	v.SetDefault("scheduler.alert_retention", "24h")

	v.SetDefault("poller.enabled", false)
	v.SetDefault("poller.interval", "1m")

	v.SetDefault("alerts.github.token", "")
	v.SetDefault("alerts.github.owner", "")
	v.SetDefault("alerts.github.repo", "")
}
