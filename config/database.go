package config

import (
	"fmt"
	"strings"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"rosterd"`
	Password string `env:"PASSWORD" envDefault:"rosterd"`
	Name     string `env:"NAME"     envDefault:"rosterd"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}

// GuildStoreBackend selects where guild configuration lives.
type GuildStoreBackend string

const (
	// GuildStorePostgres keeps guild configuration in PostgreSQL.
	GuildStorePostgres GuildStoreBackend = "postgres"
	// GuildStoreRedis keeps guild configuration as a Redis JSON document.
	GuildStoreRedis GuildStoreBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for GuildStoreBackend.
func (g *GuildStoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "postgres", "redis":
		*g = GuildStoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid GuildStoreBackend: %q (valid options: postgres, redis)", v)
	}
}

// GuildStoreConfig selects the guild configuration store backend.
type GuildStoreConfig struct {
	Backend GuildStoreBackend `env:"GUILD_STORE_BACKEND" envDefault:"postgres"`
}
