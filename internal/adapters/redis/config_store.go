package redis

// Package redis provides the Redis-backed guild configuration store.
// The configuration lives as a single JSON document; administration writes
// replace it wholesale (last writer wins).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

const defaultConfigKey = "guild:config"

// ConfigStore is a Redis-backed ports.GuildConfigStore.
type ConfigStore struct {
	client redis.UniversalClient
	key    string
}

var _ ports.GuildConfigStore = (*ConfigStore)(nil)

// NewConfigStore creates a guild configuration store on the given client.
func NewConfigStore(client redis.UniversalClient) *ConfigStore {
	return &ConfigStore{client: client, key: defaultConfigKey}
}

// NewConfigStoreWithKey creates a store with a custom key, useful for tests.
func NewConfigStoreWithKey(client redis.UniversalClient, key string) *ConfigStore {
	return &ConfigStore{client: client, key: key}
}

// Read fetches the current configuration document.
func (s *ConfigStore) Read(ctx context.Context) (*domainauth.GuildConfig, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrConfigNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cfg domainauth.GuildConfig
	if unmarshalErr := json.Unmarshal([]byte(data), &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal guild config: %w", unmarshalErr)
	}
	return &cfg, nil
}

// Save writes the whole configuration record.
func (s *ConfigStore) Save(ctx context.Context, cfg domainauth.GuildConfig) error {
	if cfg.OwnerID == "" {
		return errors.New("owner ID cannot be empty")
	}
	cfg.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal guild config: %w", err)
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// ReplaceRoleMappings swaps the mapping list on the stored configuration.
// Read-modify-write without a lock: administration writes are infrequent and
// last-write-wins is the accepted discipline for this record.
func (s *ConfigStore) ReplaceRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error {
	cfg, err := s.Read(ctx)
	if err != nil {
		return err
	}

	cfg.RoleMappings = mappings
	return s.Save(ctx, *cfg)
}
