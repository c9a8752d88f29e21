package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/guildtools/rosterd/config"
	"github.com/guildtools/rosterd/internal/adapters/devauth"
	"github.com/guildtools/rosterd/internal/adapters/discord"
	redisadapter "github.com/guildtools/rosterd/internal/adapters/redis"
	"github.com/guildtools/rosterd/internal/adapters/sessiontoken"
	"github.com/guildtools/rosterd/internal/data"
	"github.com/guildtools/rosterd/internal/ports"
	"github.com/guildtools/rosterd/internal/service"
)

// AuthConfig contains the dependencies for building the auth service.
type AuthConfig struct {
	App         *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService wires the auth service for the configured mode and guild
// store backend.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.App == nil {
		return nil, errors.New("app config is required")
	}

	codec, err := sessiontoken.NewCodec(cfg.App.Auth.Session.Secret)
	if err != nil {
		return nil, fmt.Errorf("create session codec: %w", err)
	}

	store, err := buildGuildStore(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	var roleLister ports.RoleLister
	if token := cfg.App.Auth.Discord.BotToken; token != "" {
		bot, botErr := discord.NewBotClient(discord.BotConfig{
			Token:      token,
			APIBaseURL: cfg.App.Auth.Discord.APIBaseURL,
		})
		if botErr != nil {
			return nil, fmt.Errorf("create discord bot client: %w", botErr)
		}
		roleLister = bot
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   provider,
		Codec:      codec,
		Config:     store,
		RoleLister: roleLister,
		GuildID:    cfg.App.Auth.Discord.GuildID,
		SessionTTL: cfg.App.Auth.Session.TTL,
		Logger:     cfg.Logger,
	}), nil
}

//nolint:ireturn // the backend is selected at runtime.
func buildGuildStore(cfg AuthConfig) (ports.GuildConfigStore, error) {
	switch cfg.App.GuildStore.Backend {
	case config.GuildStoreRedis:
		if cfg.RedisClient == nil {
			return nil, errors.New("GUILD_STORE_BACKEND=redis requires a redis connection")
		}
		return redisadapter.NewConfigStore(cfg.RedisClient), nil
	case config.GuildStorePostgres:
		fallthrough
	default:
		if cfg.DB == nil {
			return nil, errors.New("GUILD_STORE_BACKEND=postgres requires a database connection")
		}
		return data.NewGuildConfigRepo(cfg.DB), nil
	}
}

//nolint:ireturn // the provider is selected at runtime.
func buildProvider(cfg AuthConfig) (ports.AuthProvider, error) {
	switch cfg.App.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.App.Auth.DevAuth.UserID,
			Username: cfg.App.Auth.DevAuth.Username,
			Roles:    cfg.App.Auth.DevAuth.Roles,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		if cfg.Logger != nil {
			cfg.Logger.Warn("mock auth enabled; do not use in production",
				"user_id", cfg.App.Auth.DevAuth.UserID)
		}
		return prov, nil

	case config.AuthModeOAuth:
		fallthrough
	default:
		d := cfg.App.Auth.Discord
		prov, err := discord.NewClient(discord.ClientConfig{
			ClientID:     d.ClientID,
			ClientSecret: d.ClientSecret,
			RedirectURL:  d.RedirectURL,
			Scope:        d.Scope,
			APIBaseURL:   d.APIBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create discord client: %w", err)
		}
		return prov, nil
	}
}
