package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// BotConfig holds configuration for the bot-credential role lister.
type BotConfig struct {
	Token      string
	APIBaseURL string       // Optional, defaults to DefaultAPIBaseURL
	HTTPClient *http.Client // Optional, defaults to a 10s-timeout client
}

// BotClient implements ports.RoleLister using Discord's bot credential.
// A user's OAuth token cannot enumerate a guild's full role list; the
// application-level bot token can.
type BotClient struct {
	token      string
	apiBaseURL string
	httpClient *http.Client
}

var _ ports.RoleLister = (*BotClient)(nil)

// NewBotClient creates a role lister backed by a bot token.
func NewBotClient(cfg BotConfig) (*BotClient, error) {
	if cfg.Token == "" {
		return nil, errors.New("bot token is required")
	}

	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &BotClient{
		token:      cfg.Token,
		apiBaseURL: apiBase,
		httpClient: httpClient,
	}, nil
}

// ListGuildRoles fetches the guild's full role list, highest position first.
func (b *BotClient) ListGuildRoles(ctx context.Context, guildID string) ([]domainauth.GuildRole, error) {
	if guildID == "" {
		return nil, errors.New("guild ID is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiBaseURL+"/guilds/"+guildID+"/roles", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+b.token)
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discord: list roles returned status %d", resp.StatusCode)
	}

	var roles []domainauth.GuildRole
	if decodeErr := json.NewDecoder(resp.Body).Decode(&roles); decodeErr != nil {
		return nil, fmt.Errorf("decode roles: %w", decodeErr)
	}

	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Position > roles[j].Position })
	return roles, nil
}
