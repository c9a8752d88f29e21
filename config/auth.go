package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the Discord OAuth flow.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses a fixed development identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// DiscordConfig contains the Discord application and guild settings.
type DiscordConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"identify guilds.members.read"`
	APIBaseURL   string `env:"API_BASE_URL"  envDefault:"https://discord.com/api/v10"`

	// GuildID is the guild whose membership and roles drive authorization.
	GuildID string `env:"GUILD_ID"`

	// OwnerID seeds the guild configuration on first startup. The owner
	// always resolves to the highest permission level.
	OwnerID string `env:"OWNER_ID"`

	// BotToken enables full guild role listing. Without it the role catalog
	// degrades to the roles visible on the caller's own membership.
	BotToken string `env:"BOT_TOKEN"`
}

// DevAuthConfig controls the mock authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string   `env:"USER_ID"  envDefault:"dev-user"`
	Username string   `env:"USERNAME" envDefault:"devuser"`
	Roles    []string `env:"ROLES"    envDefault:""          envSeparator:";"`
}

// SessionConfig controls signed session tokens.
type SessionConfig struct {
	// Secret signs session tokens. Must be at least 32 bytes.
	Secret string `env:"SESSION_SECRET,required"`

	// TTL is how long a minted session stays valid.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// Discord configuration (used when Mode=oauth).
	Discord DiscordConfig `envPrefix:"DISCORD_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Session token configuration.
	Session SessionConfig
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Session.TTL <= 0 {
		a.Session.TTL = 168 * time.Hour
	}
}

// Validate checks that the selected mode has the settings it needs.
func (a *AuthConfig) Validate() error {
	if a.Mode != AuthModeOAuth {
		return nil
	}
	if a.Discord.ClientID == "" || a.Discord.ClientSecret == "" {
		return fmt.Errorf("AUTH_MODE=oauth requires DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET")
	}
	if a.Discord.GuildID == "" {
		return fmt.Errorf("AUTH_MODE=oauth requires DISCORD_GUILD_ID")
	}
	return nil
}
