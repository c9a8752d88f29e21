package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
)

// ErrNotAMember is returned by FetchMemberRoles when the authenticated user
// is not a member of the configured guild. It is a valid state, not a
// failure: callers map it to an empty role set.
var ErrNotAMember = errors.New("user is not a guild member")

// ErrConfigNotFound is returned by GuildConfigStore.Read when no guild
// configuration record exists yet.
var ErrConfigNotFound = errors.New("guild configuration not found")

// AuthProvider initiates and completes a delegated-identity flow against the
// identity provider.
type AuthProvider interface {
	// Begin returns the provider consent URL and an opaque anti-CSRF state
	// the caller must hold in a short-lived cookie. The OAuth redirect URI
	// is fixed at provider construction, not per flow.
	Begin(ctx context.Context) (authURL, state string, err error)

	// Exchange trades a one-shot authorization code for provider tokens.
	Exchange(ctx context.Context, code string) (domainauth.TokenSet, error)

	// FetchProfile retrieves the caller's provider-side identity.
	FetchProfile(ctx context.Context, accessToken string) (domainauth.Profile, error)

	// FetchMemberRoles retrieves the caller's role ids within the given
	// guild, or ErrNotAMember when the provider reports no membership.
	FetchMemberRoles(ctx context.Context, accessToken, guildID string) ([]string, error)
}

// RoleLister enumerates a guild's full role list using an elevated,
// application-level credential distinct from any user token.
type RoleLister interface {
	ListGuildRoles(ctx context.Context, guildID string) ([]domainauth.GuildRole, error)
}

// GuildConfigStore reads and writes the externally owned guild configuration.
// Reads happen on every authorization decision; writes only through the
// administration and setup paths. No transactional guarantee is provided
// against concurrent edits (last writer wins).
type GuildConfigStore interface {
	Read(ctx context.Context) (*domainauth.GuildConfig, error)

	// ReplaceRoleMappings replaces the full mapping list (not a merge);
	// callers submit the complete desired set.
	ReplaceRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error

	// Save writes the whole configuration record. Used by the setup flow.
	Save(ctx context.Context, cfg domainauth.GuildConfig) error
}

// SessionCodec serializes sessions to and from the opaque cookie value.
// Decode fails closed: malformed or tampered input is an error, never a
// session with elevated trust.
type SessionCodec interface {
	Encode(sess domainauth.Session) (string, error)
	Decode(token string) (domainauth.Session, error)
}
