package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// User is the authenticated principal as presented to the rest of the
// application. It is reconstructed on every permission resolution, never
// mutated in place; ID is the only durable correlation key to the guild
// configuration's owner and role data.
type User struct {
	ID          string          `json:"id"`
	Username    string          `json:"discordUsername"`
	DisplayName string          `json:"displayName"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Level       PermissionLevel `json:"permissionLevel"`
	Roles       []string        `json:"roles"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// RoleMapping associates a Discord role with a permission level.
// DiscordRoleID is unique within a configuration; on duplicates the last
// write during administration wins.
type RoleMapping struct {
	DiscordRoleID   string          `json:"discordRoleId"`
	DiscordRoleName string          `json:"discordRoleName"`
	Level           PermissionLevel `json:"permissionLevel"`
}

// GuildConfig is the externally owned record consumed on every authorization
// decision. It is created once by a setup flow and mutated only through the
// administration path; concurrent edits are last-write-wins.
type GuildConfig struct {
	OwnerID           string        `json:"ownerId"`
	RoleMappings      []RoleMapping `json:"roleMappings"`
	RequireMembership bool          `json:"requireDiscordMembership"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// LevelForRole returns the mapped level for a Discord role id, if any.
func (c *GuildConfig) LevelForRole(roleID string) (PermissionLevel, bool) {
	for _, m := range c.RoleMappings {
		if m.DiscordRoleID == roleID {
			return m.Level, true
		}
	}
	return LevelViewer, false
}

// TokenSet holds the provider-issued credentials from a code exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Profile is the provider-side identity of the caller.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

// GuildRole is a provider-side role as returned by role enumeration.
type GuildRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Session is the client-held credential minted at login. The embedded
// User.Level is a cache of the resolution performed at mint time; privileged
// reads must re-resolve against the live guild configuration rather than
// trusting it.
type Session struct {
	ID           string    `json:"id"`
	User         User      `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
