package auth

// Resolve computes the effective permission level for a user against the
// current guild configuration. It is a pure function with no I/O and is
// re-invoked on every authorization-sensitive read; a cached level from an
// earlier resolution is never trusted on its own.
//
// Precedence, highest first:
//  1. missing configuration resolves to viewer with no roles (fail safe,
//     never fail open)
//  2. the configured owner is always superadmin, regardless of mappings
//  3. a user with no guild roles is a viewer
//  4. confirmed members start at member and take the maximum level across
//     all of their mapped roles
func Resolve(userID string, memberRoles []string, cfg *GuildConfig) (PermissionLevel, []string) {
	if cfg == nil {
		return LevelViewer, []string{}
	}

	if userID != "" && userID == cfg.OwnerID {
		return LevelSuperAdmin, memberRoles
	}

	if len(memberRoles) == 0 {
		return LevelViewer, []string{}
	}

	level := LevelMember
	for _, roleID := range memberRoles {
		if mapped, ok := cfg.LevelForRole(roleID); ok && mapped > level {
			level = mapped
		}
	}
	return level, memberRoles
}
