package auth

import (
	"fmt"
	"strings"
)

// PermissionLevel is the ordered privilege tier governing feature access.
// Levels compare numerically: a caller satisfies a requirement when their
// level is >= the required level.
type PermissionLevel int

const (
	LevelViewer PermissionLevel = iota
	LevelMember
	LevelModerator
	LevelAdmin
	LevelSuperAdmin
)

var levelNames = [...]string{
	LevelViewer:     "viewer",
	LevelMember:     "member",
	LevelModerator:  "moderator",
	LevelAdmin:      "admin",
	LevelSuperAdmin: "superadmin",
}

// String returns the canonical lowercase name for the level.
func (l PermissionLevel) String() string {
	if l < LevelViewer || int(l) >= len(levelNames) {
		return fmt.Sprintf("permissionlevel(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether the level is one of the defined tiers.
func (l PermissionLevel) Valid() bool {
	return l >= LevelViewer && int(l) < len(levelNames)
}

// AtLeast reports whether the level meets or exceeds the required level.
func (l PermissionLevel) AtLeast(required PermissionLevel) bool {
	return l >= required
}

// ParsePermissionLevel parses a case-insensitive level name.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for lvl, n := range levelNames {
		if n == name {
			return PermissionLevel(lvl), nil
		}
	}
	return LevelViewer, fmt.Errorf("invalid permission level: %q", s)
}

// MarshalText implements encoding.TextMarshaler so levels serialize as names,
// not bare integers, in JSON payloads and config.
func (l PermissionLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid permission level: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *PermissionLevel) UnmarshalText(text []byte) error {
	lvl, err := ParsePermissionLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}
