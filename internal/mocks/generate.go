// Package mocks provides mock implementations for testing the auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. Hand-written doubles for the provider live in the auth
// subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for GuildConfigStore interface from internal/ports.
// This creates MockGuildConfigStore with Read, ReplaceRoleMappings, and Save.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=guild_config_store_mock.go github.com/guildtools/rosterd/internal/ports GuildConfigStore

// Generate mock for RoleLister interface from internal/ports.
// This creates MockRoleLister with ListGuildRoles.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=role_lister_mock.go github.com/guildtools/rosterd/internal/ports RoleLister
