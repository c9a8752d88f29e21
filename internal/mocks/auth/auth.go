package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider     = (*MockAuthProvider)(nil)
	_ ports.GuildConfigStore = (*MemoryConfigStore)(nil)
)

// MockAuthProvider simulates Discord for tests with deterministic state
// handling and per-method call counters.
type MockAuthProvider struct {
	BeginFunc            func(ctx context.Context) (authURL, state string, err error)
	ExchangeFunc         func(ctx context.Context, code string) (domainauth.TokenSet, error)
	FetchProfileFunc     func(ctx context.Context, accessToken string) (domainauth.Profile, error)
	FetchMemberRolesFunc func(ctx context.Context, accessToken, guildID string) ([]string, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	Profile     domainauth.Profile
	MemberRoles []string

	// Call counters
	BeginCalls    int
	ExchangeCalls int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-discord/oauth2/authorize",
		StatePrefix: "state",
		Profile: domainauth.Profile{
			ID:          "mock-user-1",
			Username:    "mockuser",
			DisplayName: "Mock User",
		},
		MemberRoles: []string{"role-member"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context) (string, string, error) {
	m.BeginCalls++
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return m.AuthURL, fmt.Sprintf("%s-%d", m.StatePrefix, m.BeginCalls), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, code string) (domainauth.TokenSet, error) {
	m.ExchangeCalls++
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	if code == "" {
		return domainauth.TokenSet{}, errors.New("empty code")
	}
	return domainauth.TokenSet{
		AccessToken:  "mock-access-token",
		RefreshToken: "mock-refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (m *MockAuthProvider) FetchProfile(ctx context.Context, accessToken string) (domainauth.Profile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, accessToken)
	}
	return m.Profile, nil
}

func (m *MockAuthProvider) FetchMemberRoles(ctx context.Context, accessToken, guildID string) ([]string, error) {
	if m.FetchMemberRolesFunc != nil {
		return m.FetchMemberRolesFunc(ctx, accessToken, guildID)
	}
	if m.MemberRoles == nil {
		return nil, ports.ErrNotAMember
	}
	return m.MemberRoles, nil
}

// MemoryConfigStore is an in-memory guild configuration store. Error fields
// let tests inject store outages.
type MemoryConfigStore struct {
	mu  sync.Mutex
	cfg *domainauth.GuildConfig

	ReadErr    error
	WriteErr   error
	ReadCalls  int
	WriteCalls int
}

// NewMemoryConfigStore creates a store seeded with the given configuration.
// A nil cfg means no configuration has been saved yet.
func NewMemoryConfigStore(cfg *domainauth.GuildConfig) *MemoryConfigStore {
	return &MemoryConfigStore{cfg: cfg}
}

func (s *MemoryConfigStore) Read(ctx context.Context) (*domainauth.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadCalls++
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if s.cfg == nil {
		return nil, ports.ErrConfigNotFound
	}
	copied := *s.cfg
	copied.RoleMappings = append([]domainauth.RoleMapping(nil), s.cfg.RoleMappings...)
	return &copied, nil
}

func (s *MemoryConfigStore) Save(ctx context.Context, cfg domainauth.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteCalls++
	if s.WriteErr != nil {
		return s.WriteErr
	}
	cfg.UpdatedAt = time.Now().UTC()
	s.cfg = &cfg
	return nil
}

func (s *MemoryConfigStore) ReplaceRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteCalls++
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if s.cfg == nil {
		return ports.ErrConfigNotFound
	}
	s.cfg.RoleMappings = append([]domainauth.RoleMapping(nil), mappings...)
	s.cfg.UpdatedAt = time.Now().UTC()
	return nil
}

// SetConfig swaps the stored configuration, simulating an out-of-band edit.
func (s *MemoryConfigStore) SetConfig(cfg *domainauth.GuildConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
