package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/guildtools/rosterd/internal/adapters/sessiontoken"
	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/mocks"
	mocksauth "github.com/guildtools/rosterd/internal/mocks/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

const testGuildID = "guild-1"

func testCodec(t *testing.T) *sessiontoken.Codec {
	t.Helper()
	codec, err := sessiontoken.NewCodec("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	return codec
}

func testGuildConfig() *domainauth.GuildConfig {
	return &domainauth.GuildConfig{
		OwnerID: "owner-1",
		RoleMappings: []domainauth.RoleMapping{
			{DiscordRoleID: "role-mod", DiscordRoleName: "Mods", Level: domainauth.LevelModerator},
			{DiscordRoleID: "role-admin", DiscordRoleName: "Admins", Level: domainauth.LevelAdmin},
		},
	}
}

func newTestService(t *testing.T, provider ports.AuthProvider, store ports.GuildConfigStore) *AuthService {
	t.Helper()
	return NewAuthService(AuthServiceOptions{
		Provider: provider,
		Codec:    testCodec(t),
		Config:   store,
		GuildID:  testGuildID,
	})
}

func TestNewAuthService_Defaults(t *testing.T) {
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), mocksauth.NewMemoryConfigStore(nil))
	assert.Equal(t, defaultSessionTTL, svc.sessionTTL)
	assert.NotNil(t, svc.logger)
}

func TestBeginLogin(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	svc := newTestService(t, provider, mocksauth.NewMemoryConfigStore(nil))

	result, err := svc.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, provider.AuthURL, result.AuthURL)
	assert.NotEmpty(t, result.State)
}

func TestCompleteLogin_MappedRoles(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = []string{"role-mod", "role-unmapped"}
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelModerator, result.Session.User.Level)
	assert.Equal(t, "mock-user-1", result.Session.User.ID)
	assert.NotEmpty(t, result.Session.ID)
	assert.True(t, result.Session.ExpiresAt.After(time.Now()))

	// The token must round-trip through the codec.
	decoded, err := testCodec(t).Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, decoded.ID)
	assert.Equal(t, domainauth.LevelModerator, decoded.User.Level)
}

func TestCompleteLogin_OwnerIsSuperAdmin(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.Profile.ID = "owner-1"
	provider.MemberRoles = nil // not even a member
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelSuperAdmin, result.Session.User.Level)
}

func TestCompleteLogin_NonMemberGetsViewer(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = nil
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelViewer, result.Session.User.Level)
}

func TestCompleteLogin_RequireMembershipRejectsNonMember(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = nil
	cfg := testGuildConfig()
	cfg.RequireMembership = true
	svc := newTestService(t, provider, mocksauth.NewMemoryConfigStore(cfg))

	_, err := svc.CompleteLogin(context.Background(), "the-code")
	require.ErrorIs(t, err, ErrNotAMember)
}

func TestCompleteLogin_Errors(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	svc := newTestService(t, provider, mocksauth.NewMemoryConfigStore(nil))

	_, err := svc.CompleteLogin(context.Background(), "")
	require.Error(t, err)
	assert.Zero(t, provider.ExchangeCalls)

	provider.ExchangeFunc = func(ctx context.Context, code string) (domainauth.TokenSet, error) {
		return domainauth.TokenSet{}, errors.New("invalid_grant")
	}
	_, err = svc.CompleteLogin(context.Background(), "used-code")
	require.Error(t, err)
}

func TestCurrentUser_ReResolvesAgainstCurrentMappings(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = []string{"role-mod"}
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, domainauth.LevelModerator, result.Session.User.Level)

	// Same token, same stored mappings: same level.
	user, err := svc.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelModerator, user.Level)

	// An admin remaps the role; the very next read reflects it even though
	// the token still carries the old level.
	cfg := testGuildConfig()
	cfg.RoleMappings = []domainauth.RoleMapping{
		{DiscordRoleID: "role-mod", Level: domainauth.LevelAdmin},
	}
	store.SetConfig(cfg)

	user, err = svc.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelAdmin, user.Level)

	// Mapping removed entirely: confirmed member falls to the default.
	cfg = testGuildConfig()
	cfg.RoleMappings = nil
	store.SetConfig(cfg)

	user, err = svc.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelMember, user.Level)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), mocksauth.NewMemoryConfigStore(nil))

	_, err := svc.CurrentUser(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.CurrentUser(context.Background(), "garbage.token")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), store)

	codec := testCodec(t)
	token, err := codec.Encode(domainauth.Session{
		ID:        "sess-1",
		User:      domainauth.User{ID: "user-1", Level: domainauth.LevelAdmin},
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestCurrentUser_StoreOutageDegradesToCachedLevel(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = []string{"role-admin"}
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, domainauth.LevelAdmin, result.Session.User.Level)

	store.ReadErr = errors.New("connection refused")

	user, err := svc.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelAdmin, user.Level)
}

func TestCurrentUser_MissingConfigFailsSafe(t *testing.T) {
	provider := mocksauth.NewMockAuthProvider()
	provider.MemberRoles = []string{"role-admin"}
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, provider, store)

	result, err := svc.CompleteLogin(context.Background(), "the-code")
	require.NoError(t, err)

	// Deleted configuration is not an outage; it resolves to viewer.
	store.SetConfig(nil)

	user, err := svc.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.LevelViewer, user.Level)
}

func TestListRoles_WithBotLister(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mocks.NewMockRoleLister(ctrl)
	lister.EXPECT().ListGuildRoles(gomock.Any(), testGuildID).Return([]domainauth.GuildRole{
		{ID: "r-high", Name: "Admins", Position: 10},
		{ID: "r-low", Name: "Members", Position: 1},
	}, nil)

	svc := NewAuthService(AuthServiceOptions{
		Provider:   mocksauth.NewMockAuthProvider(),
		Codec:      testCodec(t),
		Config:     mocksauth.NewMemoryConfigStore(testGuildConfig()),
		RoleLister: lister,
		GuildID:    testGuildID,
	})

	result, err := svc.ListRoles(context.Background(), &domainauth.User{ID: "user-1"})
	require.NoError(t, err)
	assert.False(t, result.NeedsBot)
	require.Len(t, result.Roles, 2)
	assert.Equal(t, "Admins", result.Roles[0].Name)
}

func TestListRoles_ListerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mocks.NewMockRoleLister(ctrl)
	lister.EXPECT().ListGuildRoles(gomock.Any(), testGuildID).Return(nil, errors.New("missing access"))

	svc := NewAuthService(AuthServiceOptions{
		Provider:   mocksauth.NewMockAuthProvider(),
		Codec:      testCodec(t),
		Config:     mocksauth.NewMemoryConfigStore(testGuildConfig()),
		RoleLister: lister,
		GuildID:    testGuildID,
	})

	_, err := svc.ListRoles(context.Background(), &domainauth.User{ID: "user-1"})
	require.Error(t, err)
}

func TestListRoles_WithoutBotListerDegrades(t *testing.T) {
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), mocksauth.NewMemoryConfigStore(testGuildConfig()))

	result, err := svc.ListRoles(context.Background(), &domainauth.User{
		ID:    "user-1",
		Roles: []string{"role-mod", "role-admin"},
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsBot)
	require.Len(t, result.Roles, 2)
	assert.Equal(t, "role-mod", result.Roles[0].ID)
}

func TestSaveRoleMappings(t *testing.T) {
	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), store)

	mappings := []domainauth.RoleMapping{
		{DiscordRoleID: "role-new", DiscordRoleName: "New", Level: domainauth.LevelMember},
	}
	require.NoError(t, svc.SaveRoleMappings(context.Background(), mappings))

	cfg, err := store.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.RoleMappings, 1)
	assert.Equal(t, "role-new", cfg.RoleMappings[0].DiscordRoleID)
}

func TestSaveRoleMappings_Validation(t *testing.T) {
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), mocksauth.NewMemoryConfigStore(testGuildConfig()))

	err := svc.SaveRoleMappings(context.Background(), []domainauth.RoleMapping{
		{DiscordRoleID: "", Level: domainauth.LevelMember},
	})
	require.Error(t, err)

	err = svc.SaveRoleMappings(context.Background(), []domainauth.RoleMapping{
		{DiscordRoleID: "role-x", Level: domainauth.PermissionLevel(42)},
	})
	require.Error(t, err)
}

func TestSaveRoleMappings_StoreErrorWithGomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockGuildConfigStore(ctrl)
	store.EXPECT().ReplaceRoleMappings(gomock.Any(), gomock.Any()).Return(ports.ErrConfigNotFound)

	svc := NewAuthService(AuthServiceOptions{
		Provider: mocksauth.NewMockAuthProvider(),
		Codec:    testCodec(t),
		Config:   store,
		GuildID:  testGuildID,
	})

	err := svc.SaveRoleMappings(context.Background(), []domainauth.RoleMapping{
		{DiscordRoleID: "role-x", Level: domainauth.LevelAdmin},
	})
	require.ErrorIs(t, err, ports.ErrConfigNotFound)
}

func TestEnsureOwner(t *testing.T) {
	store := mocksauth.NewMemoryConfigStore(nil)
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), store)

	require.NoError(t, svc.EnsureOwner(context.Background(), "owner-1"))

	cfg, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "owner-1", cfg.OwnerID)

	// Existing configuration is never overwritten.
	cfg.OwnerID = "owner-2"
	store.SetConfig(cfg)
	require.NoError(t, svc.EnsureOwner(context.Background(), "owner-1"))

	cfg, err = store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "owner-2", cfg.OwnerID)

	// Empty owner id is a no-op.
	require.NoError(t, svc.EnsureOwner(context.Background(), ""))
}

func TestGuildConfigSnapshot(t *testing.T) {
	svc := newTestService(t, mocksauth.NewMockAuthProvider(), mocksauth.NewMemoryConfigStore(nil))

	cfg, err := svc.GuildConfigSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)

	store := mocksauth.NewMemoryConfigStore(testGuildConfig())
	svc = newTestService(t, mocksauth.NewMockAuthProvider(), store)

	cfg, err = svc.GuildConfigSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "owner-1", cfg.OwnerID)
}
