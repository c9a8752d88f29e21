package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// ErrInvalidSession is returned when a session token fails decoding or
// signature verification.
var ErrInvalidSession = errors.New("invalid session")

// ErrSessionExpired is returned when a structurally valid session is past its
// expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrNotAMember is returned when membership is required and the user does not
// belong to the configured guild.
var ErrNotAMember = errors.New("not a member of the configured guild")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider   ports.AuthProvider
	Codec      ports.SessionCodec
	Config     ports.GuildConfigStore
	RoleLister ports.RoleLister // optional; role listing degrades without it
	GuildID    string
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// AuthService orchestrates login flows and authorization decisions. Sessions
// are self-contained signed tokens; the permission level carried inside one
// is only a fallback, every authenticated read re-resolves against the
// current guild configuration.
type AuthService struct {
	provider   ports.AuthProvider
	codec      ports.SessionCodec
	config     ports.GuildConfigStore
	roleLister ports.RoleLister
	guildID    string
	sessionTTL time.Duration
	logger     *slog.Logger
}

const defaultSessionTTL = 168 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:   opts.Provider,
		codec:      opts.Codec,
		config:     opts.Config,
		roleLister: opts.RoleLister,
		guildID:    opts.GuildID,
		sessionTTL: ttl,
		logger:     logger.With("component", "auth_service"),
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginLogin initiates an authorization flow and returns the provider auth
// URL along with the state value the callback must echo.
func (s *AuthService) BeginLogin(ctx context.Context) (*BeginLoginResult, error) {
	authURL, state, err := s.provider.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state}, nil
}

// CompleteLoginResult contains the minted session and its encoded token.
type CompleteLoginResult struct {
	Session domainauth.Session
	Token   string
}

// CompleteLogin exchanges the authorization code for tokens, fetches the
// user's identity and guild roles, resolves a permission level against the
// stored configuration, and mints a signed session token.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*CompleteLoginResult, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	tokens, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	// Profile and membership only need the access token, so fetch both at once.
	var (
		profile domainauth.Profile
		roles   []string
	)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		p, fetchErr := s.provider.FetchProfile(gctx, tokens.AccessToken)
		if fetchErr != nil {
			return fmt.Errorf("fetch profile: %w", fetchErr)
		}
		profile = p
		return nil
	})
	group.Go(func() error {
		r, fetchErr := s.provider.FetchMemberRoles(gctx, tokens.AccessToken, s.guildID)
		if fetchErr != nil {
			if !errors.Is(fetchErr, ports.ErrNotAMember) {
				return fmt.Errorf("fetch member roles: %w", fetchErr)
			}
			// Non-members still get sessions unless membership is
			// required; they resolve to the viewer floor.
			r = nil
		}
		roles = r
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	cfg, cfgErr := s.config.Read(ctx)
	if cfgErr != nil && !errors.Is(cfgErr, ports.ErrConfigNotFound) {
		return nil, fmt.Errorf("read guild config: %w", cfgErr)
	}

	if cfg != nil && cfg.RequireMembership && roles == nil {
		return nil, ErrNotAMember
	}

	level, matched := domainauth.Resolve(profile.ID, roles, cfg)

	now := time.Now().UTC()
	session := domainauth.Session{
		ID: uuid.New().String(),
		User: domainauth.User{
			ID:          profile.ID,
			Username:    profile.Username,
			DisplayName: profile.DisplayName,
			AvatarURL:   profile.AvatarURL,
			Level:       level,
			Roles:       matched,
			LastUpdated: now,
		},
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    now.Add(s.sessionTTL),
	}

	token, err := s.codec.Encode(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	s.logger.InfoContext(ctx, "login completed",
		"user_id", profile.ID, "level", level.String())

	return &CompleteLoginResult{Session: session, Token: token}, nil
}

// CurrentUser validates a session token and returns the user it carries with
// a freshly resolved permission level. Decoding or expiry failures are
// terminal; a configuration store outage degrades to the level cached in the
// token rather than locking everyone out.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domainauth.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.codec.Decode(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}

	cfg, err := s.config.Read(ctx)
	if err != nil && !errors.Is(err, ports.ErrConfigNotFound) {
		s.logger.WarnContext(ctx, "guild config unavailable, serving cached level",
			"user_id", session.User.ID, "err", err)
		user := session.User
		return &user, nil
	}

	user := session.User
	user.Level, user.Roles = domainauth.Resolve(user.ID, session.User.Roles, cfg)
	user.LastUpdated = time.Now().UTC()
	return &user, nil
}

// ListRolesResult carries the guild role catalog and whether it is complete.
type ListRolesResult struct {
	Roles    []domainauth.GuildRole
	NeedsBot bool
}

// ListRoles returns the guild's role catalog for mapping administration.
// Without a bot-token lister only the caller's own roles are visible, which
// the result flags so the UI can explain the partial listing.
func (s *AuthService) ListRoles(ctx context.Context, user *domainauth.User) (*ListRolesResult, error) {
	if s.roleLister != nil {
		roles, err := s.roleLister.ListGuildRoles(ctx, s.guildID)
		if err != nil {
			return nil, fmt.Errorf("list guild roles: %w", err)
		}
		return &ListRolesResult{Roles: roles, NeedsBot: false}, nil
	}

	partial := make([]domainauth.GuildRole, 0, len(user.Roles))
	for _, id := range user.Roles {
		partial = append(partial, domainauth.GuildRole{ID: id})
	}
	return &ListRolesResult{Roles: partial, NeedsBot: true}, nil
}

// SaveRoleMappings validates and fully replaces the role-to-level mapping
// list. Takes effect on the next authorization check of every session.
func (s *AuthService) SaveRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error {
	for _, m := range mappings {
		if m.DiscordRoleID == "" {
			return errors.New("role mapping requires a role ID")
		}
		if !m.Level.Valid() {
			return fmt.Errorf("role mapping %s: invalid permission level", m.DiscordRoleID)
		}
	}

	if err := s.config.ReplaceRoleMappings(ctx, mappings); err != nil {
		return fmt.Errorf("replace role mappings: %w", err)
	}

	s.logger.InfoContext(ctx, "role mappings replaced", "count", len(mappings))
	return nil
}

// GuildConfigSnapshot returns the stored configuration, or nil when none has
// been saved yet.
func (s *AuthService) GuildConfigSnapshot(ctx context.Context) (*domainauth.GuildConfig, error) {
	cfg, err := s.config.Read(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read guild config: %w", err)
	}
	return cfg, nil
}

// EnsureOwner seeds the configuration record with the guild owner when no
// configuration exists yet. Safe to call on every startup.
func (s *AuthService) EnsureOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	_, err := s.config.Read(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrConfigNotFound) {
		return fmt.Errorf("read guild config: %w", err)
	}

	if saveErr := s.config.Save(ctx, domainauth.GuildConfig{OwnerID: ownerID}); saveErr != nil {
		return fmt.Errorf("seed guild config: %w", saveErr)
	}
	s.logger.InfoContext(ctx, "seeded guild config", "owner_id", ownerID)
	return nil
}
