package devauth

// Package devauth provides a simple, config-driven AuthProvider for local
// development. It short-circuits the Discord flow by redirecting back to our
// own callback with a locally generated state.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	UserID   string
	Username string
	Roles    []string // guild role ids reported for the dev identity; empty means "not a member"
}

// Provider implements ports.AuthProvider for local development.
// Exchange ignores the code and returns a fixed token set; profile and
// membership come from configuration.
type Provider struct {
	profile domainauth.Profile
	roles   []string
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	username := cfg.Username
	if username == "" {
		username = cfg.UserID
	}
	return &Provider{
		profile: domainauth.Profile{
			ID:          cfg.UserID,
			Username:    username,
			DisplayName: username,
		},
		roles: append([]string(nil), cfg.Roles...),
	}, nil
}

// Begin returns a local callback URL and a cryptographically secure state.
func (p *Provider) Begin(_ context.Context) (string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nil
}

// Exchange ignores the provided code (state validation is handled by the
// callback handler) and returns a synthetic token set.
func (p *Provider) Exchange(_ context.Context, _ string) (domainauth.TokenSet, error) {
	return domainauth.TokenSet{
		AccessToken: "dev-access-token",
		ExpiresAt:   time.Now().Add(8 * time.Hour),
	}, nil
}

// FetchProfile returns the configured dev identity.
func (p *Provider) FetchProfile(_ context.Context, _ string) (domainauth.Profile, error) {
	return p.profile, nil
}

// FetchMemberRoles returns the configured role ids, or ErrNotAMember when
// none are configured, mirroring the real provider's behavior.
func (p *Provider) FetchMemberRoles(_ context.Context, _, _ string) ([]string, error) {
	if len(p.roles) == 0 {
		return nil, ports.ErrNotAMember
	}
	return append([]string(nil), p.roles...), nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		// pad
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
