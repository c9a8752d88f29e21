package discord

// Package discord implements the AuthProvider port against the Discord
// OAuth2 and REST APIs.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

const (
	// DefaultAPIBaseURL is the Discord REST API base. Overridable for tests.
	DefaultAPIBaseURL = "https://discord.com/api/v10"

	defaultAuthorizeURL = "https://discord.com/oauth2/authorize"
	defaultScope        = "identify guilds.members.read"
	cdnBaseURL          = "https://cdn.discordapp.com"
)

// ClientConfig holds configuration for the Discord OAuth client.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	APIBaseURL   string       // Optional, defaults to DefaultAPIBaseURL
	HTTPClient   *http.Client // Optional, defaults to a 10s-timeout client
}

// Client implements ports.AuthProvider using Discord's OAuth2 code flow and
// the /users/@me REST endpoints.
type Client struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

var _ ports.AuthProvider = (*Client)(nil)

// NewClient creates a new Discord OAuth client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	scope := cfg.Scope
	if scope == "" {
		scope = defaultScope
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint: oauth2.Endpoint{
				AuthURL:   defaultAuthorizeURL,
				TokenURL:  apiBase + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: apiBase,
		httpClient: httpClient,
	}, nil
}

// Begin returns the Discord consent URL and a cryptographically random state
// the caller binds to the login attempt via a short-lived cookie.
func (c *Client) Begin(_ context.Context) (string, string, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}

	authURL := c.config.AuthCodeURL(state)
	return authURL, state, nil
}

// Exchange trades the one-shot authorization code for Discord tokens.
// Codes are single-use; a provider rejection is terminal, never retried.
func (c *Client) Exchange(ctx context.Context, code string) (domainauth.TokenSet, error) {
	if code == "" {
		return domainauth.TokenSet{}, errors.New("authorization code is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("exchange code for token: %w", err)
	}

	expiresAt := time.Now().Add(time.Hour)
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	}

	return domainauth.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// userResponse is the subset of Discord's /users/@me payload we consume.
// Unknown provider fields are ignored; required fields are validated rather
// than silently defaulted.
type userResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

// FetchProfile retrieves the caller's Discord identity.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (domainauth.Profile, error) {
	var u userResponse
	if err := c.getJSON(ctx, "/users/@me", "Bearer "+accessToken, &u); err != nil {
		return domainauth.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	if u.ID == "" || u.Username == "" {
		return domainauth.Profile{}, errors.New("fetch profile: response missing id or username")
	}

	displayName := u.GlobalName
	if displayName == "" {
		displayName = u.Username
	}

	return domainauth.Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: displayName,
		AvatarURL:   avatarURL(u.ID, u.Avatar),
	}, nil
}

// memberResponse is the subset of Discord's guild member payload we consume.
type memberResponse struct {
	Roles []string `json:"roles"`
}

// FetchMemberRoles retrieves the caller's role ids within the guild.
// A 404 from Discord is the valid "authenticated but not a guild member"
// state and maps to ports.ErrNotAMember, not a failure.
func (c *Client) FetchMemberRoles(ctx context.Context, accessToken, guildID string) ([]string, error) {
	if guildID == "" {
		return nil, errors.New("guild ID is required")
	}

	var m memberResponse
	err := c.getJSON(ctx, "/users/@me/guilds/"+guildID+"/member", "Bearer "+accessToken, &m)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, ports.ErrNotAMember
		}
		return nil, fmt.Errorf("fetch guild member: %w", err)
	}

	if m.Roles == nil {
		return []string{}, nil
	}
	return m.Roles, nil
}

// statusError carries a non-2xx upstream status for callers that need to
// distinguish "not found" from real failures.
type statusError struct {
	path string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("discord: GET %s returned status %d", e.path, e.code)
}

// getJSON performs an authorized GET against the Discord API and decodes the
// response. Upstream errors surface as-is; there are no automatic retries.
func (c *Client) getJSON(ctx context.Context, path, authorization string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{path: path, code: resp.StatusCode}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// avatarURL builds the CDN URL for a user's avatar hash, empty when unset.
func avatarURL(userID, hash string) string {
	if hash == "" {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseURL, userID, hash)
}

// generateRandomString generates a cryptographically secure URL-safe random
// string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least 'length' base64 URL-safe chars
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
