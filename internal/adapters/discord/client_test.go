package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildtools/rosterd/internal/ports"
)

func newTestClient(t *testing.T, apiBaseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		APIBaseURL:   apiBaseURL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{ClientSecret: "s", RedirectURL: "r"})
	require.Error(t, err)

	_, err = NewClient(ClientConfig{ClientID: "c", RedirectURL: "r"})
	require.Error(t, err)

	_, err = NewClient(ClientConfig{ClientID: "c", ClientSecret: "s"})
	require.Error(t, err)
}

func TestClient_Begin(t *testing.T) {
	client := newTestClient(t, "")

	authURL, state, err := client.Begin(context.Background())
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.True(t, strings.HasPrefix(authURL, defaultAuthorizeURL))
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "client_id=client-id")

	// Each login attempt gets its own state.
	_, state2, err := client.Begin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)
}

func TestClient_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "acc-tok",
			"refresh_token": "ref-tok",
			"token_type": "Bearer",
			"expires_in": 604800
		}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	tokens, err := client.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "acc-tok", tokens.AccessToken)
	assert.Equal(t, "ref-tok", tokens.RefreshToken)
	assert.False(t, tokens.ExpiresAt.IsZero())
}

func TestClient_Exchange_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Exchange(context.Background(), "used-code")
	require.Error(t, err)

	_, err = client.Exchange(context.Background(), "")
	require.Error(t, err)
}

func TestClient_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/@me", r.URL.Path)
		assert.Equal(t, "Bearer acc-tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "123",
			"username": "tester",
			"global_name": "Tester",
			"avatar": "abcd"
		}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	profile, err := client.FetchProfile(context.Background(), "acc-tok")
	require.NoError(t, err)
	assert.Equal(t, "123", profile.ID)
	assert.Equal(t, "tester", profile.Username)
	assert.Equal(t, "Tester", profile.DisplayName)
	assert.Equal(t, cdnBaseURL+"/avatars/123/abcd.png", profile.AvatarURL)
}

func TestClient_FetchProfile_FallsBackToUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "123", "username": "tester"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	profile, err := client.FetchProfile(context.Background(), "acc-tok")
	require.NoError(t, err)
	assert.Equal(t, "tester", profile.DisplayName)
	assert.Empty(t, profile.AvatarURL)
}

func TestClient_FetchProfile_MissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username": "tester"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchProfile(context.Background(), "acc-tok")
	require.Error(t, err)
}

func TestClient_FetchMemberRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/@me/guilds/guild-1/member", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roles": ["r1", "r2"]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	roles, err := client.FetchMemberRoles(context.Background(), "acc-tok", "guild-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, roles)
}

func TestClient_FetchMemberRoles_NotAMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unknown Guild"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchMemberRoles(context.Background(), "acc-tok", "guild-1")
	require.ErrorIs(t, err, ports.ErrNotAMember)
}

func TestClient_FetchMemberRoles_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchMemberRoles(context.Background(), "acc-tok", "guild-1")
	require.Error(t, err)
	require.NotErrorIs(t, err, ports.ErrNotAMember)
}

func TestClient_FetchMemberRoles_NilRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	roles, err := client.FetchMemberRoles(context.Background(), "acc-tok", "guild-1")
	require.NoError(t, err)
	require.NotNil(t, roles)
	assert.Empty(t, roles)
}
