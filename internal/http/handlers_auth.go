package httpx

import (
	"context"
	"crypto/hmac"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/service"
)

// Cookie names used by the auth flow.
const (
	SessionCookieName  = "roster_session"
	stateCookieName    = "oauth_state"
	redirectCookieName = "post_login_redirect"
)

// AuthServiceInterface defines the auth service operations the handlers need.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, code string) (*service.CompleteLoginResult, error)
	CurrentUser(ctx context.Context, token string) (*domainauth.User, error)
	ListRoles(ctx context.Context, user *domainauth.User) (*service.ListRolesResult, error)
	SaveRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error
	GuildConfigSnapshot(ctx context.Context) (*domainauth.GuildConfig, error)
}

// AuthHandlers provides HTTP handlers for the authorization endpoints.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login initiates the OAuth flow.
// GET /auth/login?redirect_uri=<optional relative path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start login flow"),
		})
		return
	}

	h.setTempCookie(w, r, stateCookieName, result.State)
	h.setTempCookie(w, r, redirectCookieName, redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback finishes the OAuth flow. Every failure redirects back to the app
// root with a machine-readable error code rather than rendering an error page.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("error") != "" {
		// The user declined the authorization prompt.
		h.redirectWithError(w, r, "discord_denied")
		return
	}

	code := q.Get("code")
	if code == "" {
		h.redirectWithError(w, r, "no_code")
		return
	}

	// State must match the pre-flow cookie. On any mismatch we bail before
	// the code is ever exchanged.
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		!hmac.Equal([]byte(stateCookie.Value), []byte(q.Get("state"))) {
		h.redirectWithError(w, r, "invalid_state")
		return
	}
	h.clearCookie(w, r, stateCookieName)

	result, err := h.Svc.CompleteLogin(r.Context(), code)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login completion failed", "err", err)
		if errors.Is(err, service.ErrNotAMember) {
			h.redirectWithError(w, r, "not_a_member")
			return
		}
		h.redirectWithError(w, r, "callback_failed")
		return
	}

	h.setSessionCookie(w, r, result.Token, result.Session.ExpiresAt)
	http.Redirect(w, r, h.consumePostLoginRedirect(w, r), http.StatusFound)
}

// Me returns the current user with a freshly resolved permission level, or
// {"user": null} when the request carries no usable session. It never fails.
// GET /auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	user, err := h.Svc.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		// Expired or tampered token: drop the cookie so the client stops
		// sending it.
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Roles returns the guild role catalog together with the stored mappings.
// GET /auth/roles.
func (h *AuthHandlers) Roles(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	result, err := h.Svc.ListRoles(r.Context(), user)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "list roles failed", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "roles_unavailable",
			Err:     errors.New("could not list guild roles"),
		})
		return
	}

	var mappings []domainauth.RoleMapping
	if cfg, cfgErr := h.Svc.GuildConfigSnapshot(r.Context()); cfgErr == nil && cfg != nil {
		mappings = cfg.RoleMappings
	}
	if mappings == nil {
		mappings = []domainauth.RoleMapping{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"roles":    result.Roles,
		"mappings": mappings,
		"needsBot": result.NeedsBot,
	})
}

type putRolesRequest struct {
	Mappings []domainauth.RoleMapping `json:"mappings"`
}

// PutRoles replaces the full role-to-level mapping list.
// PUT /auth/roles.
func (h *AuthHandlers) PutRoles(w http.ResponseWriter, r *http.Request) {
	var req putRolesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.SaveRoleMappings(r.Context(), req.Mappings); err != nil {
		h.logger().ErrorContext(r.Context(), "save role mappings failed", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_mappings",
			Err:     err,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout clears the session cookie. With no server-side session record there
// is nothing else to revoke, so repeating it is harmless.
// GET|POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, SessionCookieName)

	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if wantsJSON {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandlers) redirectWithError(w http.ResponseWriter, r *http.Request, errCode string) {
	h.clearCookie(w, r, stateCookieName)
	u := url.URL{Path: "/"}
	q := url.Values{}
	q.Set("error", errCode)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

func (h *AuthHandlers) isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setTempCookie writes a short-lived cookie scoped to the login flow.
func (h *AuthHandlers) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

// setSessionCookie stores the signed session token.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// clearCookie expires a cookie, mirroring the attributes used when setting it
// so browsers actually delete it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.isSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// consumePostLoginRedirect returns the stored post-login destination and
// clears its cookie.
func (h *AuthHandlers) consumePostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if cookie, err := r.Cookie(redirectCookieName); err == nil {
		redirectURI = safeRedirectPath(cookie.Value)
		h.clearCookie(w, r, redirectCookieName)
	}
	return redirectURI
}

// safeRedirectPath allows only same-origin relative paths starting with "/".
// Anything else collapses to "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	// Browsers normalize backslashes in Location values to forward slashes,
	// which would turn "/\evil.com" into a protocol-relative redirect.
	if strings.Contains(candidate, `\`) || strings.Contains(strings.ToLower(candidate), "%5c") {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
