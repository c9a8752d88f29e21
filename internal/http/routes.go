package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
)

// RouterServices holds the dependencies for the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	registerAuthRoutes(mux, authHandlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	requireAdmin := RequirePermission(h.Svc, domainauth.LevelAdmin)

	mux.Handle("GET /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("GET /auth/me", http.HandlerFunc(h.Me))
	mux.Handle("GET /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/roles", requireAdmin(http.HandlerFunc(h.Roles)))
	mux.Handle("PUT /auth/roles", requireAdmin(http.HandlerFunc(h.PutRoles)))
}
