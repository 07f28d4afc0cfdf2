package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"

	_ "github.com/aussiebroadwan/oauthgw/api/oauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether the identity provider is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	errs         httpx.Errors
	pinger       Pinger
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	AuthService   *service.AuthService
	UserService   *service.UserService
	RolesService  *service.RolesService
	AccessService *service.AccessService
}

func NewRouter(
	errs httpx.Errors,
	cors httpx.CORS,
	pinger Pinger,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		errs:         errs,
		pinger:       pinger,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Logging wraps recovery so a panic still gets its access log line
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(r.errs),
		cors.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerAccess()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			OAuth Gateway API
//	@version		0.1.0
//	@description	Thin gateway in front of a Keycloak realm: login and refresh, user and role administration, and resource access checks.
//	@description
//	@description				Every failure answers with the same envelope: error_code (OA-<status> or KC-<status>), error_description, error_source and error_stack.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/oauthgw
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Keycloak access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured requires a bearer token before h runs.
func (r *Router) secured(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h, httpx.BearerToken(r.errs))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, errs: r.errs}

	r.Mux.HandleFunc("POST /login", h.HandleLogin)
	r.Mux.HandleFunc("POST /refresh", h.HandleRefresh)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, errs: r.errs}

	r.Mux.Handle("GET /users", r.secured(h.HandleList))
	r.Mux.Handle("POST /users", r.secured(h.HandleCreate))
	r.Mux.Handle("GET /users/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("PUT /users/{id}", r.secured(h.HandleUpdate))
	r.Mux.Handle("PATCH /users/{id}", r.secured(h.HandleChangePassword))
	r.Mux.Handle("DELETE /users/{id}", r.secured(h.HandleDisable))
	r.Mux.Handle("GET /users/{id}/roles", r.secured(h.HandleRoles))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService, errs: r.errs}

	r.Mux.Handle("GET /roles", r.secured(h.HandleList))
	r.Mux.Handle("POST /roles", r.secured(h.HandleCreate))
	r.Mux.Handle("GET /roles/{name}", r.secured(h.HandleGet))
	r.Mux.Handle("PUT /roles/{name}", r.secured(h.HandleUpdate))
	r.Mux.Handle("PATCH /roles/{name}", r.secured(h.HandlePatch))
	r.Mux.Handle("DELETE /roles/{name}", r.secured(h.HandleDelete))
	r.Mux.Handle("POST /roles/{name}/users/{userId}", r.secured(h.HandleAssign))
	r.Mux.Handle("DELETE /roles/{name}/users/{userId}", r.secured(h.HandleRemove))
}

func (r *Router) registerAccess() {
	h := &AccessHandler{AccessService: r.AccessService, errs: r.errs}

	r.Mux.Handle("GET /auth/validate-token", r.secured(h.HandleValidate))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /health", HealthHandler)
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.pinger))
}

// bearer returns the token BearerToken stored for the request.
func bearer(r *http.Request) string {
	token, _ := httpx.BearerFromContext(r.Context())
	return token
}
