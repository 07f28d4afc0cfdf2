package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	kctest "github.com/aussiebroadwan/oauthgw/internal/oauth/idp/drivers/keycloak/keycloaktest"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, kc *kctest.Server) *Router {
	t.Helper()

	provider := kc.Provider(t)
	policy, err := service.NewAccessPolicy(service.PolicyAllowlist, provider, nil)
	require.NoError(t, err)

	r := NewRouter(
		httpx.Errors{Normalizer: errx.Normalizer{}},
		httpx.CORS{Origins: []string{"http://app.local"}},
		provider,
		"test",
		slogx.Discard(),
	)
	r.AuthService = &service.AuthService{IDP: provider}
	r.UserService = &service.UserService{IDP: provider}
	r.RolesService = &service.RolesService{IDP: provider}
	r.AccessService = &service.AccessService{Policy: policy}
	r.ApplyRoutes()
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errx.Envelope {
	t.Helper()

	var env errx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestBearerRoutesRequireToken(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	r := newTestRouter(t, kc)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodPost, "/users"},
		{http.MethodGet, "/users/1"},
		{http.MethodPut, "/users/1"},
		{http.MethodPatch, "/users/1"},
		{http.MethodDelete, "/users/1"},
		{http.MethodGet, "/users/1/roles"},
		{http.MethodGet, "/roles"},
		{http.MethodPost, "/roles/tutor/users/1"},
		{http.MethodGet, "/auth/validate-token?resource=rooms"},
	}
	for _, rt := range routes {
		rec := serve(r, httptest.NewRequest(rt.method, rt.path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, rt.path)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

		env := decodeEnvelope(t, rec)
		require.Equal(t, "OA-401", env.Code)
		require.Equal(t, "OAuthAPI", env.Source)
		require.NotNil(t, env.Stack)
	}
	require.Empty(t, kc.Calls())
}

func TestLoginRoute(t *testing.T) {
	t.Parallel()

	t.Run("form body", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleToken(kctest.Token)
		r := newTestRouter(t, kc)

		form := url.Values{"client_id": {"oauth"}, "username": {"alice"}, "password": {"pw"}, "grant_type": {"password"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := serve(r, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var tok oauthsdk.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
		require.Equal(t, "access-1", tok.AccessToken)
		require.Equal(t, "refresh-1", tok.RefreshToken)
		require.Equal(t, int64(300), tok.ExpiresIn)
	})

	t.Run("json body missing grant type", func(t *testing.T) {
		kc := kctest.New(t)
		r := newTestRouter(t, kc)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"client_id":"oauth","username":"a","password":"b"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(r, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "grant_type is required", decodeEnvelope(t, rec).Description)
		require.Empty(t, kc.Calls())
	})
}

func TestCreateUserRoute(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	kc.HandleAdmin(http.MethodPost, "/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", kc.URL+kctest.AdminPath("/users/u-9"))
		w.WriteHeader(http.StatusCreated)
	})
	kc.HandleAdmin(http.MethodGet, "/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		kctest.JSON(w, http.StatusOK, map[string]any{
			"id": r.PathValue("id"), "username": "bob", "firstName": "Bob",
			"lastName": "Builder", "email": "bob@example.com", "enabled": true,
		})
	})
	r := newTestRouter(t, kc)

	body := `{"username":"bob","password":"pw","firstName":"Bob","lastName":"Builder","email":"bob@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admin-token")

	rec := serve(r, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t,
		`{"id":"u-9","username":"bob","first-name":"Bob","last-name":"Builder","email":"bob@example.com","enabled":true}`,
		rec.Body.String())

	calls := kc.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "Bearer admin-token", calls[0].Header.Get("Authorization"))
}

func TestListUsersRejectsBadFilter(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	r := newTestRouter(t, kc)

	req := httptest.NewRequest(http.MethodGet, "/users?enabled=maybe", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := serve(r, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, kc.Calls())
}

func TestValidateTokenRoute(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	kc.HandleRealm(http.MethodGet, "/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		kctest.JSON(w, http.StatusOK, map[string]any{"sub": "u-1", "realm_access": map[string]any{"roles": []string{"professor"}}})
	})
	r := newTestRouter(t, kc)

	check := func(resource string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/validate-token?resource="+resource, nil)
		req.Header.Set("Authorization", "Bearer tok")
		return serve(r, req)
	}

	rec := check("lessons")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"resource":"lessons","allowed":true,"message":"access granted"}`, rec.Body.String())

	rec = check("rooms")
	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "OA-403", env.Code)
	require.Equal(t, "access denied", env.Description)
}

func TestRoleUpdateRespondsEmpty(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	kc.HandleAdmin(http.MethodPut, "/roles/{name}", kctest.Status(http.StatusNoContent))
	r := newTestRouter(t, kc)

	req := httptest.NewRequest(http.MethodPut, "/roles/tutor", strings.NewReader(`{"description":"d"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")

	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestPanicBecomesOneEnvelope(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	r := newTestRouter(t, kc)
	r.Mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	dec := json.NewDecoder(rec.Body)
	var env errx.Envelope
	require.NoError(t, dec.Decode(&env))
	require.Equal(t, "OA-500", env.Code)
	require.False(t, dec.More())
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	t.Run("health is plain text", func(t *testing.T) {
		r := newTestRouter(t, kctest.New(t))

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OAuth service is healthy", rec.Body.String())
	})

	t.Run("readyz reports an unreachable realm", func(t *testing.T) {
		r := newTestRouter(t, kctest.New(t))

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var health oauthsdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		require.Equal(t, "degraded", health.Status)
		require.NotEqual(t, "ok", health.Checks.Keycloak)
	})

	t.Run("readyz ok", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleRealm(http.MethodGet, "/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
			kctest.JSON(w, http.StatusOK, map[string]string{"issuer": kc.URL + kctest.RealmPath("")})
		})
		r := newTestRouter(t, kc)

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	r := newTestRouter(t, kc)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := serve(r, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Empty(t, kc.Calls())
}
