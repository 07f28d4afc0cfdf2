// Package keycloaktest runs a stub Keycloak realm on httptest for driver,
// service and handler tests. Every request is recorded so tests can assert
// that nothing reached upstream.
package keycloaktest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp/drivers/keycloak"
)

const (
	Realm    = "test"
	ClientID = "oauth"
	Secret   = "s3cret"
)

// Call is one recorded upstream request.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type Server struct {
	*httptest.Server

	mu    sync.Mutex
	calls []Call
	mux   *http.ServeMux
}

// New starts the stub and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{mux: http.NewServeMux()}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	r.Body = io.NopCloser(bytes.NewReader(body))
	s.mux.ServeHTTP(w, r)
}

// HandleAdmin registers h for method on /admin/realms/{realm}{path}.
func (s *Server) HandleAdmin(method, path string, h http.HandlerFunc) {
	s.mux.HandleFunc(method+" /admin/realms/"+Realm+path, h)
}

// HandleRealm registers h for method on /realms/{realm}{path}.
func (s *Server) HandleRealm(method, path string, h http.HandlerFunc) {
	s.mux.HandleFunc(method+" /realms/"+Realm+path, h)
}

// HandleToken registers h on the token endpoint.
func (s *Server) HandleToken(h http.HandlerFunc) {
	s.HandleRealm(http.MethodPost, "/protocol/openid-connect/token", h)
}

// Calls returns a copy of every recorded request.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many requests matched method and path. An empty method
// matches any.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if (method == "" || c.Method == method) && c.Path == path {
			n++
		}
	}
	return n
}

// AdminPath is the full path of an admin endpoint.
func AdminPath(path string) string { return "/admin/realms/" + Realm + path }

// RealmPath is the full path of a realm endpoint.
func RealmPath(path string) string { return "/realms/" + Realm + path }

// Config addresses the stub.
func (s *Server) Config() keycloak.Config {
	return keycloak.Config{
		BaseURL:      s.URL,
		Realm:        Realm,
		ClientID:     ClientID,
		ClientSecret: Secret,
		HTTPClient:   s.Client(),
	}
}

// Provider returns a driver pointed at the stub.
func (s *Server) Provider(t testing.TB) *keycloak.Provider {
	t.Helper()

	p, err := keycloak.NewProvider(context.Background(), s.Config())
	if err != nil {
		t.Fatalf("keycloak provider: %v", err)
	}
	return p
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status writes an empty response.
func Status(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }
}

// Token answers like a successful token endpoint.
func Token(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"access_token":       "access-1",
		"refresh_token":      "refresh-1",
		"token_type":         "Bearer",
		"expires_in":         300,
		"refresh_expires_in": 1800,
		"scope":              "openid profile email",
	})
}
