package httpx

import (
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// CORS configures cross-origin access. An empty Origins list disables the
// middleware entirely; "*" allows any origin.
type CORS struct {
	Origins       []string
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        time.Duration
}

// Middleware returns the CORS middleware. Allowed preflight requests are
// answered directly with 204.
func (c CORS) Middleware() Middleware {
	if len(c.Origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	allowed := make(map[string]bool, len(c.Origins))
	wildcard := false
	for _, o := range c.Origins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	methods := "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	if len(c.AllowMethods) > 0 {
		methods = strings.Join(c.AllowMethods, ", ")
	}
	headers := "Authorization, Content-Type, X-Request-ID"
	if len(c.AllowHeaders) > 0 {
		headers = joinCanonical(c.AllowHeaders)
	}
	expose := joinCanonical(append([]string{"X-Request-ID"}, c.ExposeHeaders...))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !wildcard && !allowed[origin] {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if c.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(c.MaxAge.Seconds())))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			w.Header().Set("Access-Control-Expose-Headers", expose)
			next.ServeHTTP(w, r)
		})
	}
}

func joinCanonical(h []string) string {
	out := make([]string, 0, len(h))
	for _, v := range h {
		out = append(out, textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(v)))
	}
	return strings.Join(out, ", ")
}
