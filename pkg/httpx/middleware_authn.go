package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/jwtx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

// BearerToken requires an "Authorization: Bearer <token>" header and stores
// the raw token in the request context for the upstream calls. Nothing is
// verified here; Keycloak rejects bad tokens itself.
func BearerToken(errs Errors) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerFromHeader(r.Header.Get("Authorization"))
			if !ok {
				errs.Write(w, r, errx.Unauthenticated("missing bearer token"))
				return
			}

			ctx := contextWithAuth(r.Context(), raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerFromHeader(authz string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authz), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func contextWithAuth(ctx context.Context, raw string) context.Context {
	ctx = ContextWithBearer(ctx, raw)

	// Opaque tokens are fine, they just don't get a subject in the logs.
	if c, err := jwtx.Peek(raw); err == nil && c.Subject != "" {
		ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
		ctx = slogx.Annotate(ctx, "sub", c.Subject)
	}
	return ctx
}
