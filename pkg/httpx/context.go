package httpx

import "context"

type ctxKey string

const (
	CtxKeyBearer  ctxKey = "bearer"
	CtxKeySubject ctxKey = "subject" // unverified, logging only
)

// ContextWithBearer stores the caller's raw access token.
func ContextWithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CtxKeyBearer, token)
}

// BearerFromContext returns the raw access token BearerToken extracted.
func BearerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyBearer).(string)
	return v, ok && v != ""
}

// SubjectFromContext returns the unverified sub claim of the caller's token,
// or "" when the token is opaque.
func SubjectFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeySubject).(string)
	return v
}
