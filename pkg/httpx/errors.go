package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

// Errors writes normalized error envelopes. Every failing route goes through
// Write; nothing else in the gateway emits error JSON.
type Errors struct {
	Normalizer errx.Normalizer
}

// Write logs err at a level matching its kind and responds with the
// normalized envelope.
func (e Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	status, env := e.Normalizer.Normalize(err)

	log := slogx.FromContext(r.Context())
	kind := errx.KindOf(err)
	switch kind {
	case errx.KindUpstream:
		log.Warn("upstream request failed", "err", err, "status", status, "code", env.Code)
	case errx.KindUnexpected, errx.KindIncompleteData:
		log.Error("request failed", "err", err, "status", status, "code", env.Code)
	default:
		log.Debug("request rejected", "err", err, "status", status, "code", env.Code)
	}

	if kind == errx.KindUnauthenticated {
		writeBearerChallenge(w, env.Description)
	}
	WriteJSON(w, status, env)
}

// RFC 6750 challenge for bearer auth.
func writeBearerChallenge(w http.ResponseWriter, desc string) {
	desc = strings.ReplaceAll(desc, `"`, `'`)
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
}
