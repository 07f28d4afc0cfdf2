package keycloak

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// userInfoClaims are the Keycloak claims the access policy reads. Realm roles
// appear under realm_access unless a mapper flattens them into "roles".
type userInfoClaims struct {
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

func (r *tokensRepo) UserInfo(ctx context.Context, token string) (domain.UserInfo, error) {
	base := r.p.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	rec := &statusRecorder{base: base}
	ctx = oidc.ClientContext(ctx, &http.Client{Transport: rec, Timeout: r.p.http.Timeout})

	info, err := r.p.oidc.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	if err != nil {
		up := errx.Upstream{Method: http.MethodGet, URL: r.p.infoURL}
		if rec.status > 299 {
			up.Status = rec.status
			up.Body = rec.body.Bytes()
		} else if rec.status != 0 {
			// answered 2xx but the payload was unusable
			return domain.UserInfo{}, errx.Unexpected(err)
		}
		return domain.UserInfo{}, errx.FromUpstream(up, err)
	}

	var c userInfoClaims
	if err := info.Claims(&c); err != nil {
		return domain.UserInfo{}, errx.Unexpected(err)
	}

	roles := append(slices.Clone(c.RealmAccess.Roles), c.Roles...)
	slices.Sort(roles)

	return domain.UserInfo{
		Subject:  info.Subject,
		Username: c.PreferredUsername,
		Email:    info.Email,
		Roles:    slices.Compact(roles),
	}, nil
}

// statusRecorder keeps the status and error body of the one request go-oidc
// makes, its error value only carries them as text.
type statusRecorder struct {
	base   http.RoundTripper
	status int
	body   bytes.Buffer
}

func (s *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	s.status = resp.StatusCode
	if resp.StatusCode > 299 {
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.TeeReader(io.LimitReader(resp.Body, maxBodyBytes), &s.body), resp.Body}
	}
	return resp, nil
}
